package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hh-recommender/internal/recommend"
)

// JobRow is a job as stored in the jobs table.
type JobRow struct {
	ID             string
	Title          string
	Source         string
	SkillsRequired []string
}

// Jobs returns every stored job ordered by id. Pages are read concurrently
// and flattened in page order.
func (s *Store) Jobs(ctx context.Context) ([]recommend.JobRecord, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	pageSize := s.pageSize()
	offsets := pageOffsets(total, pageSize)
	pages := make([][]recommend.JobRecord, len(offsets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for i, offset := range offsets {
		g.Go(func() error {
			page, err := s.jobsPage(gctx, pageSize, offset)
			if err != nil {
				return fmt.Errorf("jobs page at offset %d: %w", offset, err)
			}
			pages[i] = page
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	jobs := make([]recommend.JobRecord, 0, total)
	for _, page := range pages {
		jobs = append(jobs, page...)
	}

	s.logger.Debug("jobs loaded",
		zap.Int("count", len(jobs)),
		zap.Int("pages", len(offsets)),
	)

	return jobs, nil
}

func (s *Store) jobsPage(ctx context.Context, limit, offset int) ([]recommend.JobRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, skills_required FROM jobs ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var page []recommend.JobRecord
	for rows.Next() {
		var job recommend.JobRecord
		if err := rows.Scan(&job.ID, &job.SkillsRequired); err != nil {
			return nil, err
		}
		page = append(page, job)
	}

	return page, rows.Err()
}

// UpsertJobs inserts or updates the given jobs in one batch.
func (s *Store) UpsertJobs(ctx context.Context, jobs []JobRow) error {
	if len(jobs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, job := range jobs {
		skills := job.SkillsRequired
		if skills == nil {
			skills = []string{}
		}
		batch.Queue(
			`INSERT INTO jobs (id, title, source, skills_required)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET title = $2, source = $3, skills_required = $4, updated_at = NOW()`,
			job.ID, job.Title, job.Source, skills,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, job := range jobs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert job %s: %w", job.ID, err)
		}
	}

	s.logger.Info("jobs upserted", zap.Int("count", len(jobs)))
	return nil
}

func (s *Store) pageSize() int {
	if s.PageSize <= 0 {
		return defaultPageSize
	}
	return s.PageSize
}

func (s *Store) concurrency() int {
	if s.MaxConcurrentPages <= 0 {
		return 1
	}
	return s.MaxConcurrentPages
}

// pageOffsets returns the OFFSET of every page needed to read total rows.
func pageOffsets(total, pageSize int) []int {
	if total <= 0 || pageSize <= 0 {
		return nil
	}

	offsets := make([]int, 0, (total+pageSize-1)/pageSize)
	for offset := 0; offset < total; offset += pageSize {
		offsets = append(offsets, offset)
	}
	return offsets
}
