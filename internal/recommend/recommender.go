package recommend

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hh-recommender/internal/skills"
)

// Recommender scores a job corpus against a user's skills.
// It holds no state between calls and is safe for concurrent use.
type Recommender struct {
	logger  *zap.Logger
	workers int
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithWorkers bounds the number of jobs scored in parallel. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New creates a Recommender. A nil logger is replaced with a no-op one.
func New(logger *zap.Logger, opts ...Option) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Recommender{
		logger:  logger,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Recommend returns the jobs matching userSkills by at least MinMatchPercentage, best match first.
func (r *Recommender) Recommend(ctx context.Context, userSkills []string, jobs []JobRecord) ([]Recommendation, error) {
	scored, err := r.score(ctx, userSkills, jobs)
	if err != nil {
		return nil, err
	}

	ranked := Rank(scored)

	r.logger.Debug("ranked recommendations",
		zap.Int("scored", len(scored)),
		zap.Int("kept", len(ranked)),
		zap.Int("threshold", MinMatchPercentage),
	)

	return ranked, nil
}

// Score returns every job's match percentage, best match first, without the threshold filter.
// Jobs sharing no skill with the user still show the 30% floor.
func (r *Recommender) Score(ctx context.Context, userSkills []string, jobs []JobRecord) ([]Recommendation, error) {
	scored, err := r.score(ctx, userSkills, jobs)
	if err != nil {
		return nil, err
	}

	sortByMatch(scored)

	return scored, nil
}

// ForUser looks up the user's skills and the job corpus, then calls Recommend.
func (r *Recommender) ForUser(ctx context.Context, users UserSource, corpus JobSource, userID string) ([]Recommendation, error) {
	userSkills, jobs, err := Lookup(ctx, users, corpus, userID)
	if err != nil {
		return nil, err
	}

	return r.Recommend(ctx, userSkills, jobs)
}

// Lookup fetches the user's skills and the job corpus concurrently.
func Lookup(ctx context.Context, users UserSource, corpus JobSource, userID string) ([]string, []JobRecord, error) {
	var (
		userSkills []string
		jobs       []JobRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userSkills, err = users.UserSkills(gctx, userID)
		if err != nil {
			return fmt.Errorf("get user skills: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		jobs, err = corpus.Jobs(gctx)
		if err != nil {
			return fmt.Errorf("get jobs: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return userSkills, jobs, nil
}

func (r *Recommender) score(ctx context.Context, userSkills []string, jobs []JobRecord) ([]Recommendation, error) {
	if len(userSkills) == 0 {
		return nil, ErrNoSkills
	}
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	userTokens := skills.NormalizeAll(userSkills)
	jobTokens := make([][]string, len(jobs))
	for i, job := range jobs {
		jobTokens[i] = skills.NormalizeAll(job.SkillsRequired)
	}

	vocab := skills.BuildVocabulary(userTokens, jobTokens)
	userVec := vocab.Vectorize(userTokens)

	r.logger.Debug("built vocabulary",
		zap.Int("dimensions", vocab.Len()),
		zap.Int("user_skills", len(userTokens)),
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", r.workers),
	)

	results := make([]Recommendation, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Recommendation{
				JobID:           jobs[i].ID,
				MatchPercentage: Score(userVec, vocab.Vectorize(jobTokens[i])),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The last jobs may finish before a cancellation is observed.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
