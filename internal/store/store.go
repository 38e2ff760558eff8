// Package store keeps users and jobs in PostgreSQL.
package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const (
	defaultPageSize           = 500
	defaultMaxConcurrentPages = 4
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger

	// PageSize is the number of job rows read by one query.
	PageSize int
	// MaxConcurrentPages bounds the number of page queries in flight.
	MaxConcurrentPages int
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("database url is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("postgres connected", zap.String("host", config.ConnConfig.Host))

	return &Store{
		pool:               pool,
		logger:             logger,
		PageSize:           defaultPageSize,
		MaxConcurrentPages: defaultMaxConcurrentPages,
	}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema files in name order.
func (s *Store) Migrate(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply %s: %w", entry.Name(), err)
		}

		s.logger.Debug("migration applied", zap.String("file", entry.Name()))
	}

	return nil
}
