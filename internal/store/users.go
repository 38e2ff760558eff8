package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spigell/hh-recommender/internal/recommend"
)

// UserSkills returns the raw skills of the user with the given email.
// It satisfies recommend.UserSource.
func (s *Store) UserSkills(ctx context.Context, email string) ([]string, error) {
	var skills []string
	err := s.pool.QueryRow(ctx,
		`SELECT skills FROM users WHERE email = $1`,
		email,
	).Scan(&skills)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", email, recommend.ErrNotFound)
		}
		return nil, fmt.Errorf("get user skills: %w", err)
	}

	if len(skills) == 0 {
		return nil, fmt.Errorf("user %q: %w", email, recommend.ErrNoSkills)
	}

	return skills, nil
}

// UpsertUserSkills replaces the skills of the user, creating the user when missing.
func (s *Store) UpsertUserSkills(ctx context.Context, email string, skills []string) error {
	if email == "" {
		return errors.New("email is required")
	}

	if skills == nil {
		skills = []string{}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (email, skills)
		 VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET skills = $2, updated_at = NOW()`,
		email, skills,
	)
	if err != nil {
		return fmt.Errorf("upsert user %q: %w", email, err)
	}
	return nil
}
