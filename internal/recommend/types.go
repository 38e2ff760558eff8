// Package recommend scores job postings against a user's skills and ranks the matches.
package recommend

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when there is no user to take skills from.
	ErrNotFound = errors.New("user not found")
	// ErrNoSkills is returned when the user exists but has no skills. It wraps ErrNotFound.
	ErrNoSkills = fmt.Errorf("%w: user has no skills", ErrNotFound)
	// ErrNoJobs is returned when the job corpus is empty.
	ErrNoJobs = errors.New("no jobs to rank")
)

// JobRecord is the part of a job posting the scorer needs.
type JobRecord struct {
	ID             string   `json:"id"`
	SkillsRequired []string `json:"skills_required"`
}

// Recommendation pairs a job with its match percentage (0-100).
type Recommendation struct {
	JobID           string `json:"job_id"`
	MatchPercentage int    `json:"match_percentage"`
}

// UserSource looks up the raw skill list of a user.
// Implementations return ErrNotFound for unknown users and ErrNoSkills for users without skills.
type UserSource interface {
	UserSkills(ctx context.Context, userID string) ([]string, error)
}

// JobSource returns the full job corpus to score.
type JobSource interface {
	Jobs(ctx context.Context) ([]JobRecord, error)
}
