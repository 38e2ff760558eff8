package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubUsers struct {
	skills map[string][]string
}

func (s *stubUsers) UserSkills(_ context.Context, userID string) ([]string, error) {
	skills, ok := s.skills[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if len(skills) == 0 {
		return nil, ErrNoSkills
	}
	return skills, nil
}

type stubJobs struct {
	jobs []JobRecord
	err  error
}

func (s *stubJobs) Jobs(context.Context) ([]JobRecord, error) {
	return s.jobs, s.err
}

func TestRecommendFullOverlapIsClamped(t *testing.T) {
	t.Parallel()

	r := New(zap.NewNop())
	got, err := r.Recommend(context.Background(),
		[]string{"JavaScript", "React"},
		[]JobRecord{{ID: "job-1", SkillsRequired: []string{"javascript", "react", "node"}}},
	)

	require.NoError(t, err)
	assert.Equal(t, []Recommendation{{JobID: "job-1", MatchPercentage: 100}}, got)
}

func TestRecommendDisjointJobIsFilteredOut(t *testing.T) {
	t.Parallel()

	r := New(nil)
	jobs := []JobRecord{{ID: "java", SkillsRequired: []string{"java"}}}

	got, err := r.Recommend(context.Background(), []string{"Python"}, jobs)
	require.NoError(t, err)
	assert.Empty(t, got)

	scored, err := r.Score(context.Background(), []string{"Python"}, jobs)
	require.NoError(t, err)
	assert.Equal(t, []Recommendation{{JobID: "java", MatchPercentage: 30}}, scored)
}

func TestRecommendErrors(t *testing.T) {
	t.Parallel()

	r := New(nil)
	jobs := []JobRecord{{ID: "1", SkillsRequired: []string{"go"}}}

	_, err := r.Recommend(context.Background(), nil, jobs)
	assert.ErrorIs(t, err, ErrNoSkills)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Recommend(context.Background(), []string{}, jobs)
	assert.ErrorIs(t, err, ErrNoSkills)

	_, err = r.Recommend(context.Background(), []string{"go"}, nil)
	assert.ErrorIs(t, err, ErrNoJobs)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRecommendDegenerateInputsStillScore(t *testing.T) {
	t.Parallel()

	r := New(nil)
	scored, err := r.Score(context.Background(),
		[]string{"go"},
		[]JobRecord{
			{ID: "no-skills"},
			{ID: "only-version", SkillsRequired: []string{"3.9"}},
		},
	)

	require.NoError(t, err)
	require.Len(t, scored, 2)
	for _, rec := range scored {
		assert.Equal(t, 30, rec.MatchPercentage, rec.JobID)
	}
}

func TestRecommendOrderingAndThreshold(t *testing.T) {
	t.Parallel()

	r := New(nil, WithWorkers(3))
	jobs := make([]JobRecord, 0, 60)
	for i := 0; i < 20; i++ {
		jobs = append(jobs,
			JobRecord{ID: fmt.Sprintf("full-%d", i), SkillsRequired: []string{"Go", "PostgreSQL"}},
			JobRecord{ID: fmt.Sprintf("partial-%d", i), SkillsRequired: []string{"go", "java", "php", "scala", "ruby", "perl", "c#", "swift", "kotlin", "rust", "elixir", "haskell", "ocaml", "lua", "dart", "zig", "nim"}},
			JobRecord{ID: fmt.Sprintf("none-%d", i), SkillsRequired: []string{"cobol"}},
		)
	}

	got, err := r.Recommend(context.Background(), []string{"go", "postgresql", "docker"}, jobs)
	require.NoError(t, err)

	for i, rec := range got {
		assert.GreaterOrEqual(t, rec.MatchPercentage, MinMatchPercentage)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].MatchPercentage, rec.MatchPercentage)
		}
	}

	// Stable ordering keeps equally scored jobs in corpus order.
	require.GreaterOrEqual(t, len(got), 20)
	for i := 0; i < 20; i++ {
		assert.Equal(t, fmt.Sprintf("full-%d", i), got[i].JobID)
	}
}

func TestRecommendCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Recommend(ctx, []string{"go"}, []JobRecord{{ID: "1", SkillsRequired: []string{"go"}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForUser(t *testing.T) {
	t.Parallel()

	users := &stubUsers{skills: map[string][]string{
		"dev@example.com":   {"Go", "Docker"},
		"empty@example.com": {},
	}}
	corpus := &stubJobs{jobs: []JobRecord{
		{ID: "1", SkillsRequired: []string{"go", "docker"}},
		{ID: "2", SkillsRequired: []string{"excel"}},
	}}

	r := New(nil)

	got, err := r.ForUser(context.Background(), users, corpus, "dev@example.com")
	require.NoError(t, err)
	assert.Equal(t, []Recommendation{{JobID: "1", MatchPercentage: 100}}, got)

	_, err = r.ForUser(context.Background(), users, corpus, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrNoSkills)

	_, err = r.ForUser(context.Background(), users, corpus, "empty@example.com")
	assert.ErrorIs(t, err, ErrNoSkills)

	_, err = r.ForUser(context.Background(), users, &stubJobs{}, "dev@example.com")
	assert.ErrorIs(t, err, ErrNoJobs)

	boom := errors.New("boom")
	_, err = r.ForUser(context.Background(), users, &stubJobs{err: boom}, "dev@example.com")
	assert.ErrorIs(t, err, boom)
}

func TestRecommendLogsVocabulary(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	r := New(zap.New(core), WithWorkers(2))

	_, err := r.Recommend(context.Background(), []string{"JS"}, []JobRecord{{ID: "1", SkillsRequired: []string{"javascript", "node"}}})
	require.NoError(t, err)

	entries := observed.FilterMessage("built vocabulary").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 2, fields["dimensions"])
	assert.EqualValues(t, 2, fields["workers"])
}

func TestLookupThenScoreKeepsLowMatches(t *testing.T) {
	t.Parallel()

	users := &stubUsers{skills: map[string][]string{"dev@example.com": {"Go"}}}
	corpus := &stubJobs{jobs: []JobRecord{
		{ID: "1", SkillsRequired: []string{"excel"}},
		{ID: "2", SkillsRequired: []string{"go"}},
	}}

	userSkills, jobs, err := Lookup(context.Background(), users, corpus, "dev@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, userSkills)
	assert.Len(t, jobs, 2)

	got, err := New(nil).Score(context.Background(), userSkills, jobs)
	require.NoError(t, err)
	assert.Equal(t, []Recommendation{
		{JobID: "2", MatchPercentage: 100},
		{JobID: "1", MatchPercentage: 30},
	}, got)
}
