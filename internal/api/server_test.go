package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hh-recommender/internal/recommend"
)

type stubUsers map[string][]string

func (s stubUsers) UserSkills(_ context.Context, email string) ([]string, error) {
	skills, ok := s[email]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", email, recommend.ErrNotFound)
	}
	if len(skills) == 0 {
		return nil, fmt.Errorf("user %q: %w", email, recommend.ErrNoSkills)
	}
	return skills, nil
}

type stubJobs struct {
	jobs []recommend.JobRecord
	err  error
}

func (s *stubJobs) Jobs(context.Context) ([]recommend.JobRecord, error) {
	return s.jobs, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, jobs *stubJobs, health Pinger) http.Handler {
	t.Helper()

	users := stubUsers{
		"dev@example.com":   {"Go", "Docker"},
		"empty@example.com": {},
	}

	return New(Deps{
		Users:  users,
		Jobs:   jobs,
		Health: health,
		Logger: zap.NewNop(),
	}).Handler(nil)
}

func defaultJobs() *stubJobs {
	return &stubJobs{jobs: []recommend.JobRecord{
		{ID: "1", SkillsRequired: []string{"go", "docker"}},
		{ID: "2", SkillsRequired: []string{"excel"}},
	}}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRecommendations(t *testing.T) {
	h := newTestServer(t, defaultJobs(), nil)

	rec := get(t, h, "/users/dev@example.com/recommendations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body recommendationsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "dev@example.com", body.User)
	assert.False(t, body.All)
	assert.Equal(t, []recommend.Recommendation{{JobID: "1", MatchPercentage: 100}}, body.Recommendations)
}

func TestRecommendationsAll(t *testing.T) {
	h := newTestServer(t, defaultJobs(), nil)

	rec := get(t, h, "/users/dev@example.com/recommendations?all=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var body recommendationsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.All)
	assert.Equal(t, []recommend.Recommendation{
		{JobID: "1", MatchPercentage: 100},
		{JobID: "2", MatchPercentage: 30},
	}, body.Recommendations)
}

func TestRecommendationsEmptyListIsArray(t *testing.T) {
	h := newTestServer(t, &stubJobs{jobs: []recommend.JobRecord{{ID: "1", SkillsRequired: []string{"excel"}}}}, nil)

	rec := get(t, h, "/users/dev@example.com/recommendations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"recommendations":[]`)
}

func TestRecommendationsErrors(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		jobs    *stubJobs
		status  int
		message string
	}{
		{"unknown user", "/users/missing@example.com/recommendations", defaultJobs(), http.StatusNotFound, "user not found"},
		{"user without skills", "/users/empty@example.com/recommendations", defaultJobs(), http.StatusNotFound, "user has no skills"},
		{"no jobs", "/users/dev@example.com/recommendations", &stubJobs{}, http.StatusNotFound, "no jobs available"},
		{"storage failure", "/users/dev@example.com/recommendations", &stubJobs{err: errors.New("boom")}, http.StatusInternalServerError, "internal error"},
		{"invalid all", "/users/dev@example.com/recommendations?all=maybe", defaultJobs(), http.StatusBadRequest, "invalid value for all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(t, tt.jobs, nil), tt.target)
			require.Equal(t, tt.status, rec.Code)

			var body errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.message, body.Error)
		})
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t, defaultJobs(), stubPinger{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, newTestServer(t, defaultJobs(), stubPinger{err: errors.New("down")}), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := New(Deps{Users: stubUsers{}, Jobs: defaultJobs(), Logger: zap.New(core)}).Handler(nil)

	rec := get(t, h, "/healthz")
	id := rec.Header().Get(requestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ContextMap()["run_id"])

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, given)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, given, rec.Header().Get(requestIDHeader))
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, defaultJobs(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/dev@example.com/recommendations", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
