package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/hh-recommender/internal/skills"
)

func TestMatchPercentage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cosine float64
		expect int
	}{
		{name: "zero overlap is floored", cosine: 0, expect: 30},
		{name: "tiny overlap is floored", cosine: 0.01, expect: 30},
		{name: "just above floor", cosine: 0.0256, expect: 32},
		{name: "quarter", cosine: 0.0625, expect: 50},
		{name: "clamped", cosine: 0.8165, expect: 100},
		{name: "identical", cosine: 1, expect: 100},
		{name: "rounds to nearest", cosine: 0.09, expect: 60},
		{name: "rounds up", cosine: 0.0529, expect: 46},
		{name: "negative treated as zero", cosine: -0.5, expect: 30},
		{name: "nan treated as zero", cosine: math.NaN(), expect: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, MatchPercentage(tt.cosine))
		})
	}
}

func TestMatchPercentageBounds(t *testing.T) {
	t.Parallel()

	for i := 0; i <= 1000; i++ {
		pct := MatchPercentage(float64(i) / 1000)
		assert.GreaterOrEqual(t, pct, 30)
		assert.LessOrEqual(t, pct, 100)
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100, Score(skills.Vector{1, 1, 0}, skills.Vector{1, 1, 1}))
	assert.Equal(t, 30, Score(skills.Vector{1, 0}, skills.Vector{0, 1}))
	assert.Equal(t, 30, Score(skills.Vector{1, 0}, skills.Vector{0, 0}), "empty job vector keeps the floor")
}

func TestScoreIsMonotonicWhenJobGainsUserSkills(t *testing.T) {
	t.Parallel()

	user := []string{"go", "sql", "docker", "kubernetes", "redis"}
	pool := []string{"go", "sql", "docker", "kubernetes", "redis", "java", "php", "scala", "ruby"}

	// Every non-empty subset of pool as job B, then grow it by one user skill to get job A.
	for mask := 1; mask < 1<<len(pool); mask++ {
		var base []string
		for i, skill := range pool {
			if mask&(1<<i) != 0 {
				base = append(base, skill)
			}
		}

		for _, extra := range user {
			if contains(base, extra) {
				continue
			}
			grown := append(append([]string(nil), base...), extra)

			vocab := skills.BuildVocabulary(user, [][]string{base, grown})
			userVec := vocab.Vectorize(user)
			before := Score(userVec, vocab.Vectorize(base))
			after := Score(userVec, vocab.Vectorize(grown))

			if after < before {
				t.Fatalf("score dropped from %d to %d after adding %q to %v", before, after, extra, base)
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
