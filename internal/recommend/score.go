package recommend

import (
	"math"

	"github.com/spigell/hh-recommender/internal/skills"
)

const (
	// MinMatchPercentage is the lowest match percentage Rank keeps.
	MinMatchPercentage = 50

	boostFactor = 2.0
	// scoreFloor applies to every scored job, zero-overlap jobs included.
	scoreFloor = 0.3
)

// MatchPercentage reshapes a raw cosine similarity into a 30-100 match percentage:
// square root boost, doubled and clamped to 1, floored at 0.3, rounded to a percent.
func MatchPercentage(cosine float64) int {
	if cosine < 0 || math.IsNaN(cosine) {
		cosine = 0
	}

	score := math.Min(math.Sqrt(cosine)*boostFactor, 1.0)
	score = math.Max(score, scoreFloor)

	return int(math.Round(score * 100))
}

// Score returns the match percentage of a job vector against the user vector.
func Score(user, job skills.Vector) int {
	return MatchPercentage(skills.Cosine(user, job))
}
