// Package country derives a bounded 0-100 risk score for a country from its
// share of recorded incidents. Fewer incidents relative to the other
// countries yield a higher score, meaning lower risk.
package country

import (
	"math"
	"strings"
)

// Neutral is returned when no comparison is possible or the incident source
// fails.
const Neutral = 50

// Index is the per-invocation aggregate of an incident table.
type Index struct {
	Incidents map[string]int
	Total     int
}

// Score min-max scales the target's incident ratio across every country in
// incidents and inverts it. Names are compared case-insensitively and counts
// under names that differ only in case are summed. The target is included
// with ratio 0 when it has no recorded incidents. Equal ratios everywhere, or
// no incidents at all, yield Neutral. Negative counts count as zero.
func Score(incidents map[string]int, target string) int {
	folded := make(map[string]int, len(incidents))
	total := 0
	for name, n := range incidents {
		folded[foldName(name)] += max(n, 0)
		total += max(n, 0)
	}
	if total == 0 {
		return Neutral
	}

	targetCount, found := folded[foldName(target)]
	minRatio, maxRatio := math.Inf(1), math.Inf(-1)
	for _, n := range folded {
		r := ratio(n, total)
		minRatio = math.Min(minRatio, r)
		maxRatio = math.Max(maxRatio, r)
	}
	if !found {
		minRatio = math.Min(minRatio, 0)
	}

	if maxRatio == minRatio {
		return Neutral
	}

	t := ratio(targetCount, total)
	score := math.Round(100 - (t-minRatio)/(maxRatio-minRatio)*100)
	return int(math.Max(0, math.Min(100, score)))
}

func ratio(n, total int) float64 {
	return float64(n) / float64(total)
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
