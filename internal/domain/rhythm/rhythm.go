// Package rhythm scores pause-timing consistency for the fluency
// assessment.
package rhythm

import "github.com/okian/cadence/internal/domain/pause"

// Scoring constants.
const (
	defaultScore    = 100.0
	variancePenalty = 10.0
)

// Score maps the variability of pause durations onto [0, 100]. Fewer than
// two pauses give the default score: there is not enough data to penalize.
//
// The variance is taken over the differences between consecutive pause
// durations (not the gaps between pause onsets); lower variance means a
// steadier delivery.
func Score(pauses []pause.Pause) float64 {
	if len(pauses) < 2 {
		return defaultScore
	}

	diffs := make([]float64, len(pauses)-1)
	for i := 1; i < len(pauses); i++ {
		diffs[i-1] = pauses[i].Duration() - pauses[i-1].Duration()
	}

	mean := 0.0
	for _, d := range diffs {
		mean += d
	}
	mean /= float64(len(diffs))

	variance := 0.0
	for _, d := range diffs {
		dev := d - mean
		variance += dev * dev
	}
	variance /= float64(len(diffs))

	score := defaultScore - variancePenalty*variance
	if score < 0 {
		score = 0
	}
	return score
}
