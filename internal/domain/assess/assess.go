// Package assess turns the raw prosody and voice-quality measures into
// bounded category scores and an overall score, plus the human-readable
// feedback shown to learners.
package assess

// Deduction weights applied to a perfect score of 100.
const (
	perfectScore = 100.0

	monotonyPenalty     = 20.0
	pitchRangePenalty   = 15.0
	longPausePenalty    = 10.0
	speakingRatePenalty = 15.0
	jitterPenalty       = 10.0
	shimmerPenalty      = 10.0
	hnrPenalty          = 15.0
)

// Input carries the boolean findings and counts the scores are built from.
// When a metric could not be computed the caller supplies the degraded
// defaults for its fields: pitch findings pessimistic, fluency and voice
// findings neutral.
type Input struct {
	Monotonous        bool
	OptimalPitchRange bool

	LongPauses  int
	OptimalRate *bool // nil when the speaking rate is unknown

	JitterNormal  bool
	ShimmerNormal bool
	HNRGood       bool
}

// Scores holds the bounded category scores. All values are in [0, 100].
type Scores struct {
	Pronunciation float64
	Fluency       float64
	VoiceQuality  float64
	Overall       float64
}

// Compute derives the category scores from the findings. Each category
// starts at 100 and loses a fixed amount per adverse finding; long pauses
// deduct per occurrence. The overall score is the plain mean of the three.
func Compute(in Input) Scores {
	pronunciation := perfectScore
	if in.Monotonous {
		pronunciation -= monotonyPenalty
	}
	if !in.OptimalPitchRange {
		pronunciation -= pitchRangePenalty
	}

	fluency := perfectScore
	fluency -= float64(in.LongPauses) * longPausePenalty
	if in.OptimalRate != nil && !*in.OptimalRate {
		fluency -= speakingRatePenalty
	}

	voice := perfectScore
	if !in.JitterNormal {
		voice -= jitterPenalty
	}
	if !in.ShimmerNormal {
		voice -= shimmerPenalty
	}
	if !in.HNRGood {
		voice -= hnrPenalty
	}

	pronunciation = clamp(pronunciation)
	fluency = clamp(fluency)
	voice = clamp(voice)

	return Scores{
		Pronunciation: pronunciation,
		Fluency:       fluency,
		VoiceQuality:  voice,
		Overall:       clamp((pronunciation + fluency + voice) / 3),
	}
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > perfectScore {
		return perfectScore
	}
	return score
}
