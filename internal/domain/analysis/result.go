package analysis

// PronunciationMetrics reports the pitch-based findings for one clip.
// Error is set when pitch tracking failed outright; a clip with no voiced
// frames still yields a regular block with pessimistic findings.
type PronunciationMetrics struct {
	PitchRangeHz   float64   `json:"pitch_range_hz"`
	PitchMeanHz    float64   `json:"pitch_mean_hz"`
	PitchStdHz     float64   `json:"pitch_std_hz"`
	OptimalRange   bool      `json:"is_optimal_range"`
	Monotonous     bool      `json:"is_monotonous"`
	Feedback       string    `json:"feedback,omitempty"`
	ContourSamples []float64 `json:"pitch_contour_samples,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// FluencyMetrics reports pacing and pausing. SpeakingRateWPM and
// OptimalRate are nil when no transcript was supplied or no speaking time
// remained after subtracting pauses.
type FluencyMetrics struct {
	SpeakingRateWPM        *float64 `json:"speaking_rate_wpm"`
	OptimalRate            *bool    `json:"is_optimal_rate"`
	TotalPauses            int      `json:"total_pauses"`
	LongPauses             int      `json:"long_pauses"`
	AvgPauseDurationSec    float64  `json:"avg_pause_duration_sec"`
	RhythmConsistencyScore float64  `json:"rhythm_consistency_score"`
	Feedback               string   `json:"feedback,omitempty"`
	Error                  string   `json:"error,omitempty"`
}

// VoiceQualityMetrics reports the perturbation measures. Error is set when
// the clip held no reliably voiced segments.
type VoiceQualityMetrics struct {
	JitterPercent  float64 `json:"jitter_percent"`
	ShimmerPercent float64 `json:"shimmer_percent"`
	HNRdB          float64 `json:"hnr_db"`
	JitterNormal   bool    `json:"is_jitter_normal"`
	ShimmerNormal  bool    `json:"is_shimmer_normal"`
	HNRGood        bool    `json:"is_hnr_good"`
	Feedback       string  `json:"feedback,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// Assessment holds the bounded category scores and the overall summary.
type Assessment struct {
	PronunciationScore float64 `json:"pronunciation_score"`
	FluencyScore       float64 `json:"fluency_score"`
	VoiceQualityScore  float64 `json:"voice_quality_score"`
	OverallAudioScore  float64 `json:"overall_audio_score"`
	Summary            string  `json:"summary"`
}

// Result is the complete analysis document returned to clients. A failed
// metric degrades its own block; only a failure to produce any result at
// all sets the top-level Error.
type Result struct {
	Pronunciation        PronunciationMetrics `json:"pronunciation_analysis"`
	Fluency              FluencyMetrics       `json:"fluency_metrics"`
	VoiceQuality         VoiceQualityMetrics  `json:"voice_quality"`
	Assessment           Assessment           `json:"assessments"`
	AudioDurationSeconds float64              `json:"audio_duration_seconds"`
	Error                string               `json:"error,omitempty"`
}
