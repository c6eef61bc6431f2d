package testclips

import "time"

// Config holds configuration for the clip test.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumClips     int           // Number of clips to generate
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // How often to poll for async results
	PollTimeout  time.Duration // How long to wait for a single result
	OutputDir    string        // Directory for generated WAV files (empty: keep in memory only)
	LogFile      string        // Log file for test output
	Verbose      bool          // Enable verbose logging
}

// Clip is a synthetic recording ready for submission.
type Clip struct {
	ID         string  // request id sent with the upload
	Profile    string  // which voice profile produced it
	Transcript string  // transcript sent with the upload
	WAV        []byte  // encoded PCM16 WAV payload
	Duration   float64 // seconds of audio
}

// AckResponse is the response from async clip submission.
type AckResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// JobResponse is the response from polling an analysis job.
type JobResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Result *AnalysisResult `json:"result,omitempty"`
}

// AnalysisResult mirrors the analysis document returned by the service.
// Only the fields the verifier inspects are declared.
type AnalysisResult struct {
	Pronunciation struct {
		PitchMeanHz float64 `json:"pitch_mean_hz"`
		Monotonous  bool    `json:"is_monotonous"`
		Error       string  `json:"error,omitempty"`
	} `json:"pronunciation_analysis"`
	Fluency struct {
		SpeakingRateWPM *float64 `json:"speaking_rate_wpm"`
		LongPauses      int      `json:"long_pauses"`
		Error           string   `json:"error,omitempty"`
	} `json:"fluency_metrics"`
	Assessments struct {
		Pronunciation float64 `json:"pronunciation_score"`
		Fluency       float64 `json:"fluency_score"`
		VoiceQuality  float64 `json:"voice_quality_score"`
		Overall       float64 `json:"overall_audio_score"`
		Summary       string  `json:"summary"`
	} `json:"assessments"`
	DurationSeconds float64 `json:"audio_duration_seconds"`
	Error           string  `json:"error,omitempty"`
}

// TipsResponse is the response from the tips endpoint.
type TipsResponse struct {
	ID           string   `json:"id"`
	OverallScore float64  `json:"overall_score"`
	Summary      string   `json:"summary"`
	Tips         []string `json:"tips"`
}

// Stats holds test statistics.
type Stats struct {
	ClipsGenerated   int
	ClipsSubmitted   int
	ClipsAccepted    int
	ClipsDuplicate   int
	ClipsFailed      int
	ResultsRetrieved int
	ResultsTimedOut  int
	TipsRetrieved    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
