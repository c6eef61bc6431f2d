// Package analysis runs the three metric analyzers over a decoded clip and
// assembles the result document: per-metric blocks, category scores, and
// learner feedback. A failing metric degrades only its own block so a
// partially analyzable clip still produces a usable result.
package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/cadence/internal/domain/assess"
	"github.com/okian/cadence/internal/domain/audio"
	"github.com/okian/cadence/internal/domain/pause"
	"github.com/okian/cadence/internal/domain/pitch"
	"github.com/okian/cadence/internal/domain/rhythm"
	"github.com/okian/cadence/internal/domain/voice"
	"github.com/okian/cadence/pkg/logger"
	"github.com/okian/cadence/pkg/metrics"
)

const noPitchFeedback = "No pitch detected - please speak more clearly"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for analysis diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithPitchTracker replaces the default pitch tracker.
func WithPitchTracker(t *pitch.Tracker) Option {
	return func(e *Engine) {
		if t != nil {
			e.pitch = t
		}
	}
}

// WithPauseDetector replaces the default pause detector.
func WithPauseDetector(d *pause.Detector) Option {
	return func(e *Engine) {
		if d != nil {
			e.pause = d
		}
	}
}

// WithVoiceAnalyzer replaces the default voice-quality analyzer.
func WithVoiceAnalyzer(a *voice.Analyzer) Option {
	return func(e *Engine) {
		if a != nil {
			e.voice = a
		}
	}
}

// Engine owns the metric analyzers. It is stateless across calls and safe
// for concurrent use by multiple workers.
type Engine struct {
	pitch *pitch.Tracker
	pause *pause.Detector
	voice *voice.Analyzer
	log   logger.Logger
}

// NewEngine creates an engine with default analyzers.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		pitch: pitch.NewTracker(),
		pause: pause.NewDetector(),
		voice: voice.NewAnalyzer(),
		log:   logger.Named("analysis"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the three metric analyzers concurrently and folds their
// findings into scores and feedback. The transcript may be empty, in which
// case the speaking rate is reported as unknown. An empty clip yields the
// fallback document.
func (e *Engine) Analyze(ctx context.Context, clip audio.Clip, transcript string) Result {
	if clip.Empty() {
		return Fallback("empty audio")
	}
	if err := ctx.Err(); err != nil {
		return Fallback(err.Error())
	}

	var (
		wg            sync.WaitGroup
		pronunciation PronunciationMetrics
		fluency       FluencyMetrics
		voiceQuality  VoiceQualityMetrics
	)
	wg.Add(3)
	go e.runStage(ctx, &wg, "pronunciation", &pronunciation.Error, func() {
		pronunciation = e.analyzePronunciation(clip)
	})
	go e.runStage(ctx, &wg, "fluency", &fluency.Error, func() {
		fluency = e.analyzeFluency(clip, transcript)
	})
	go e.runStage(ctx, &wg, "voice_quality", &voiceQuality.Error, func() {
		voiceQuality = e.analyzeVoiceQuality(clip)
	})
	wg.Wait()

	scores := assess.Compute(assessInput(pronunciation, fluency, voiceQuality))

	return Result{
		Pronunciation: pronunciation,
		Fluency:       fluency,
		VoiceQuality:  voiceQuality,
		Assessment: Assessment{
			PronunciationScore: scores.Pronunciation,
			FluencyScore:       scores.Fluency,
			VoiceQualityScore:  scores.VoiceQuality,
			OverallAudioScore:  scores.Overall,
			Summary:            assess.Summary(scores),
		},
		AudioDurationSeconds: clip.Duration(),
	}
}

// runStage executes one metric analyzer, converting a panic into that
// block's error string so a bad clip cannot take down the worker.
func (e *Engine) runStage(ctx context.Context, wg *sync.WaitGroup, name string, errOut *string, fn func()) {
	defer wg.Done()
	start := time.Now()
	defer func() {
		metrics.RecordStageLatency(name, float64(time.Since(start).Milliseconds()))
	}()
	defer func() {
		if r := recover(); r != nil {
			*errOut = fmt.Sprintf("%v", r)
			e.log.Error(ctx, "metric analyzer panicked",
				logger.String("stage", name),
				logger.Any("panic", r))
		}
	}()
	fn()
}

func (e *Engine) analyzePronunciation(clip audio.Clip) PronunciationMetrics {
	res := e.pitch.Analyze(clip.Samples(), clip.Rate())
	if res.VoicedFrames == 0 {
		return PronunciationMetrics{
			OptimalRange: false,
			Monotonous:   true,
			Feedback:     noPitchFeedback,
		}
	}
	return PronunciationMetrics{
		PitchRangeHz:   res.RangeHz,
		PitchMeanHz:    res.MeanHz,
		PitchStdHz:     res.StdHz,
		OptimalRange:   res.OptimalRange,
		Monotonous:     res.Monotonous,
		Feedback:       assess.PitchFeedback(res.RangeHz, res.OptimalRange, res.Monotonous),
		ContourSamples: res.ContourSample,
	}
}

func (e *Engine) analyzeFluency(clip audio.Clip, transcript string) FluencyMetrics {
	pauses := e.pause.Detect(clip.Samples(), clip.Rate())
	rate := pause.EstimateRate(transcript, clip.Duration(), pauses.TotalPaused)

	return FluencyMetrics{
		SpeakingRateWPM:        rate.WPM,
		OptimalRate:            rate.OptimalRate,
		TotalPauses:            pauses.TotalPauses,
		LongPauses:             pauses.LongPauses,
		AvgPauseDurationSec:    pauses.AvgDuration,
		RhythmConsistencyScore: rhythm.Score(pauses.Pauses),
		Feedback:               assess.FluencyFeedback(rate.WPM, pauses.LongPauses, rate.OptimalRate),
	}
}

func (e *Engine) analyzeVoiceQuality(clip audio.Clip) VoiceQualityMetrics {
	m, err := e.voice.Analyze(clip.Samples(), clip.Rate())
	if err != nil {
		return VoiceQualityMetrics{Error: err.Error()}
	}
	return VoiceQualityMetrics{
		JitterPercent:  m.JitterPercent,
		ShimmerPercent: m.ShimmerPercent,
		HNRdB:          m.HNRdB,
		JitterNormal:   m.JitterNormal,
		ShimmerNormal:  m.ShimmerNormal,
		HNRGood:        m.HNRGood,
		Feedback:       assess.VoiceFeedback(m.JitterNormal, m.ShimmerNormal, m.HNRGood),
	}
}

// assessInput maps the metric blocks onto the scoring inputs. A block that
// carries an error scores with degraded defaults: pronunciation findings
// pessimistic, fluency and voice findings neutral.
func assessInput(p PronunciationMetrics, f FluencyMetrics, v VoiceQualityMetrics) assess.Input {
	in := assess.Input{
		JitterNormal:  true,
		ShimmerNormal: true,
		HNRGood:       true,
	}
	if p.Error == "" {
		in.Monotonous = p.Monotonous
		in.OptimalPitchRange = p.OptimalRange
	}
	if f.Error == "" {
		in.LongPauses = f.LongPauses
		in.OptimalRate = f.OptimalRate
	}
	if v.Error == "" {
		in.JitterNormal = v.JitterNormal
		in.ShimmerNormal = v.ShimmerNormal
		in.HNRGood = v.HNRGood
	}
	return in
}

// Fallback returns the document served when the clip could not be analyzed
// at all: every block degraded and every score zero.
func Fallback(reason string) Result {
	return Result{
		Error:         reason,
		Pronunciation: PronunciationMetrics{Error: "Analysis unavailable"},
		Fluency:       FluencyMetrics{Error: "Analysis unavailable"},
		VoiceQuality:  VoiceQualityMetrics{Error: "Analysis unavailable"},
		Assessment: Assessment{
			Summary: "Audio analysis failed - please try again",
		},
	}
}
