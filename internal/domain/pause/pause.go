// Package pause segments an utterance into speech and silence using
// short-term RMS energy, and derives the pause and speaking-rate metrics
// for the fluency assessment.
package pause

import (
	"math"
	"sort"
	"strings"
)

// Default detector configuration constants.
const (
	defaultFrameLength = 2048
	defaultHopLength   = 512

	// The silence threshold adapts to the utterance: it is this percentile
	// of the per-frame RMS distribution, so quiet recordings self-calibrate.
	defaultSilencePercentile = 20.0

	// Gaps at or under this length are articulation, not pauses.
	minPauseSeconds = 0.1

	// Pauses longer than this are flagged as problematic.
	longPauseSeconds = 1.5
)

// Optimal speaking-rate band in words per minute.
const (
	optimalRateLowWPM  = 120.0
	optimalRateHighWPM = 160.0
)

// Pause is a half-open silent interval [Start, End) in seconds.
type Pause struct {
	Start float64
	End   float64
}

// Duration returns End - Start.
func (p Pause) Duration() float64 {
	return p.End - p.Start
}

// Result carries the pause metrics for one utterance.
type Result struct {
	Pauses      []Pause
	TotalPauses int
	LongPauses  int
	AvgDuration float64 // seconds, 0 when no pauses
	TotalPaused float64 // summed pause time in seconds
}

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithFrameLengths sets the RMS window and hop sizes in samples.
func WithFrameLengths(frame, hop int) Option {
	return func(d *Detector) {
		if frame > 0 && hop > 0 && hop <= frame {
			d.frameLength = frame
			d.hopLength = hop
		}
	}
}

// WithSilencePercentile sets the adaptive-threshold percentile (0-100).
func WithSilencePercentile(p float64) Option {
	return func(d *Detector) {
		if p > 0 && p < 100 {
			d.percentile = p
		}
	}
}

// Detector finds pauses by adaptive energy thresholding. Stateless and safe
// for concurrent use.
type Detector struct {
	frameLength int
	hopLength   int
	percentile  float64
}

// NewDetector creates a detector with default parameters.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		frameLength: defaultFrameLength,
		hopLength:   defaultHopLength,
		percentile:  defaultSilencePercentile,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the ordered, non-overlapping pause intervals of the clip.
// A silent run still open at the end of the signal is not closed into a
// pause, matching the assessment framework's segmentation rule.
func (d *Detector) Detect(samples []float64, sampleRate int) Result {
	if sampleRate <= 0 || len(samples) < d.frameLength {
		return Result{}
	}

	rms := d.frameRMS(samples)
	threshold := percentile(rms, d.percentile)
	frameTime := float64(d.hopLength) / float64(sampleRate)

	// The comparison is inclusive so that digitally silent frames (RMS
	// exactly zero, threshold exactly zero) still count as silence.
	var pauses []Pause
	pauseStart := -1.0
	for i, e := range rms {
		silent := e <= threshold
		switch {
		case silent && pauseStart < 0:
			pauseStart = float64(i) * frameTime
		case !silent && pauseStart >= 0:
			end := float64(i) * frameTime
			if end-pauseStart > minPauseSeconds {
				pauses = append(pauses, Pause{Start: pauseStart, End: end})
			}
			pauseStart = -1
		}
	}

	res := Result{Pauses: pauses, TotalPauses: len(pauses)}
	for _, p := range pauses {
		dur := p.Duration()
		res.TotalPaused += dur
		if dur > longPauseSeconds {
			res.LongPauses++
		}
	}
	if len(pauses) > 0 {
		res.AvgDuration = res.TotalPaused / float64(len(pauses))
	}
	return res
}

// frameRMS computes per-frame root-mean-square energy.
func (d *Detector) frameRMS(samples []float64) []float64 {
	frames := 1 + (len(samples)-d.frameLength)/d.hopLength
	rms := make([]float64, frames)
	for i := 0; i < frames; i++ {
		frame := samples[i*d.hopLength : i*d.hopLength+d.frameLength]
		sum := 0.0
		for _, s := range frame {
			sum += s * s
		}
		rms[i] = math.Sqrt(sum / float64(len(frame)))
	}
	return rms
}

// percentile returns the p-th percentile of values using linear
// interpolation between closest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Rate carries the speaking-rate metrics. WPM and OptimalRate are nil when
// the rate is undefined (no transcript, or pauses consuming the whole clip).
type Rate struct {
	WPM         *float64
	OptimalRate *bool
	WordCount   int
}

// EstimateRate computes words-per-minute over speaking time (total duration
// minus pause time). It never divides by zero: a non-positive speaking time
// leaves the rate undefined.
func EstimateRate(transcript string, durationSeconds, totalPausedSeconds float64) Rate {
	words := strings.Fields(transcript)
	r := Rate{WordCount: len(words)}
	if len(words) == 0 {
		return r
	}

	speakingMinutes := (durationSeconds - totalPausedSeconds) / 60
	if speakingMinutes <= 0 {
		return r
	}

	wpm := float64(len(words)) / speakingMinutes
	optimal := wpm >= optimalRateLowWPM && wpm <= optimalRateHighWPM
	r.WPM = &wpm
	r.OptimalRate = &optimal
	return r
}
