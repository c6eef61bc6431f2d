// Package pitch extracts a fundamental-frequency contour from a mono
// waveform and derives the range, mean, and variability statistics used by
// the pronunciation assessment.
//
// The tracker implements YIN (de Cheveigné & Kawahara, 2002): a squared
// difference function over candidate lags, normalized by its cumulative
// mean, with the first qualifying local minimum below a fixed threshold
// picked as the period and refined by parabolic interpolation.
package pitch

import "math"

// Default tracker configuration constants.
const (
	defaultMinFreq      = 50.0  // Hz, low male voice
	defaultMaxFreq      = 400.0 // Hz, high female voice
	defaultFrameLength  = 2048
	defaultHopLength    = 512
	defaultYinThreshold = 0.1

	// Assessment thresholds for the expressiveness classification.
	optimalRangeLowHz   = 85.0
	optimalRangeHighHz  = 255.0
	monotonyThresholdHz = 30.0

	// Number of contour samples retained on the result for display.
	contourSampleLimit = 100
)

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithFrequencyBounds sets the f0 search range in Hz.
func WithFrequencyBounds(minFreq, maxFreq float64) Option {
	return func(t *Tracker) {
		if minFreq > 0 && maxFreq > minFreq {
			t.minFreq = minFreq
			t.maxFreq = maxFreq
		}
	}
}

// WithThreshold sets the normalized-difference acceptance threshold.
func WithThreshold(threshold float64) Option {
	return func(t *Tracker) {
		if threshold > 0 && threshold < 1 {
			t.threshold = threshold
		}
	}
}

// WithFrameLengths sets the analysis window and hop sizes in samples.
func WithFrameLengths(frame, hop int) Option {
	return func(t *Tracker) {
		if frame > 0 && hop > 0 && hop <= frame {
			t.frameLength = frame
			t.hopLength = hop
		}
	}
}

// Result carries the voiced-frame statistics for one utterance.
type Result struct {
	RangeHz float64 // peak-to-peak spread of voiced f0
	MeanHz  float64
	StdHz   float64 // population standard deviation

	OptimalRange bool // range within the expressive band
	Monotonous   bool // std below the monotony threshold

	VoicedFrames  int
	ContourSample []float64 // up to contourSampleLimit voiced f0 values
}

// Tracker estimates per-frame f0 via YIN. It is stateless across calls and
// safe for concurrent use.
type Tracker struct {
	minFreq     float64
	maxFreq     float64
	frameLength int
	hopLength   int
	threshold   float64
}

// NewTracker creates a tracker with default parameters.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		minFreq:     defaultMinFreq,
		maxFreq:     defaultMaxFreq,
		frameLength: defaultFrameLength,
		hopLength:   defaultHopLength,
		threshold:   defaultYinThreshold,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Contour returns per-frame f0 estimates in Hz, 0 marking unvoiced frames.
// Frame i covers samples [i*hop, i*hop+frame); trailing samples that do not
// fill a window are dropped.
func (t *Tracker) Contour(samples []float64, sampleRate int) []float64 {
	if sampleRate <= 0 || len(samples) < t.frameLength {
		return nil
	}

	tauMin := int(float64(sampleRate) / t.maxFreq)
	tauMax := int(math.Ceil(float64(sampleRate) / t.minFreq))
	half := t.frameLength / 2
	if tauMax > half-1 {
		tauMax = half - 1
	}
	if tauMin < 1 {
		tauMin = 1
	}
	if tauMin >= tauMax {
		return nil
	}

	frames := 1 + (len(samples)-t.frameLength)/t.hopLength
	contour := make([]float64, frames)
	diff := make([]float64, tauMax+1)
	cmndf := make([]float64, tauMax+1)

	for i := 0; i < frames; i++ {
		frame := samples[i*t.hopLength : i*t.hopLength+t.frameLength]
		contour[i] = t.estimate(frame, sampleRate, tauMin, tauMax, diff, cmndf)
	}
	return contour
}

// estimate runs YIN on a single frame. diff and cmndf are scratch buffers
// of length tauMax+1 reused across frames.
func (t *Tracker) estimate(frame []float64, sampleRate, tauMin, tauMax int, diff, cmndf []float64) float64 {
	half := len(frame) / 2

	// Squared difference function over all lags up to tauMax. Lags below
	// tauMin still contribute to the cumulative-mean normalization.
	for tau := 1; tau <= tauMax; tau++ {
		sum := 0.0
		for j := 0; j < half; j++ {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}

	// Cumulative-mean-normalized difference function.
	cmndf[0] = 1.0
	running := 0.0
	for tau := 1; tau <= tauMax; tau++ {
		running += diff[tau]
		if running == 0 {
			cmndf[tau] = 1.0
			continue
		}
		cmndf[tau] = diff[tau] * float64(tau) / running
	}

	// First dip below the threshold, walked down to its local minimum.
	for tau := tauMin; tau <= tauMax; tau++ {
		if cmndf[tau] >= t.threshold {
			continue
		}
		for tau+1 <= tauMax && cmndf[tau+1] < cmndf[tau] {
			tau++
		}
		period := parabolicRefine(cmndf, tau, tauMax)
		if period <= 0 {
			return 0
		}
		f0 := float64(sampleRate) / period
		if f0 < t.minFreq || f0 > t.maxFreq {
			return 0
		}
		return f0
	}
	return 0 // unvoiced
}

// parabolicRefine interpolates the minimum location between lag samples.
func parabolicRefine(data []float64, idx, maxIdx int) float64 {
	if idx <= 0 || idx >= maxIdx {
		return float64(idx)
	}
	y1 := data[idx-1]
	y2 := data[idx]
	y3 := data[idx+1]
	a := (y1 - 2*y2 + y3) / 2
	if a == 0 {
		return float64(idx)
	}
	b := (y3 - y1) / 2
	return float64(idx) - b/(2*a)
}

// Analyze extracts the contour and folds the voiced frames into Result.
// Zero voiced frames yield a zeroed Result with Monotonous set; the caller
// decides how to phrase that condition.
func (t *Tracker) Analyze(samples []float64, sampleRate int) Result {
	contour := t.Contour(samples, sampleRate)

	voiced := make([]float64, 0, len(contour))
	for _, f0 := range contour {
		if f0 > 0 {
			voiced = append(voiced, f0)
		}
	}

	if len(voiced) == 0 {
		return Result{Monotonous: true}
	}

	minF, maxF := voiced[0], voiced[0]
	sum := 0.0
	for _, f0 := range voiced {
		if f0 < minF {
			minF = f0
		}
		if f0 > maxF {
			maxF = f0
		}
		sum += f0
	}
	mean := sum / float64(len(voiced))

	variance := 0.0
	for _, f0 := range voiced {
		d := f0 - mean
		variance += d * d
	}
	variance /= float64(len(voiced))
	std := math.Sqrt(variance)

	rangeHz := maxF - minF
	sampleLen := len(voiced)
	if sampleLen > contourSampleLimit {
		sampleLen = contourSampleLimit
	}

	return Result{
		RangeHz:       rangeHz,
		MeanHz:        mean,
		StdHz:         std,
		OptimalRange:  rangeHz >= optimalRangeLowHz && rangeHz <= optimalRangeHighHz,
		Monotonous:    std < monotonyThresholdHz,
		VoicedFrames:  len(voiced),
		ContourSample: voiced[:sampleLen:sampleLen],
	}
}
