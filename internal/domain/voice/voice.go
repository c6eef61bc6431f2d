// Package voice computes the perturbation measures of voice quality:
// jitter (cycle-to-cycle period variation), shimmer (cycle-to-cycle
// amplitude variation), and the harmonics-to-noise ratio.
//
// Cycles are located pitch-synchronously: each short window's normalized
// autocorrelation peak in the plausible glottal range gives that window's
// period, amplitude, and harmonicity. Adjacent windows whose periods
// differ by more than a cutoff ratio are rejected as octave errors rather
// than genuine perturbation.
package voice

import (
	"errors"
	"math"
)

// Default analyzer configuration constants.
const (
	defaultWindowSeconds = 0.04
	defaultHopSeconds    = 0.01
	defaultMinFreq       = 75.0  // Hz, glottal range lower bound
	defaultMaxFreq       = 600.0 // Hz, glottal range upper bound

	// Maximum relative variation between adjacent candidate periods and
	// amplitudes; larger jumps are treated as tracking errors.
	defaultPeriodFactor    = 1.3
	defaultAmplitudeFactor = 1.6

	// Windows whose autocorrelation peak falls below this are unvoiced.
	defaultVoicingThreshold = 0.45

	// Silence guard: windows under this RMS carry no usable periodicity.
	silenceFloorRMS = 1e-6

	// Harmonicity is clamped away from 0 and 1 before the dB conversion.
	harmonicityEpsilon = 1e-15
)

// Clinical normality thresholds.
const (
	jitterNormalPercent  = 1.04
	shimmerNormalPercent = 3.81
	hnrGoodDB            = 20.0
)

// ErrNoVoicedSegments reports that no reliably voiced cycles were found,
// so the perturbation measures are undefined.
var ErrNoVoicedSegments = errors.New("no reliably voiced segments detected")

// Metrics carries the voice-quality measures for one utterance.
type Metrics struct {
	JitterPercent  float64
	ShimmerPercent float64
	HNRdB          float64

	JitterNormal  bool
	ShimmerNormal bool
	HNRGood       bool

	VoicedFrames int
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithFrequencyBounds sets the glottal period search range in Hz.
func WithFrequencyBounds(minFreq, maxFreq float64) Option {
	return func(a *Analyzer) {
		if minFreq > 0 && maxFreq > minFreq {
			a.minFreq = minFreq
			a.maxFreq = maxFreq
		}
	}
}

// WithVoicingThreshold sets the autocorrelation floor for voiced windows.
func WithVoicingThreshold(threshold float64) Option {
	return func(a *Analyzer) {
		if threshold > 0 && threshold < 1 {
			a.voicingThreshold = threshold
		}
	}
}

// WithVariationCutoffs sets the period and amplitude ratio cutoffs used to
// reject spurious doubling/halving between adjacent cycles.
func WithVariationCutoffs(periodFactor, amplitudeFactor float64) Option {
	return func(a *Analyzer) {
		if periodFactor > 1 {
			a.periodFactor = periodFactor
		}
		if amplitudeFactor > 1 {
			a.amplitudeFactor = amplitudeFactor
		}
	}
}

// Analyzer computes jitter, shimmer, and HNR. It is stateless and safe for
// concurrent use.
type Analyzer struct {
	windowSeconds    float64
	hopSeconds       float64
	minFreq          float64
	maxFreq          float64
	periodFactor     float64
	amplitudeFactor  float64
	voicingThreshold float64
}

// NewAnalyzer creates an analyzer with default parameters.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		windowSeconds:    defaultWindowSeconds,
		hopSeconds:       defaultHopSeconds,
		minFreq:          defaultMinFreq,
		maxFreq:          defaultMaxFreq,
		periodFactor:     defaultPeriodFactor,
		amplitudeFactor:  defaultAmplitudeFactor,
		voicingThreshold: defaultVoicingThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// cycle is one voiced window's period estimate.
type cycle struct {
	frame       int     // window index, used to require adjacency
	period      float64 // seconds
	amplitude   float64 // window peak magnitude
	harmonicity float64 // autocorrelation peak height in (0, 1)
}

// Analyze computes the voice-quality metrics for the clip. It returns
// ErrNoVoicedSegments when the signal holds too few voiced cycles for the
// perturbation measures to be meaningful; the caller degrades that single
// metric block rather than the whole pipeline.
func (a *Analyzer) Analyze(samples []float64, sampleRate int) (Metrics, error) {
	if sampleRate <= 0 {
		return Metrics{}, ErrNoVoicedSegments
	}

	window := int(a.windowSeconds * float64(sampleRate))
	hop := int(a.hopSeconds * float64(sampleRate))
	lagMin := int(float64(sampleRate) / a.maxFreq)
	lagMax := int(math.Ceil(float64(sampleRate) / a.minFreq))
	if lagMin < 1 {
		lagMin = 1
	}
	if lagMax > window-2 {
		lagMax = window - 2
	}
	if window <= 0 || hop <= 0 || lagMin >= lagMax || len(samples) < window {
		return Metrics{}, ErrNoVoicedSegments
	}

	cycles := a.trackCycles(samples, sampleRate, window, hop, lagMin, lagMax)
	if len(cycles) < 2 {
		return Metrics{}, ErrNoVoicedSegments
	}

	jitter, jitterOK := perturbation(cycles, func(c cycle) float64 { return c.period }, a.periodFactor, nil)
	shimmer, shimmerOK := perturbation(cycles, func(c cycle) float64 { return c.amplitude }, a.amplitudeFactor, func(prev, cur cycle) bool {
		return ratio(prev.period, cur.period) < a.periodFactor
	})
	if !jitterOK || !shimmerOK {
		return Metrics{}, ErrNoVoicedSegments
	}

	hnr := 0.0
	for _, c := range cycles {
		r := c.harmonicity
		if r < harmonicityEpsilon {
			r = harmonicityEpsilon
		}
		if r > 1-harmonicityEpsilon {
			r = 1 - harmonicityEpsilon
		}
		hnr += 10 * math.Log10(r/(1-r))
	}
	hnr /= float64(len(cycles))

	return Metrics{
		JitterPercent:  jitter,
		ShimmerPercent: shimmer,
		HNRdB:          hnr,
		JitterNormal:   jitter < jitterNormalPercent,
		ShimmerNormal:  shimmer < shimmerNormalPercent,
		HNRGood:        hnr > hnrGoodDB,
		VoicedFrames:   len(cycles),
	}, nil
}

// trackCycles walks the clip window by window, keeping the windows whose
// autocorrelation peak marks a plausible glottal period.
func (a *Analyzer) trackCycles(samples []float64, sampleRate, window, hop, lagMin, lagMax int) []cycle {
	frames := 1 + (len(samples)-window)/hop
	cycles := make([]cycle, 0, frames)

	for i := 0; i < frames; i++ {
		frame := samples[i*hop : i*hop+window]

		energy := 0.0
		peak := 0.0
		for _, s := range frame {
			energy += s * s
			if s > peak {
				peak = s
			} else if -s > peak {
				peak = -s
			}
		}
		if math.Sqrt(energy/float64(len(frame))) < silenceFloorRMS {
			continue
		}

		lag, height := bestAutocorrPeak(frame, lagMin, lagMax)
		if lag <= 0 || height < a.voicingThreshold {
			continue
		}

		cycles = append(cycles, cycle{
			frame:       i,
			period:      lag / float64(sampleRate),
			amplitude:   peak,
			harmonicity: height,
		})
	}
	return cycles
}

// bestAutocorrPeak returns the interpolated lag and height of the highest
// local maximum of the normalized autocorrelation within [lagMin, lagMax].
func bestAutocorrPeak(frame []float64, lagMin, lagMax int) (float64, float64) {
	corr := make([]float64, lagMax+2)
	for tau := lagMin - 1; tau <= lagMax+1; tau++ {
		if tau < 1 || len(frame)-tau < 2 {
			continue
		}
		var cross, e0, e1 float64
		for j := 0; j < len(frame)-tau; j++ {
			cross += frame[j] * frame[j+tau]
			e0 += frame[j] * frame[j]
			e1 += frame[j+tau] * frame[j+tau]
		}
		if e0 <= 0 || e1 <= 0 {
			continue
		}
		corr[tau] = cross / math.Sqrt(e0*e1)
	}

	bestLag := -1
	bestVal := 0.0
	for tau := lagMin; tau <= lagMax; tau++ {
		if corr[tau] > corr[tau-1] && corr[tau] >= corr[tau+1] && corr[tau] > bestVal {
			bestLag = tau
			bestVal = corr[tau]
		}
	}
	if bestLag < 0 {
		return 0, 0
	}

	// Parabolic interpolation around the winning lag for sub-sample accuracy.
	y1, y2, y3 := corr[bestLag-1], corr[bestLag], corr[bestLag+1]
	a := (y1 - 2*y2 + y3) / 2
	refined := float64(bestLag)
	if a != 0 {
		refined -= (y3 - y1) / (4 * a)
	}
	return refined, bestVal
}

// perturbation computes the mean absolute difference between consecutive
// cycle values, relative to the mean value, as a percentage. Pairs whose
// values differ by more than maxFactor, that are not adjacent windows, or
// that fail the extra gate are excluded. The boolean is false when no pair
// qualifies.
func perturbation(cycles []cycle, value func(cycle) float64, maxFactor float64, gate func(prev, cur cycle) bool) (float64, bool) {
	var sumDiff, sumValue float64
	pairs := 0
	for i := range cycles {
		sumValue += value(cycles[i])
		if i == 0 || cycles[i].frame != cycles[i-1].frame+1 {
			continue
		}
		prev, cur := value(cycles[i-1]), value(cycles[i])
		if ratio(prev, cur) >= maxFactor {
			continue
		}
		if gate != nil && !gate(cycles[i-1], cycles[i]) {
			continue
		}
		sumDiff += math.Abs(cur - prev)
		pairs++
	}
	if pairs == 0 || sumValue <= 0 {
		return 0, false
	}
	meanValue := sumValue / float64(len(cycles))
	return (sumDiff / float64(pairs)) / meanValue * 100, true
}

// ratio returns the larger of x/y and y/x; non-positive inputs are treated
// as an unusable pair.
func ratio(x, y float64) float64 {
	if x <= 0 || y <= 0 {
		return math.Inf(1)
	}
	if x > y {
		return x / y
	}
	return y / x
}
