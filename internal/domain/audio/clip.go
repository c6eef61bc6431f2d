// Package audio defines the immutable sample buffer the analyzers operate on.
//
// Conventions:
// - A Clip is created once per request from decoded input and never mutated.
// - Samples are mono float64, peak-normalized to [-1, 1] by the decoder.
package audio

// Clip holds one complete utterance: mono samples plus the sample rate.
type Clip struct {
	samples []float64
	rate    int
}

// New builds a Clip from decoded mono samples. The slice is retained, not
// copied; callers hand over ownership.
func New(samples []float64, rate int) Clip {
	return Clip{samples: samples, rate: rate}
}

// Samples returns the underlying sample buffer. Analyzers treat it as a
// read-only view; they must never write through it.
func (c Clip) Samples() []float64 {
	return c.samples
}

// Rate returns the sample rate in Hz.
func (c Clip) Rate() int {
	return c.rate
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.rate <= 0 {
		return 0
	}
	return float64(len(c.samples)) / float64(c.rate)
}

// Empty reports whether the clip carries no usable signal.
func (c Clip) Empty() bool {
	return len(c.samples) == 0 || c.rate <= 0
}

// Normalize scales samples in place so the peak magnitude is 1.0.
// All-zero input is left untouched.
func Normalize(samples []float64) {
	peak := 0.0
	for _, s := range samples {
		if s > peak {
			peak = s
		} else if -s > peak {
			peak = -s
		}
	}
	if peak == 0 {
		return
	}
	for i := range samples {
		samples[i] /= peak
	}
}
