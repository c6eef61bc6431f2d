package audio

import "math"

// Synthetic signal builders shared by the test-clips CLI and the analyzer
// tests. All builders are deterministic.

// Sine generates a pure tone at freq Hz with the given peak amplitude.
func Sine(freq, amp, seconds float64, rate int) []float64 {
	n := int(seconds * float64(rate))
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(rate)
		out[i] = amp * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

// Vibrato generates a tone whose frequency swings around center by depth Hz
// at vibRate Hz. Phase is integrated so the sweep is continuous.
func Vibrato(center, depth, vibRate, amp, seconds float64, rate int) []float64 {
	n := int(seconds * float64(rate))
	out := make([]float64, n)
	phase := 0.0
	for i := range out {
		t := float64(i) / float64(rate)
		f := center + depth*math.Sin(2*math.Pi*vibRate*t)
		phase += 2 * math.Pi * f / float64(rate)
		out[i] = amp * math.Sin(phase)
	}
	return out
}

// Modulated generates a tone with slow amplitude modulation, which reads as
// more speech-like to the energy-based analyzers than a flat sine.
func Modulated(freq, amp, modRate, modDepth, seconds float64, rate int) []float64 {
	n := int(seconds * float64(rate))
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(rate)
		env := 1 + modDepth*math.Sin(2*math.Pi*modRate*t)
		out[i] = amp * env * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

// Silence generates a run of zero samples.
func Silence(seconds float64, rate int) []float64 {
	return make([]float64, int(seconds*float64(rate)))
}

// Concat joins segments into a single buffer.
func Concat(segments ...[]float64) []float64 {
	total := 0
	for _, s := range segments {
		total += len(s)
	}
	out := make([]float64, 0, total)
	for _, s := range segments {
		out = append(out, s...)
	}
	return out
}
