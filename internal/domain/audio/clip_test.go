package audio

import (
	"math"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestClip(t *testing.T) {
	convey.Convey("Given a clip over decoded samples", t, func() {
		samples := []float64{0.1, -0.5, 0.25, 0}
		clip := New(samples, 4)

		convey.Convey("Then accessors should expose the buffer and rate", func() {
			convey.So(clip.Samples(), convey.ShouldResemble, samples)
			convey.So(clip.Rate(), convey.ShouldEqual, 4)
		})

		convey.Convey("And the duration should follow from the sample count", func() {
			convey.So(clip.Duration(), convey.ShouldAlmostEqual, 1.0, 0.001)
		})

		convey.Convey("And the clip should not be empty", func() {
			convey.So(clip.Empty(), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given degenerate clips", t, func() {
		convey.Convey("When the clip has no samples", func() {
			clip := New(nil, 16000)
			convey.So(clip.Empty(), convey.ShouldBeTrue)
			convey.So(clip.Duration(), convey.ShouldEqual, 0)
		})

		convey.Convey("When the rate is non-positive", func() {
			clip := New([]float64{0.5}, 0)
			convey.So(clip.Empty(), convey.ShouldBeTrue)
			convey.So(clip.Duration(), convey.ShouldEqual, 0)
		})
	})
}

func TestNormalize(t *testing.T) {
	convey.Convey("Given samples below full scale", t, func() {
		samples := []float64{0.25, -0.5, 0.1}

		convey.Convey("When normalizing", func() {
			Normalize(samples)

			convey.Convey("Then the peak magnitude should become 1", func() {
				convey.So(samples[1], convey.ShouldAlmostEqual, -1.0, 1e-9)
				convey.So(samples[0], convey.ShouldAlmostEqual, 0.5, 1e-9)
				convey.So(samples[2], convey.ShouldAlmostEqual, 0.2, 1e-9)
			})
		})
	})

	convey.Convey("Given all-zero samples", t, func() {
		samples := []float64{0, 0, 0}

		convey.Convey("When normalizing", func() {
			Normalize(samples)

			convey.Convey("Then the buffer should be untouched", func() {
				convey.So(samples, convey.ShouldResemble, []float64{0, 0, 0})
			})
		})
	})
}

func TestSynthBuilders(t *testing.T) {
	convey.Convey("Given the synthetic signal builders", t, func() {
		convey.Convey("When generating a sine", func() {
			s := Sine(100, 0.5, 1.0, 1000)

			convey.Convey("Then the length and peak should match the request", func() {
				convey.So(len(s), convey.ShouldEqual, 1000)
				peak := 0.0
				for _, v := range s {
					peak = math.Max(peak, math.Abs(v))
				}
				convey.So(peak, convey.ShouldBeBetween, 0.45, 0.501)
			})
		})

		convey.Convey("When generating silence", func() {
			s := Silence(0.5, 1000)

			convey.Convey("Then every sample should be zero", func() {
				convey.So(len(s), convey.ShouldEqual, 500)
				for _, v := range s {
					convey.So(v, convey.ShouldEqual, 0)
				}
			})
		})

		convey.Convey("When concatenating segments", func() {
			joined := Concat([]float64{1, 2}, nil, []float64{3})

			convey.Convey("Then the segments should appear in order", func() {
				convey.So(joined, convey.ShouldResemble, []float64{1, 2, 3})
			})
		})

		convey.Convey("When generating vibrato", func() {
			s := Vibrato(150, 50, 1.0, 0.5, 1.0, 1000)

			convey.Convey("Then the buffer should be full length and bounded", func() {
				convey.So(len(s), convey.ShouldEqual, 1000)
				for _, v := range s {
					convey.So(math.Abs(v), convey.ShouldBeLessThanOrEqualTo, 0.5001)
				}
			})
		})

		convey.Convey("When generating a modulated tone", func() {
			s := Modulated(150, 0.5, 2.0, 0.5, 1.0, 1000)

			convey.Convey("Then the envelope should swell past the base amplitude", func() {
				peak := 0.0
				for _, v := range s {
					peak = math.Max(peak, math.Abs(v))
				}
				convey.So(peak, convey.ShouldBeGreaterThan, 0.5)
			})
		})
	})
}
