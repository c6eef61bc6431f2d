package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

// buildWAV encodes PCM16 frames as a minimal RIFF/WAVE payload. Each frame
// holds one sample per channel.
func buildWAV(frames [][]int16, channels, sampleRate int) []byte {
	dataSize := len(frames) * channels * 2
	buf := &bytes.Buffer{}

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels*2))
	_ = binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	for _, frame := range frames {
		for _, s := range frame {
			_ = binary.Write(buf, binary.LittleEndian, s)
		}
	}
	return buf.Bytes()
}

// sineFrames produces n mono PCM16 samples of a sine at the given frequency.
func sineFrames(freq float64, n, sampleRate int) [][]int16 {
	frames := make([][]int16, n)
	for i := range frames {
		t := float64(i) / float64(sampleRate)
		frames[i] = []int16{int16(0.5 * math.MaxInt16 * math.Sin(2*math.Pi*freq*t))}
	}
	return frames
}

func TestWAVDecodeMono(t *testing.T) {
	convey.Convey("Given a mono PCM16 WAV payload", t, func() {
		payload := buildWAV(sineFrames(200, 8000, 16000), 1, 16000)

		convey.Convey("When decoding", func() {
			clip, err := WAV(bytes.NewReader(payload))

			convey.Convey("Then the clip should carry the samples and rate", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(clip.Rate(), convey.ShouldEqual, 16000)
				convey.So(len(clip.Samples()), convey.ShouldEqual, 8000)
				convey.So(clip.Duration(), convey.ShouldAlmostEqual, 0.5, 0.001)
			})

			convey.Convey("And the samples should be peak-normalized", func() {
				peak := 0.0
				for _, s := range clip.Samples() {
					peak = math.Max(peak, math.Abs(s))
				}
				convey.So(peak, convey.ShouldAlmostEqual, 1.0, 0.001)
			})
		})
	})
}

func TestWAVDecodeStereoDownmix(t *testing.T) {
	convey.Convey("Given a stereo WAV with opposite-phase channels", t, func() {
		// Left and right cancel exactly, so the downmix is digital silence
		// except for one frame where both channels agree.
		frames := make([][]int16, 1000)
		for i := range frames {
			frames[i] = []int16{8000, -8000}
		}
		frames[500] = []int16{8000, 8000}
		payload := buildWAV(frames, 2, 16000)

		convey.Convey("When decoding", func() {
			clip, err := WAV(bytes.NewReader(payload))

			convey.Convey("Then channels should be averaged into mono", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(clip.Samples()), convey.ShouldEqual, 1000)

				// After normalization the lone non-cancelled frame is the peak.
				convey.So(clip.Samples()[500], convey.ShouldAlmostEqual, 1.0, 0.001)
				convey.So(clip.Samples()[0], convey.ShouldAlmostEqual, 0.0, 0.001)
			})
		})
	})
}

func TestWAVDecodeGarbage(t *testing.T) {
	convey.Convey("Given a payload that is not a WAV", t, func() {
		payload := []byte("definitely not RIFF data, just some text bytes")

		convey.Convey("When decoding", func() {
			_, err := WAV(bytes.NewReader(payload))

			convey.Convey("Then the invalid-WAV error should be returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, ErrInvalidWAV), convey.ShouldBeTrue)
			})
		})
	})
}

func TestWAVDecodeEmptyPayload(t *testing.T) {
	convey.Convey("Given an empty payload", t, func() {
		convey.Convey("When decoding", func() {
			_, err := WAV(bytes.NewReader(nil))

			convey.Convey("Then decoding should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
