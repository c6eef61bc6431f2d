// Package decode turns uploaded WAV payloads into normalized mono clips
// ready for analysis.
package decode

import (
	"fmt"
	"io"

	"github.com/gopxl/beep/v2/wav"

	"github.com/okian/cadence/internal/domain/audio"
)

// streamChunk is the number of stereo frames pulled per Stream call.
const streamChunk = 512

// WAV decodes a RIFF/WAVE payload into a peak-normalized mono clip.
// Multi-channel audio is downmixed by averaging channels.
func WAV(r io.Reader) (audio.Clip, error) {
	stream, format, err := wav.Decode(r)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	defer stream.Close()

	samples := make([]float64, 0, stream.Len())
	buf := make([][2]float64, streamChunk)
	for {
		n, ok := stream.Stream(buf)
		for i := 0; i < n; i++ {
			samples = append(samples, (buf[i][0]+buf[i][1])/2)
		}
		if !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return audio.Clip{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if len(samples) == 0 {
		return audio.Clip{}, ErrEmptyAudio
	}

	audio.Normalize(samples)
	return audio.New(samples, int(format.SampleRate)), nil
}
