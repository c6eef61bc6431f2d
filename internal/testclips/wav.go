package testclips

import (
	"bytes"
	"encoding/binary"
	"math"
)

// WAV encoding constants.
const (
	wavHeaderSize    = 36
	wavFmtChunkSize  = 16
	wavFormatPCM     = 1
	wavChannelsMono  = 1
	wavBitsPerSample = 16
	wavBytesPerSamp  = 2
)

// EncodeWAV encodes float samples in [-1, 1] as a mono PCM16 WAV file.
func EncodeWAV(samples []float64, sampleRate int) []byte {
	dataSize := len(samples) * wavBytesPerSamp
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+8+dataSize))

	byteRate := sampleRate * wavChannelsMono * wavBytesPerSamp
	blockAlign := wavChannelsMono * wavBytesPerSamp

	// Writes to a bytes.Buffer cannot fail.
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(wavHeaderSize+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(wavFmtChunkSize))
	_ = binary.Write(buf, binary.LittleEndian, uint16(wavFormatPCM))
	_ = binary.Write(buf, binary.LittleEndian, uint16(wavChannelsMono))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(wavBitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataSize))

	for _, s := range samples {
		v := math.Max(-1, math.Min(1, s))
		_ = binary.Write(buf, binary.LittleEndian, int16(v*math.MaxInt16))
	}

	return buf.Bytes()
}
