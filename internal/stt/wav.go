package stt

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/oralquiz/grader/internal/audio"
)

// encodeWAV serializes a mono float32 sample as 16-bit PCM WAV, the format
// every Whisper-compatible endpoint accepts.
func encodeWAV(sample audio.Sample) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)

	dataSize := len(sample.Data) * 2
	byteRate := sample.Rate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.Grow(44 + dataSize)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sample.Rate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range sample.Data {
		v := s
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.Write(&buf, binary.LittleEndian, int16(v*math.MaxInt16))
	}

	return buf.Bytes()
}
