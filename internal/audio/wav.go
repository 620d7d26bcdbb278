// Package audio wraps the raw PCM the voice websocket streams into WAV,
// which is what the transcription model expects.
package audio

import (
	"bytes"
	"encoding/binary"
)

// DefaultSampleRate is the rate voice clients stream PCM16 mono at.
const DefaultSampleRate = 16000

// wavHeader is the 44-byte canonical PCM WAV header.
type wavHeader struct {
	RiffTag       [4]byte
	RiffSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

// WrapPCM16 wraps raw PCM16LE mono bytes in a WAV container.
func WrapPCM16(pcm []byte, sampleRate int) []byte {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	h := wavHeader{
		RiffTag:       [4]byte{'R', 'I', 'F', 'F'},
		RiffSize:      uint32(36 + len(pcm)),
		WaveTag:       [4]byte{'W', 'A', 'V', 'E'},
		FmtTag:        [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1, // PCM
		NumChannels:   numChannels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * numChannels * bitsPerSample / 8),
		BlockAlign:    numChannels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		DataTag:       [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(pcm)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	binary.Write(buf, binary.LittleEndian, h)
	buf.Write(pcm)
	return buf.Bytes()
}

// IsWAV reports whether data already carries a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}

// EnsureWAV passes WAV data through unchanged and wraps anything else as
// PCM16 mono at the given rate.
func EnsureWAV(data []byte, sampleRate int) []byte {
	if IsWAV(data) {
		return data
	}
	return WrapPCM16(data, sampleRate)
}
