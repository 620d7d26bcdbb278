package voice

import (
	"context"

	"github.com/aicupid/backend/internal/audio"
)

// MockTranscriber returns a fixed transcript, used when no STT provider is
// configured and in tests.
type MockTranscriber struct {
	Text string
	Err  error
	// Audio records the bytes of the last call.
	Audio []byte
}

func (m *MockTranscriber) Transcribe(_ context.Context, audioBytes []byte, _ string) (string, error) {
	m.Audio = append([]byte(nil), audioBytes...)
	if m.Err != nil {
		return "", m.Err
	}
	if m.Text != "" {
		return m.Text, nil
	}
	return "안녕하세요", nil
}

// MockSynthesizer emits a short silent WAV clip.
type MockSynthesizer struct {
	Err error
	// Texts records every synthesized string.
	Texts []string
}

func (m *MockSynthesizer) Synthesize(_ context.Context, text string) (SpeechAudio, error) {
	if m.Err != nil {
		return SpeechAudio{}, m.Err
	}
	m.Texts = append(m.Texts, text)
	silence := make([]byte, 320) // 10ms of PCM16 mono at 16kHz
	return SpeechAudio{
		Data:     audio.WrapPCM16(silence, audio.DefaultSampleRate),
		MimeType: "audio/wav",
	}, nil
}
