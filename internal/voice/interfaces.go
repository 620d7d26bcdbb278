// Package voice turns a spoken utterance into a spoken reply: transcribe,
// run the dialogue turn, synthesize. Providers sit behind narrow interfaces
// so the pipeline tests with local fakes.
package voice

import "context"

// Transcriber converts audio bytes into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// SpeechAudio is synthesized speech plus its container type.
type SpeechAudio struct {
	Data     []byte
	MimeType string
}

// Synthesizer converts text into speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (SpeechAudio, error)
}
