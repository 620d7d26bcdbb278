// Package protocol defines the voice websocket vocabulary. Clients stream
// PCM as binary frames (or base64 JSON chunks) and end an utterance with
// speech_end; the server answers with the transcript, the reply text, and
// the synthesized audio.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	// Client → server.
	TypeAudioChunk          MessageType = "audio_chunk"
	TypeSpeechEnd           MessageType = "speech_end"
	TypeConversationHistory MessageType = "conversation_history"

	// Server → client.
	TypeFinalTranscript MessageType = "final_transcript"
	TypeAIResponseText  MessageType = "ai_response_text"
	TypeAudio           MessageType = "audio"
	TypeError           MessageType = "error"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// AudioChunk carries base64 PCM16 for clients that cannot send binary
// frames.
type AudioChunk struct {
	Type        MessageType `json:"type"`
	PCM16Base64 string      `json:"pcm16_base64"`
	SampleRate  int         `json:"sample_rate,omitempty"`
}

// SpeechEnd marks the end of one utterance; the buffered audio becomes a
// voice turn.
type SpeechEnd struct {
	Type MessageType `json:"type"`
}

// ConversationHistory ships prior conversation bytes for the MC live flow,
// base64-encoded.
type ConversationHistory struct {
	Type MessageType `json:"type"`
	Data string      `json:"data"`
}

// FinalTranscript is the recognized text of the utterance just ended.
type FinalTranscript struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

// AIResponseText is the assistant reply before synthesis; it is always
// sent, so a synthesis failure still leaves the client with text.
type AIResponseText struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

// Audio is the synthesized reply.
type Audio struct {
	Type     MessageType `json:"type"`
	Data     string      `json:"data"`
	MimeType string      `json:"mime_type"`
}

type Error struct {
	Type   MessageType `json:"type"`
	Code   string      `json:"code"`
	Detail string      `json:"detail,omitempty"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeAudioChunk:
		var msg AudioChunk
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.PCM16Base64 == "" {
			return nil, errors.New("invalid audio_chunk")
		}
		return msg, nil
	case TypeSpeechEnd:
		return SpeechEnd{Type: TypeSpeechEnd}, nil
	case TypeConversationHistory:
		var msg ConversationHistory
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Data == "" {
			return nil, errors.New("invalid conversation_history")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
