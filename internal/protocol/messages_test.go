package protocol

import (
	"errors"
	"testing"
)

func TestParseClientMessageAudioChunk(t *testing.T) {
	raw := []byte(`{"type":"audio_chunk","pcm16_base64":"AQID","sample_rate":16000}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	audio, ok := msg.(AudioChunk)
	if !ok {
		t.Fatalf("message type = %T, want AudioChunk", msg)
	}
	if audio.PCM16Base64 != "AQID" || audio.SampleRate != 16000 {
		t.Fatalf("unexpected audio chunk: %+v", audio)
	}
}

func TestParseClientMessageSpeechEnd(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"speech_end"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if _, ok := msg.(SpeechEnd); !ok {
		t.Fatalf("message type = %T, want SpeechEnd", msg)
	}
}

func TestParseClientMessageConversationHistory(t *testing.T) {
	raw := []byte(`{"type":"conversation_history","data":"W3sicm9sZSI6InVzZXIifV0="}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	history, ok := msg.(ConversationHistory)
	if !ok {
		t.Fatalf("message type = %T, want ConversationHistory", msg)
	}
	if history.Data == "" {
		t.Fatalf("history payload lost: %+v", history)
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageRejectsInvalidChunks(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":"audio_chunk","pcm16_base64":""}`)); err == nil {
		t.Fatalf("empty audio chunk should fail validation")
	}
	if _, err := ParseClientMessage([]byte(`{"type":"conversation_history","data":""}`)); err == nil {
		t.Fatalf("empty conversation history should fail validation")
	}
	if _, err := ParseClientMessage([]byte(`not json`)); err == nil {
		t.Fatalf("non-JSON input should fail")
	}
}
