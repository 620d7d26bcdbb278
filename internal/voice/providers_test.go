package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aicupid/backend/internal/llm"
)

func TestGeminiTranscriber(t *testing.T) {
	var got sttRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("api key header missing")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":" 안녕하세요 "}]}}]}`))
	}))
	defer server.Close()

	transcriber, err := NewGeminiTranscriber(GeminiTranscriberConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewGeminiTranscriber() error = %v", err)
	}

	text, err := transcriber.Transcribe(context.Background(), []byte{0xAA, 0xBB}, "")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "안녕하세요" {
		t.Fatalf("text = %q", text)
	}

	parts := got.Contents[0].Parts
	if len(parts) != 2 || parts[0].Text == "" {
		t.Fatalf("request parts = %+v", parts)
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MimeType != "audio/wav" {
		t.Fatalf("inline data = %+v", parts[1].InlineData)
	}
	if parts[1].InlineData.Data != base64.StdEncoding.EncodeToString([]byte{0xAA, 0xBB}) {
		t.Fatalf("audio payload not base64-encoded")
	}
}

func TestGeminiTranscriberRejectsEmptyAudio(t *testing.T) {
	transcriber, err := NewGeminiTranscriber(GeminiTranscriberConfig{APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := transcriber.Transcribe(context.Background(), nil, "audio/wav"); err == nil {
		t.Fatalf("empty audio should fail before any network call")
	}
}

func TestGeminiTranscriberMissingKey(t *testing.T) {
	if _, err := NewGeminiTranscriber(GeminiTranscriberConfig{}); !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestOpenAISynthesizer(t *testing.T) {
	wav := []byte("RIFFxxxxWAVEdata")
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("authorization header = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write(wav)
	}))
	defer server.Close()

	synth, err := NewOpenAISynthesizer(OpenAISynthesizerConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewOpenAISynthesizer() error = %v", err)
	}

	speech, err := synth.Synthesize(context.Background(), "정답입니다!")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(speech.Data) != string(wav) || speech.MimeType != "audio/wav" {
		t.Fatalf("speech = %+v", speech)
	}

	if got["model"] != "tts-1" || got["voice"] != "alloy" {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if got["input"] != "정답입니다!" || got["response_format"] != "wav" {
		t.Fatalf("request body = %+v", got)
	}
}

func TestOpenAISynthesizerErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	synth, _ := NewOpenAISynthesizer(OpenAISynthesizerConfig{APIKey: "k", BaseURL: server.URL})
	if _, err := synth.Synthesize(context.Background(), "안녕"); err == nil {
		t.Fatalf("HTTP 429 should fail synthesis")
	}
}
