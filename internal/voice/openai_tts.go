package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aicupid/backend/internal/llm"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// OpenAISynthesizerConfig controls the OpenAI speech adapter.
type OpenAISynthesizerConfig struct {
	APIKey  string
	Model   string
	Voice   string
	BaseURL string
	Timeout time.Duration
}

// OpenAISynthesizer calls the /v1/audio/speech endpoint and returns WAV
// audio, which is what voice clients play back.
type OpenAISynthesizer struct {
	apiKey  string
	model   string
	voice   string
	baseURL string
	client  *http.Client
}

func NewOpenAISynthesizer(cfg OpenAISynthesizerConfig) (*OpenAISynthesizer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, llm.ErrMissingAPIKey
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "tts-1"
	}
	voice := strings.TrimSpace(cfg.Voice)
	if voice == "" {
		voice = "alloy"
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAISynthesizer{
		apiKey:  cfg.APIKey,
		model:   model,
		voice:   voice,
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (SpeechAudio, error) {
	if strings.TrimSpace(text) == "" {
		return SpeechAudio{}, fmt.Errorf("voice: no text to synthesize")
	}

	payload, err := json.Marshal(map[string]string{
		"model":           s.model,
		"voice":           s.voice,
		"input":           text,
		"response_format": "wav",
	})
	if err != nil {
		return SpeechAudio{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return SpeechAudio{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return SpeechAudio{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 32<<20))
	if err != nil {
		return SpeechAudio{}, fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return SpeechAudio{}, fmt.Errorf("openai tts http status %d", res.StatusCode)
	}

	return SpeechAudio{Data: raw, MimeType: "audio/wav"}, nil
}
