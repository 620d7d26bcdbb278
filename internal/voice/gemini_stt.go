package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aicupid/backend/internal/llm"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

const transcribePrompt = "Transcribe this audio to text. Output only the transcribed text, " +
	"in the same language as the speech. Do not add any explanation."

// GeminiTranscriberConfig controls the Gemini STT adapter.
type GeminiTranscriberConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiTranscriber sends the audio inline to the generateContent endpoint
// with a transcription prompt.
type GeminiTranscriber struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiTranscriber(cfg GeminiTranscriberConfig) (*GeminiTranscriber, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, llm.ErrMissingAPIKey
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultGeminiBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiTranscriber{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type sttPart struct {
	Text       string         `json:"text,omitempty"`
	InlineData *sttInlineData `json:"inlineData,omitempty"`
}

type sttInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type sttRequest struct {
	Contents []struct {
		Parts []sttPart `json:"parts"`
	} `json:"contents"`
}

type sttResponse struct {
	Candidates []struct {
		Content struct {
			Parts []sttPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("voice: no audio data")
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		mimeType = "audio/wav"
	}

	var body sttRequest
	body.Contents = make([]struct {
		Parts []sttPart `json:"parts"`
	}, 1)
	body.Contents[0].Parts = []sttPart{
		{Text: transcribePrompt},
		{InlineData: &sttInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(audio),
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", t.baseURL, t.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", t.apiKey)

	res, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("gemini stt http status %d", res.StatusCode)
	}

	var parsed sttResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini stt error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("gemini stt returned no candidates")
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return strings.TrimSpace(text.String()), nil
}
