package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiConfig controls the Gemini REST client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
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
	return &GeminiClient{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type geminiPart struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *geminiFnCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFnResponse `json:"functionResponse,omitempty"`
	InlineData       *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiFnCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type geminiFnResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFnDecl `json:"functionDeclarations"`
}

type geminiFnDecl struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Tools             []geminiTool    `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (Response, error) {
	body := geminiRequest{Contents: make([]geminiContent, 0, len(req.Messages))}

	if strings.TrimSpace(req.SystemInstruction) != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemInstruction}}}
	}
	for _, m := range req.Messages {
		body.Contents = append(body.Contents, toGeminiContent(m))
	}
	for _, t := range req.Tools {
		if len(body.Tools) == 0 {
			body.Tools = []geminiTool{{}}
		}
		body.Tools[0].FunctionDeclarations = append(body.Tools[0].FunctionDeclarations, geminiFnDecl{
			Name:        t.Name,
			Description: t.Description,
		})
	}

	raw, err := c.post(ctx, body)
	if err != nil {
		return Response{}, err
	}
	return parseGeminiResponse(raw)
}

func toGeminiContent(m Message) geminiContent {
	switch m.Role {
	case RoleAssistant:
		return geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}}
	case RoleTool:
		return geminiContent{
			Role: "user",
			Parts: []geminiPart{{
				FunctionResponse: &geminiFnResponse{
					Name:     m.ToolName,
					Response: map[string]any{"result": m.Content},
				},
			}},
		}
	default:
		return geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}}
	}
}

func (c *GeminiClient) post(ctx context.Context, body geminiRequest) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini http status %d: %s", res.StatusCode, truncate(string(raw), 512))
	}
	return raw, nil
}

func parseGeminiResponse(raw []byte) (Response, error) {
	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return Response{}, fmt.Errorf("gemini error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 {
		return Response{}, fmt.Errorf("gemini returned no candidates")
	}

	var out Response
	var text strings.Builder
	for i, part := range parsed.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:   fmt.Sprintf("call-%d", i),
				Name: part.FunctionCall.Name,
			})
			continue
		}
		text.WriteString(part.Text)
	}
	out.Text = strings.TrimSpace(text.String())
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
