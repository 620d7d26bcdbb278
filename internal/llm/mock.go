package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockClient produces deterministic local replies when no model is
// configured. Scripted responses can be queued for tests.
type MockClient struct {
	scripted []Response
	// Err, when set, is returned by every Complete call.
	Err error
	// Calls records every request for assertions.
	Calls []Request
}

func NewMockClient(scripted ...Response) *MockClient {
	return &MockClient{scripted: scripted}
}

func (m *MockClient) Complete(ctx context.Context, req Request) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}

	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return Response{}, m.Err
	}
	if len(m.scripted) > 0 {
		next := m.scripted[0]
		m.scripted = m.scripted[1:]
		return next, nil
	}
	return Response{Text: mockReply(req)}, nil
}

func mockReply(req Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			text := strings.TrimSpace(req.Messages[i].Content)
			if text == "" {
				break
			}
			return fmt.Sprintf("잘 들었어요: %s", text)
		}
	}
	return "무엇을 도와드릴까요?"
}
