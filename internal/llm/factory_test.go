package llm

import (
	"context"
	"errors"
	"testing"
)

func TestNewClientAutoWithoutKeyUsesMock(t *testing.T) {
	c, err := NewClient(Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	res, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "안녕"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if res.Text == "" {
		t.Fatalf("mock reply should not be empty")
	}
}

func TestNewClientGeminiDefersMissingKey(t *testing.T) {
	// Construction must succeed; the missing key is reported at first use.
	c, err := NewClient(Config{Mode: "gemini"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("first Complete() error = %v, want ErrMissingAPIKey", err)
	}
	// Error is stable on subsequent calls, init runs once.
	_, err = c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("second Complete() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestNewClientRejectsUnknownMode(t *testing.T) {
	if _, err := NewClient(Config{Mode: "palm"}); err == nil {
		t.Fatalf("NewClient() should reject unknown mode")
	}
}

func TestMockClientScriptedResponses(t *testing.T) {
	c := NewMockClient(Response{Text: "first"}, Response{Text: "second"})
	ctx := context.Background()

	r1, _ := c.Complete(ctx, Request{})
	r2, _ := c.Complete(ctx, Request{})
	if r1.Text != "first" || r2.Text != "second" {
		t.Fatalf("scripted replies = %q, %q", r1.Text, r2.Text)
	}
	if len(c.Calls) != 2 {
		t.Fatalf("Calls = %d, want 2", len(c.Calls))
	}
}
