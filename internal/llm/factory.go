package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Config controls client construction.
type Config struct {
	Mode   string // auto | gemini | mock
	Gemini GeminiConfig
}

// NewClient builds a completion client for the configured mode.
//
// In auto and gemini modes the underlying client is constructed lazily on
// the first call that needs the model, so a process without credentials can
// still serve everything that does not require one. The missing-key failure
// is reported at the point of use, once.
func NewClient(cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "mock":
		return NewMockClient(), nil
	case "gemini":
		return newLazyClient(func() (Client, error) {
			return NewGeminiClient(cfg.Gemini)
		}), nil
	case "auto":
		if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
			return NewMockClient(), nil
		}
		return newLazyClient(func() (Client, error) {
			return NewGeminiClient(cfg.Gemini)
		}), nil
	default:
		return nil, fmt.Errorf("unsupported llm mode %q", cfg.Mode)
	}
}

// lazyClient defers construction to the first completion call, guarded by a
// one-time init so concurrent first calls build exactly one client.
type lazyClient struct {
	build func() (Client, error)
	once  sync.Once
	inner Client
	err   error
}

func newLazyClient(build func() (Client, error)) *lazyClient {
	return &lazyClient{build: build}
}

func (l *lazyClient) Complete(ctx context.Context, req Request) (Response, error) {
	l.once.Do(func() {
		l.inner, l.err = l.build()
	})
	if l.err != nil {
		return Response{}, l.err
	}
	return l.inner.Complete(ctx, req)
}
