package checkpoint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aicupid/backend/internal/dialogue"
)

// Config selects and parameterizes a checkpoint backend.
type Config struct {
	// Backend is one of "auto", "memory", "redis", "sqlite". Auto picks
	// redis when an address is set, sqlite when a path is set, otherwise
	// memory.
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	SQLitePath    string
}

// Store is the persistence contract the dialogue executor runs against,
// plus the lifecycle methods the server owns: dropping expired sessions and
// closing the backend on shutdown.
type Store interface {
	dialogue.CheckpointStore
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// NewStore creates the configured checkpoint backend.
func NewStore(cfg Config) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" || backend == "auto" {
		switch {
		case cfg.RedisAddr != "":
			backend = "redis"
		case cfg.SQLitePath != "":
			backend = "sqlite"
		default:
			backend = "memory"
		}
	}

	switch backend {
	case "memory":
		return NewInMemoryStore(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("checkpoint backend redis requires an address")
		}
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, WithTTL(cfg.TTL)), nil
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("checkpoint backend sqlite requires a path")
		}
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", cfg.Backend)
	}
}
