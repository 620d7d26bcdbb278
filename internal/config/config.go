package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the AiCupid backend.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	// LLMMode selects the completion backend: "auto", "gemini" or "mock".
	LLMMode       string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	LLMTimeout    time.Duration

	ItemBankPath string
	TurnMaxSteps int

	CheckpointBackend string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	CheckpointTTL     time.Duration
	SQLitePath        string

	DatabaseURL string

	STTProvider  string
	TTSProvider  string
	OpenAIAPIKey string
	TTSVoice     string
	TTSModel     string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "aicupid"),
		AllowAnyOrigin:   false,
		LLMMode:          envOrDefault("LLM_MODE", "auto"),
		GeminiAPIKey:     stringsTrimSpace("GEMINI_API_KEY"),
		GeminiModel:      envOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:    stringsTrimSpace("GEMINI_BASE_URL"),
		ItemBankPath:     stringsTrimSpace("QUIZ_ITEM_BANK_PATH"),
		// "auto" prefers redis when an address is set, then sqlite, then memory.
		CheckpointBackend: envOrDefault("CHECKPOINT_BACKEND", "auto"),
		RedisAddr:         stringsTrimSpace("REDIS_ADDR"),
		RedisPassword:     stringsTrimSpace("REDIS_PASSWORD"),
		SQLitePath:        stringsTrimSpace("CHECKPOINT_SQLITE_PATH"),
		DatabaseURL:       stringsTrimSpace("DATABASE_URL"),
		STTProvider:       envOrDefault("STT_PROVIDER", "auto"),
		TTSProvider:       envOrDefault("TTS_PROVIDER", "auto"),
		OpenAIAPIKey:      stringsTrimSpace("OPENAI_API_KEY"),
		TTSVoice:          envOrDefault("TTS_VOICE", "alloy"),
		TTSModel:          envOrDefault("TTS_MODEL", "tts-1"),

		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 30 * time.Minute,
		LLMTimeout:               30 * time.Second,
		CheckpointTTL:            24 * time.Hour,
		TurnMaxSteps:             8,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.LLMTimeout, err = durationFromEnv("LLM_TIMEOUT", cfg.LLMTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CheckpointTTL, err = durationFromEnv("CHECKPOINT_TTL", cfg.CheckpointTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.RedisDB, err = intFromEnv("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return Config{}, err
	}
	cfg.TurnMaxSteps, err = intFromEnv("TURN_MAX_STEPS", cfg.TurnMaxSteps)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.LLMTimeout <= 0 {
		return Config{}, fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if cfg.TurnMaxSteps <= 0 {
		return Config{}, fmt.Errorf("TURN_MAX_STEPS must be positive")
	}
	if cfg.RedisDB < 0 {
		return Config{}, fmt.Errorf("REDIS_DB must be >= 0")
	}
	switch cfg.LLMMode {
	case "auto", "gemini", "mock":
	default:
		return Config{}, fmt.Errorf("LLM_MODE must be auto, gemini or mock")
	}
	switch cfg.CheckpointBackend {
	case "auto", "memory", "redis", "sqlite":
	default:
		return Config{}, fmt.Errorf("CHECKPOINT_BACKEND must be auto, memory, redis or sqlite")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
