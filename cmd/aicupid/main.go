package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aicupid/backend/internal/checkpoint"
	"github.com/aicupid/backend/internal/config"
	"github.com/aicupid/backend/internal/dialogue"
	"github.com/aicupid/backend/internal/httpapi"
	"github.com/aicupid/backend/internal/icebreaker"
	"github.com/aicupid/backend/internal/llm"
	"github.com/aicupid/backend/internal/mc"
	"github.com/aicupid/backend/internal/observability"
	"github.com/aicupid/backend/internal/records"
	"github.com/aicupid/backend/internal/session"
	"github.com/aicupid/backend/internal/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()

	checkpoints, err := checkpoint.NewStore(checkpoint.Config{
		Backend:       cfg.CheckpointBackend,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		TTL:           cfg.CheckpointTTL,
		SQLitePath:    cfg.SQLitePath,
	})
	if err != nil {
		log.Fatalf("checkpoint store init failed: %v", err)
	}
	defer checkpoints.Close()

	recordStore, err := records.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("record store init failed: %v", err)
	}
	defer recordStore.Close()

	client, err := llm.NewClient(llm.Config{
		Mode: cfg.LLMMode,
		Gemini: llm.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.LLMTimeout,
		},
	})
	if err != nil {
		log.Fatalf("llm client init failed: %v", err)
	}
	if cfg.LLMMode == "auto" && strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		log.Printf("llm: no GEMINI_API_KEY, using mock completions")
	}

	bank := dialogue.DefaultItemBank()
	if cfg.ItemBankPath != "" {
		bank, err = dialogue.LoadItemBank(cfg.ItemBankPath)
		if err != nil {
			log.Fatalf("item bank load failed: %v", err)
		}
		log.Printf("item bank: %d items from %s", bank.Len(), cfg.ItemBankPath)
	}

	var grader dialogue.Grader = dialogue.StringGrader{}
	if cfg.LLMMode == "gemini" || (cfg.LLMMode == "auto" && strings.TrimSpace(cfg.GeminiAPIKey) != "") {
		grader = dialogue.NewLLMGrader(client, cfg.LLMTimeout)
	}

	executor := dialogue.NewExecutor(dialogue.ExecutorConfig{
		Bank:        bank,
		Client:      client,
		Grader:      grader,
		Checkpoints: checkpoints,
		MaxSteps:    cfg.TurnMaxSteps,
		ChatTimeout: cfg.LLMTimeout,
	})

	generator := icebreaker.NewGenerator(client, cfg.LLMTimeout)
	host := mc.New(client, generator, cfg.LLMTimeout)

	transcriber := newTranscriber(cfg)
	synthesizer := newSynthesizer(cfg)

	pipeline := voice.NewPipeline(transcriber, synthesizer, executor, recordStore)
	pipeline.SetObserver(metrics)

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(s *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
		if err := checkpoints.Delete(context.Background(), s.ID); err != nil {
			log.Printf("failed to drop checkpoint for expired session %s: %v", s.ID, err)
		}
		executor.ForgetSession(s.ID)
	})

	api := httpapi.New(cfg, sessions, executor, generator, host, pipeline, recordStore, checkpoints, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 30*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}

func newTranscriber(cfg config.Config) voice.Transcriber {
	mode := strings.ToLower(strings.TrimSpace(cfg.STTProvider))
	switch mode {
	case "mock":
		log.Printf("stt provider: mock")
		return &voice.MockTranscriber{}
	case "gemini", "auto", "":
		t, err := voice.NewGeminiTranscriber(voice.GeminiTranscriberConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			if mode == "gemini" {
				log.Fatalf("STT_PROVIDER=gemini but the transcriber is unavailable: %v", err)
			}
			log.Printf("stt provider: mock (gemini unavailable: %v)", err)
			return &voice.MockTranscriber{}
		}
		log.Printf("stt provider: gemini")
		return t
	default:
		log.Fatalf("invalid STT_PROVIDER: %q (expected auto|gemini|mock)", cfg.STTProvider)
		return nil
	}
}

func newSynthesizer(cfg config.Config) voice.Synthesizer {
	mode := strings.ToLower(strings.TrimSpace(cfg.TTSProvider))
	switch mode {
	case "mock":
		log.Printf("tts provider: mock")
		return &voice.MockSynthesizer{}
	case "openai", "auto", "":
		s, err := voice.NewOpenAISynthesizer(voice.OpenAISynthesizerConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.TTSModel,
			Voice:   cfg.TTSVoice,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			if mode == "openai" {
				log.Fatalf("TTS_PROVIDER=openai but the synthesizer is unavailable: %v", err)
			}
			log.Printf("tts provider: mock (openai unavailable: %v)", err)
			return &voice.MockSynthesizer{}
		}
		log.Printf("tts provider: openai")
		return s
	default:
		log.Fatalf("invalid TTS_PROVIDER: %q (expected auto|openai|mock)", cfg.TTSProvider)
		return nil
	}
}
