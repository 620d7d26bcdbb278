package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/aicupid/backend/internal/checkpoint"
	"github.com/aicupid/backend/internal/config"
	"github.com/aicupid/backend/internal/dialogue"
	"github.com/aicupid/backend/internal/icebreaker"
	"github.com/aicupid/backend/internal/mc"
	"github.com/aicupid/backend/internal/observability"
	"github.com/aicupid/backend/internal/protocol"
	"github.com/aicupid/backend/internal/records"
	"github.com/aicupid/backend/internal/session"
	"github.com/aicupid/backend/internal/voice"
)

type Server struct {
	cfg         config.Config
	sessions    *session.Manager
	executor    *dialogue.Executor
	generator   *icebreaker.Generator
	mc          *mc.MC
	pipeline    *voice.Pipeline
	records     records.Store
	checkpoints checkpoint.Store
	metrics     *observability.Metrics
	upgrader    websocket.Upgrader
}

func New(cfg config.Config, sessions *session.Manager, executor *dialogue.Executor, generator *icebreaker.Generator, host *mc.MC, pipeline *voice.Pipeline, store records.Store, checkpoints checkpoint.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:         cfg,
		sessions:    sessions,
		executor:    executor,
		generator:   generator,
		mc:          host,
		pipeline:    pipeline,
		records:     store,
		checkpoints: checkpoints,
		metrics:     metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other sites cannot drive a user's mic
				// session if the backend is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Post("/v1/agent/sessions", s.handleCreateSession)
	r.Get("/v1/agent/sessions/{id}", s.handleGetSession)
	r.Post("/v1/agent/sessions/{id}/end", s.handleEndSession)
	r.Post("/v1/agent/sessions/{id}/turn", s.handleSessionTurn)
	r.Post("/v1/agent/quiz", s.handleQuizTurn)

	r.Post("/v1/icebreakers/balance-game", s.handleBalanceGame)
	r.Post("/v1/icebreakers/four-choice", s.handleFourChoice)
	r.Post("/v1/icebreakers/psych-questions", s.handlePsychQuestions)
	r.Post("/v1/icebreakers/psych-result", s.handlePsychResult)
	r.Get("/v1/agent/sessions/{id}/balance-game", s.handleListBalanceGame)
	r.Get("/v1/agent/sessions/{id}/four-choice", s.handleListFourChoice)

	r.Post("/v1/mc/reply", s.handleMCReply)

	r.Post("/v1/voice/transcriptions", s.handleTranscribe)
	r.Post("/v1/voice/sessions/{id}/turn", s.handleVoiceTurn)
	r.Get("/v1/voice/ws", s.handleVoiceWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"active_sessions": s.sessions.ActiveCount(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondTurnError maps dialogue failures onto the API error contract: an
// unknown session is the client's mistake, an empty utterance is a bad
// request, anything else is on us.
func respondTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dialogue.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, dialogue.ErrEmptyUtterance):
		respondError(w, http.StatusBadRequest, "empty_utterance", err.Error())
	case errors.Is(err, dialogue.ErrInvalidState):
		respondError(w, http.StatusBadRequest, "invalid_state", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "turn_failed", err.Error())
	}
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.AudioChunk:
		return m.Type, true
	case protocol.SpeechEnd:
		return m.Type, true
	case protocol.ConversationHistory:
		return m.Type, true
	case protocol.FinalTranscript:
		return m.Type, true
	case protocol.AIResponseText:
		return m.Type, true
	case protocol.Audio:
		return m.Type, true
	case protocol.Error:
		return m.Type, true
	default:
		return "", false
	}
}
