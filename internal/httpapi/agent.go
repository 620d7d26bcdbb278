package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aicupid/backend/internal/dialogue"
	"github.com/aicupid/backend/internal/session"
)

// quizTurnRequest drives the stateless quiz endpoint: the caller carries the
// state between calls. A nil state starts a fresh conversation.
type quizTurnRequest struct {
	Input string          `json:"input"`
	State *dialogue.State `json:"state,omitempty"`
}

type quizTurnResponse struct {
	Response string         `json:"response"`
	Decision string         `json:"decision"`
	State    dialogue.State `json:"state"`
}

type sessionTurnRequest struct {
	Input string `json:"input"`
}

type sessionTurnResponse struct {
	Response string `json:"response"`
	Decision string `json:"decision"`
	Score    int    `json:"score"`
	Finished bool   `json:"finished"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req session.CreateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = "anonymous"
	}

	id, err := s.executor.CreateSession(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session_create_failed", err.Error())
		return
	}

	sess := s.sessions.Register(id, req.UserID)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("created").Inc()

	respondJSON(w, http.StatusCreated, session.CreateResponse{
		SessionID:       sess.ID,
		UserID:          sess.UserID,
		Status:          sess.Status,
		StartedAt:       sess.StartedAt,
		LastActivityAt:  sess.LastActivityAt,
		InactivityTTLMS: s.cfg.SessionInactivityTimeout.Milliseconds(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	state, err := s.executor.SessionState(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session":  sess,
		"score":    state.Score,
		"cursor":   state.Cursor,
		"finished": state.Cursor >= s.executor.Bank().Len(),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	sess, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	// Drop the checkpoint row and the lock entry with the session, so a
	// turn on an ended session is rejected as unknown rather than replayed
	// against stale state.
	if s.checkpoints != nil {
		if err := s.checkpoints.Delete(r.Context(), id); err != nil {
			log.Printf("httpapi: failed to drop checkpoint for ended session %s: %v", id, err)
		}
	}
	s.executor.ForgetSession(id)

	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("ended").Inc()
	respondJSON(w, http.StatusOK, sess)
}

// handleQuizTurn is the stateless quiz API: state in, state out.
func (s *Server) handleQuizTurn(w http.ResponseWriter, r *http.Request) {
	var req quizTurnRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var prior dialogue.State
	if req.State != nil {
		prior = *req.State
	}

	started := time.Now()
	result, err := s.executor.ExecuteTurn(r.Context(), prior, req.Input)
	if err != nil {
		respondTurnError(w, err)
		return
	}
	s.metrics.Turns.WithLabelValues(result.Decision.String()).Inc()
	s.metrics.ObserveTurnLatency(time.Since(started))

	respondJSON(w, http.StatusOK, quizTurnResponse{
		Response: result.Reply,
		Decision: result.Decision.String(),
		State:    result.State,
	})
}

// handleSessionTurn is the durable quiz API: state lives in the checkpoint
// store under the session id.
func (s *Server) handleSessionTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req sessionTurnRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	started := time.Now()
	result, err := s.executor.ExecuteSessionTurn(r.Context(), id, req.Input)
	if err != nil {
		respondTurnError(w, err)
		return
	}
	s.metrics.Turns.WithLabelValues(result.Decision.String()).Inc()
	s.metrics.ObserveTurnLatency(time.Since(started))
	_ = s.sessions.RecordTurn(id)

	respondJSON(w, http.StatusOK, sessionTurnResponse{
		Response: result.Reply,
		Decision: result.Decision.String(),
		Score:    result.State.Score,
		Finished: result.State.Cursor >= s.executor.Bank().Len(),
	})
}
