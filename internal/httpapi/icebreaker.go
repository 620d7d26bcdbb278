package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aicupid/backend/internal/icebreaker"
	"github.com/aicupid/backend/internal/records"
)

type balanceGameRequest struct {
	SessionID           string `json:"session_id"`
	ConversationContext string `json:"conversation_context"`
}

type fourChoiceRequest struct {
	SessionID           string `json:"session_id"`
	ConversationContext string `json:"conversation_context"`
	AboutUserName       string `json:"about_user_name"`
}

type psychQuestionsRequest struct {
	History string `json:"history"`
}

type psychResultRequest struct {
	Questions []string `json:"questions"`
	Answers   string   `json:"answers"`
}

// respondGeneratorError distinguishes the model emitting an unusable layout
// (a gateway-side failure, surfaced as 502) from everything else.
func respondGeneratorError(w http.ResponseWriter, err error) {
	if errors.Is(err, icebreaker.ErrParse) {
		respondError(w, http.StatusBadGateway, "generation_failed", err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "generation_error", err.Error())
}

func (s *Server) handleBalanceGame(w http.ResponseWriter, r *http.Request) {
	var req balanceGameRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	questions, err := s.generator.BalanceGame(r.Context(), req.ConversationContext)
	if err != nil {
		s.metrics.GeneratorParses.WithLabelValues("balance_game", "failure").Inc()
		respondGeneratorError(w, err)
		return
	}
	s.metrics.GeneratorParses.WithLabelValues("balance_game", "success").Inc()

	stored := make([]records.BalanceGameQuestion, len(questions))
	for i, q := range questions {
		stored[i] = records.BalanceGameQuestion{
			SessionID:    req.SessionID,
			QuestionText: q.Question,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
		}
	}
	if s.records != nil && req.SessionID != "" {
		if err := s.records.SaveBalanceGameQuestions(r.Context(), stored); err != nil {
			log.Printf("httpapi: failed to store balance-game questions for session %s: %v", req.SessionID, err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (s *Server) handleFourChoice(w http.ResponseWriter, r *http.Request) {
	var req fourChoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	question, err := s.generator.FourChoice(r.Context(), req.ConversationContext, req.AboutUserName)
	if err != nil {
		s.metrics.GeneratorParses.WithLabelValues("four_choice", "failure").Inc()
		respondGeneratorError(w, err)
		return
	}
	s.metrics.GeneratorParses.WithLabelValues("four_choice", "success").Inc()

	if s.records != nil && req.SessionID != "" {
		err := s.records.SaveFourChoiceQuestion(r.Context(), records.FourChoiceQuestion{
			SessionID:     req.SessionID,
			QuestionText:  question.Question,
			CorrectAnswer: question.Correct,
			WrongAnswer1:  question.Wrong1,
			WrongAnswer2:  question.Wrong2,
			WrongAnswer3:  question.Wrong3,
			AboutUserName: req.AboutUserName,
		})
		if err != nil {
			log.Printf("httpapi: failed to store four-choice question for session %s: %v", req.SessionID, err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{"question": question})
}

func (s *Server) handlePsychQuestions(w http.ResponseWriter, r *http.Request) {
	var req psychQuestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	questions, err := s.generator.PsychQuestions(r.Context(), req.History)
	if err != nil {
		s.metrics.GeneratorParses.WithLabelValues("psych_questions", "failure").Inc()
		respondGeneratorError(w, err)
		return
	}
	s.metrics.GeneratorParses.WithLabelValues("psych_questions", "success").Inc()

	respondJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (s *Server) handlePsychResult(w http.ResponseWriter, r *http.Request) {
	var req psychResultRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.generator.PsychResult(r.Context(), req.Questions, req.Answers)
	if err != nil {
		s.metrics.GeneratorParses.WithLabelValues("psych_result", "failure").Inc()
		respondGeneratorError(w, err)
		return
	}
	s.metrics.GeneratorParses.WithLabelValues("psych_result", "success").Inc()

	respondJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (s *Server) handleListBalanceGame(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "record store not configured")
		return
	}
	questions, err := s.records.BalanceGameQuestions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (s *Server) handleListFourChoice(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "record store not configured")
		return
	}
	questions, err := s.records.FourChoiceQuestions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"questions": questions})
}
