package httpapi

import (
	"io"
	"net/http"
)

// handleMCReply accepts the raw conversation payload as the request body.
// Any of the accepted history shapes works; unparseable bytes fall back to a
// single user entry, matching how the MC treats plain text.
func (s *Server) handleMCReply(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(raw) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "conversation body is required")
		return
	}

	reply, err := s.mc.Reply(r.Context(), raw)
	if err != nil {
		s.metrics.LLMRequests.WithLabelValues("mc_reply", "failure").Inc()
		respondError(w, http.StatusBadGateway, "mc_failed", err.Error())
		return
	}
	s.metrics.LLMRequests.WithLabelValues("mc_reply", "success").Inc()

	resp := map[string]any{"text": reply.Text}
	if reply.BalanceGame != nil {
		resp["balance_game"] = reply.BalanceGame
	}
	respondJSON(w, http.StatusOK, resp)
}
