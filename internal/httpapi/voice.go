package httpapi

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/aicupid/backend/internal/audio"
	"github.com/aicupid/backend/internal/protocol"
	"github.com/aicupid/backend/internal/voice"
)

type transcribeRequest struct {
	AudioBase64 string `json:"audio_base64"`
	MimeType    string `json:"mime_type"`
	SampleRate  int    `json:"sample_rate"`
}

type voiceTurnResponse struct {
	Transcript string          `json:"transcript"`
	Response   string          `json:"response"`
	Decision   string          `json:"decision"`
	Degraded   bool            `json:"degraded"`
	Audio      *voiceAudioBody `json:"audio,omitempty"`
}

type voiceAudioBody struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

func decodeAudioRequest(r *http.Request) ([]byte, string, error) {
	var req transcribeRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, "", err
	}
	raw, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		return nil, "", err
	}

	mimeType := strings.TrimSpace(req.MimeType)
	if mimeType == "" || mimeType == "audio/pcm" {
		raw = audio.EnsureWAV(raw, req.SampleRate)
		mimeType = "audio/wav"
	}
	return raw, mimeType, nil
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	raw, mimeType, err := decodeAudioRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(raw) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "audio payload is required")
		return
	}

	text, err := s.pipeline.Transcribe(r.Context(), raw, mimeType)
	if err != nil {
		s.metrics.LLMRequests.WithLabelValues("transcribe", "failure").Inc()
		respondError(w, http.StatusBadGateway, "transcription_failed", err.Error())
		return
	}
	s.metrics.LLMRequests.WithLabelValues("transcribe", "success").Inc()
	respondJSON(w, http.StatusOK, map[string]any{"text": text})
}

func (s *Server) handleVoiceTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	raw, mimeType, err := decodeAudioRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(raw) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "audio payload is required")
		return
	}

	started := time.Now()
	result, err := s.pipeline.Turn(r.Context(), id, raw, mimeType)
	if err != nil {
		respondTurnError(w, err)
		return
	}
	s.metrics.Turns.WithLabelValues(result.Decision.String()).Inc()
	s.metrics.ObserveTurnLatency(time.Since(started))
	_ = s.sessions.RecordTurn(id)

	respondJSON(w, http.StatusOK, voiceTurnBody(result))
}

func voiceTurnBody(result voice.TurnResult) voiceTurnResponse {
	resp := voiceTurnResponse{
		Transcript: result.Transcript,
		Response:   result.Reply,
		Decision:   result.Decision.String(),
		Degraded:   result.Degraded,
	}
	if result.Audio != nil {
		resp.Audio = &voiceAudioBody{
			Data:     base64.StdEncoding.EncodeToString(result.Audio.Data),
			MimeType: result.Audio.MimeType,
		}
	}
	return resp
}

// handleVoiceWS is the streaming voice loop: the client sends PCM16 as
// binary frames (or base64 audio_chunk messages) and marks the utterance end
// with speech_end; each utterance runs one full voice turn. Turn processing
// is synchronous, so one connection handles one utterance at a time, which
// matches the per-session serialization of the dialogue executor.
func (s *Server) handleVoiceWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}
	if _, err := s.sessions.Get(sessionID); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()
	defer s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()

	send := func(msg any) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			return false
		}
		if t, ok := messageTypeOf(msg); ok {
			s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
		}
		return true
	}
	sendError := func(code, detail string) bool {
		return send(protocol.Error{Type: protocol.TypeError, Code: code, Detail: detail})
	}

	conn.SetReadLimit(8 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	var pcm bytes.Buffer
	sampleRate := audio.DefaultSampleRate

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		_ = s.sessions.Touch(sessionID)

		if msgType == websocket.BinaryMessage {
			pcm.Write(data)
			continue
		}
		if msgType != websocket.TextMessage {
			continue
		}

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			if !sendError("invalid_client_message", err.Error()) {
				return
			}
			continue
		}
		if t, ok := messageTypeOf(parsed); ok {
			s.metrics.WSMessages.WithLabelValues("inbound", string(t)).Inc()
		}

		switch msg := parsed.(type) {
		case protocol.AudioChunk:
			chunk, err := base64.StdEncoding.DecodeString(msg.PCM16Base64)
			if err != nil {
				if !sendError("invalid_audio_chunk", err.Error()) {
					return
				}
				continue
			}
			if msg.SampleRate > 0 {
				sampleRate = msg.SampleRate
			}
			pcm.Write(chunk)

		case protocol.SpeechEnd:
			if pcm.Len() == 0 {
				if !sendError("empty_utterance", "no audio buffered before speech_end") {
					return
				}
				continue
			}
			wav := audio.EnsureWAV(pcm.Bytes(), sampleRate)
			pcm.Reset()

			if !s.runVoiceTurn(r, send, sendError, sessionID, wav) {
				return
			}

		case protocol.ConversationHistory:
			if !s.runMCTurn(r, send, sendError, msg) {
				return
			}
		}
	}
}

// runVoiceTurn executes one buffered utterance and streams the three result
// frames. Returns false when the connection is gone.
func (s *Server) runVoiceTurn(r *http.Request, send func(any) bool, sendError func(string, string) bool, sessionID string, wav []byte) bool {
	started := time.Now()
	result, err := s.pipeline.Turn(r.Context(), sessionID, wav, "audio/wav")
	if err != nil {
		return sendError("turn_failed", err.Error())
	}
	s.metrics.Turns.WithLabelValues(result.Decision.String()).Inc()
	s.metrics.ObserveTurnLatency(time.Since(started))
	_ = s.sessions.RecordTurn(sessionID)

	if !send(protocol.FinalTranscript{Type: protocol.TypeFinalTranscript, Text: result.Transcript}) {
		return false
	}
	if !send(protocol.AIResponseText{Type: protocol.TypeAIResponseText, Text: result.Reply}) {
		return false
	}
	if result.Audio != nil {
		return send(protocol.Audio{
			Type:     protocol.TypeAudio,
			Data:     base64.StdEncoding.EncodeToString(result.Audio.Data),
			MimeType: result.Audio.MimeType,
		})
	}
	return true
}

// runMCTurn answers a conversation_history frame with the MC's next line.
func (s *Server) runMCTurn(r *http.Request, send func(any) bool, sendError func(string, string) bool, msg protocol.ConversationHistory) bool {
	raw, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		return sendError("invalid_conversation_history", err.Error())
	}

	reply, err := s.mc.Reply(r.Context(), raw)
	if err != nil {
		s.metrics.LLMRequests.WithLabelValues("mc_reply", "failure").Inc()
		return sendError("mc_failed", err.Error())
	}
	s.metrics.LLMRequests.WithLabelValues("mc_reply", "success").Inc()

	return send(protocol.AIResponseText{Type: protocol.TypeAIResponseText, Text: reply.Text})
}
