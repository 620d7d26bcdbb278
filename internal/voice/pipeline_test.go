package voice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aicupid/backend/internal/dialogue"
	"github.com/aicupid/backend/internal/llm"
	"github.com/aicupid/backend/internal/records"
)

type fakeCheckpoints struct {
	mu   sync.Mutex
	rows map[string]dialogue.State
}

func newFakeCheckpoints() *fakeCheckpoints {
	return &fakeCheckpoints{rows: map[string]dialogue.State{}}
}

func (f *fakeCheckpoints) Load(_ context.Context, id string) (dialogue.State, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	return s.Clone(), ok, nil
}

func (f *fakeCheckpoints) Save(_ context.Context, id string, s dialogue.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id] = s.Clone()
	return nil
}

func newTestPipeline(t *testing.T, transcriber Transcriber, synthesizer Synthesizer, store records.Store) (*Pipeline, string) {
	t.Helper()
	executor := dialogue.NewExecutor(dialogue.ExecutorConfig{
		Client:      llm.NewMockClient(),
		Checkpoints: newFakeCheckpoints(),
	})
	sessionID, err := executor.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return NewPipeline(transcriber, synthesizer, executor, store), sessionID
}

func TestTurnTranscribesRepliesAndSpeaks(t *testing.T) {
	stt := &MockTranscriber{Text: "퀴즈 시작"}
	tts := &MockSynthesizer{}
	store := records.NewInMemoryStore()
	p, sessionID := newTestPipeline(t, stt, tts, store)

	result, err := p.Turn(context.Background(), sessionID, []byte{1, 2, 3}, "audio/wav")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if result.Transcript != "퀴즈 시작" {
		t.Fatalf("transcript = %q", result.Transcript)
	}
	if !strings.HasPrefix(result.Reply, "퀴즈 질문입니다:") {
		t.Fatalf("reply = %q", result.Reply)
	}
	if result.Audio == nil || result.Audio.MimeType != "audio/wav" || len(result.Audio.Data) == 0 {
		t.Fatalf("audio missing: %+v", result.Audio)
	}
	if result.Degraded {
		t.Fatalf("successful synthesis must not be degraded")
	}
	if len(tts.Texts) != 1 || tts.Texts[0] != result.Reply {
		t.Fatalf("synthesized text = %v", tts.Texts)
	}

	turns, err := store.ConversationTurns(context.Background(), sessionID, 10)
	if err != nil {
		t.Fatalf("ConversationTurns() error = %v", err)
	}
	if len(turns) != 1 || turns[0].UserText != "퀴즈 시작" || turns[0].AssistantReply != result.Reply {
		t.Fatalf("recorded turn = %+v", turns)
	}
}

func TestTurnTranscriptionFailureFailsTheTurn(t *testing.T) {
	stt := &MockTranscriber{Err: errors.New("stt quota exceeded")}
	p, sessionID := newTestPipeline(t, stt, &MockSynthesizer{}, nil)

	if _, err := p.Turn(context.Background(), sessionID, []byte{1}, "audio/wav"); err == nil {
		t.Fatalf("transcription failure must fail the turn")
	}
}

func TestTurnSynthesisFailureDegradesToText(t *testing.T) {
	stt := &MockTranscriber{Text: "퀴즈 시작"}
	tts := &MockSynthesizer{Err: errors.New("tts unavailable")}
	p, sessionID := newTestPipeline(t, stt, tts, nil)

	result, err := p.Turn(context.Background(), sessionID, []byte{1}, "audio/wav")
	if err != nil {
		t.Fatalf("Turn() error = %v, synthesis failure must not fail the turn", err)
	}
	if !result.Degraded || result.Audio != nil {
		t.Fatalf("expected text-only degrade, got %+v", result)
	}
	if result.Reply == "" {
		t.Fatalf("degraded turn still needs its reply text")
	}
}

func TestTurnUnknownSession(t *testing.T) {
	p, _ := newTestPipeline(t, &MockTranscriber{Text: "안녕"}, &MockSynthesizer{}, nil)

	_, err := p.Turn(context.Background(), "missing-session", []byte{1}, "audio/wav")
	if !errors.Is(err, dialogue.ErrSessionNotFound) {
		t.Fatalf("error = %v, want ErrSessionNotFound", err)
	}
}
