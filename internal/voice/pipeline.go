package voice

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aicupid/backend/internal/dialogue"
	"github.com/aicupid/backend/internal/records"
)

// StageObserver receives per-stage turn latencies and outcome indicators.
// *observability.Metrics satisfies it.
type StageObserver interface {
	ObserveStage(stage string, d time.Duration)
	ObserveTurnIndicator(name string)
}

// TurnResult is one completed voice turn. Audio is nil when synthesis was
// skipped or degraded; Degraded marks a reply that fell back to text-only
// after a synthesis failure.
type TurnResult struct {
	Transcript string
	Reply      string
	Decision   dialogue.Decision
	Audio      *SpeechAudio
	Degraded   bool
}

// Pipeline runs transcribe → dialogue turn → synthesize, sequentially. The
// conversation record is written before synthesis so a later turn reading
// history never races the speech call.
type Pipeline struct {
	transcriber Transcriber
	synthesizer Synthesizer
	executor    *dialogue.Executor
	records     records.Store
	observer    StageObserver
}

func NewPipeline(transcriber Transcriber, synthesizer Synthesizer, executor *dialogue.Executor, store records.Store) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		synthesizer: synthesizer,
		executor:    executor,
		records:     store,
	}
}

// SetObserver attaches latency instrumentation. Nil is fine.
func (p *Pipeline) SetObserver(obs StageObserver) {
	p.observer = obs
}

func (p *Pipeline) observeStage(stage string, started time.Time) {
	if p.observer != nil {
		p.observer.ObserveStage(stage, time.Since(started))
	}
}

// Transcribe exposes bare audio-to-text, backing the audio-to-text endpoint.
func (p *Pipeline) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return p.transcriber.Transcribe(ctx, audio, mimeType)
}

// Turn runs one full voice turn against the durable session. A
// transcription failure fails the turn; a synthesis failure degrades it to
// text-only.
func (p *Pipeline) Turn(ctx context.Context, sessionID string, audio []byte, mimeType string) (TurnResult, error) {
	turnStarted := time.Now()

	sttStarted := time.Now()
	transcript, err := p.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		return TurnResult{}, fmt.Errorf("voice: transcription failed: %w", err)
	}
	p.observeStage("stt", sttStarted)

	dialogueStarted := time.Now()
	turn, err := p.executor.ExecuteSessionTurn(ctx, sessionID, transcript)
	if err != nil {
		return TurnResult{}, err
	}
	p.observeStage("dialogue", dialogueStarted)

	result := TurnResult{
		Transcript: transcript,
		Reply:      turn.Reply,
		Decision:   turn.Decision,
	}

	if p.records != nil {
		if err := p.records.SaveConversationTurn(ctx, records.ConversationTurn{
			SessionID:      sessionID,
			UserText:       transcript,
			AssistantReply: turn.Reply,
		}); err != nil {
			log.Printf("voice: failed to record turn for session %s: %v", sessionID, err)
		}
	}

	if turn.Reply != "" {
		ttsStarted := time.Now()
		speech, synthErr := p.synthesizer.Synthesize(ctx, turn.Reply)
		if synthErr != nil {
			log.Printf("voice: synthesis failed for session %s, degrading to text: %v", sessionID, synthErr)
			result.Degraded = true
			if p.observer != nil {
				p.observer.ObserveTurnIndicator("tts_degraded")
			}
		} else {
			result.Audio = &speech
			p.observeStage("tts", ttsStarted)
		}
	}

	p.observeStage("turn_total", turnStarted)
	return result, nil
}
