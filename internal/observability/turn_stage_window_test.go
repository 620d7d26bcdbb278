package observability

import (
	"testing"
	"time"
)

func TestTurnStageWindowSnapshot(t *testing.T) {
	w := newTurnStageWindow(8)
	w.Observe("tts", 500)
	w.Observe("tts", 700)
	w.Observe("tts", 900)
	w.ObserveIndicator("tts_degraded")
	w.ObserveIndicator("tts_degraded")

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("WindowSize = %d, want 8", snap.WindowSize)
	}
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Stage != "tts" {
		t.Fatalf("Stage = %q, want %q", s.Stage, "tts")
	}
	if s.Samples != 3 {
		t.Fatalf("Samples = %d, want 3", s.Samples)
	}
	if s.LastMS != 900 {
		t.Fatalf("LastMS = %.2f, want 900", s.LastMS)
	}
	if s.P50MS != 700 {
		t.Fatalf("P50MS = %.2f, want 700", s.P50MS)
	}
	if s.P95MS <= 700 || s.P95MS > 900 {
		t.Fatalf("P95MS = %.2f, want (700,900]", s.P95MS)
	}
	if s.TargetP95MS != 1800 {
		t.Fatalf("TargetP95MS = %.2f, want 1800", s.TargetP95MS)
	}
	if len(snap.Indicators) != 1 {
		t.Fatalf("len(Indicators) = %d, want 1", len(snap.Indicators))
	}
	if snap.Indicators[0].Name != "tts_degraded" {
		t.Fatalf("Indicators[0].Name = %q", snap.Indicators[0].Name)
	}
	if snap.Indicators[0].Count != 2 {
		t.Fatalf("Indicators[0].Count = %d, want 2", snap.Indicators[0].Count)
	}
}

func TestTurnStageWindowRollsOver(t *testing.T) {
	w := newTurnStageWindow(4)
	for i := 0; i < 10; i++ {
		w.Observe("stt", float64(100+i))
	}

	snap := w.Snapshot()
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Samples != 4 {
		t.Fatalf("Samples = %d, want the window size", s.Samples)
	}
	if s.LastMS != 109 {
		t.Fatalf("LastMS = %.2f, want 109", s.LastMS)
	}
	// Only the newest four samples (106..109) survive the roll-over.
	if s.P50MS < 106 {
		t.Fatalf("P50MS = %.2f, want >= 106", s.P50MS)
	}
}

func TestMetricsSnapshotTurnStages(t *testing.T) {
	m := &Metrics{stageWindow: newTurnStageWindow(8)}
	m.ObserveStage("dialogue", 250*time.Millisecond)

	snap := m.SnapshotTurnStages()
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	if snap.Stages[0].Stage != "dialogue" {
		t.Fatalf("Stage = %q, want %q", snap.Stages[0].Stage, "dialogue")
	}
	if snap.Stages[0].LastMS != 250 {
		t.Fatalf("LastMS = %.2f, want 250", snap.Stages[0].LastMS)
	}
}
