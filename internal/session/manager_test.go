package session

import (
	"context"
	"testing"
	"time"
)

func TestManagerRegisterGetEnd(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Register("sess-1", "u1")
	if s.ID != "sess-1" {
		t.Fatalf("session ID = %q, want the registered id", s.ID)
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != "u1" || got.Status != StatusActive {
		t.Fatalf("unexpected session state: %+v", got)
	}

	ended, err := m.End(s.ID)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if ended.Status != StatusEnded {
		t.Fatalf("ended status = %q, want %q", ended.Status, StatusEnded)
	}

	if _, err := m.Get("unknown"); err != ErrNotFound {
		t.Fatalf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestManagerRecordTurn(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Register("sess-1", "u1")

	if err := m.RecordTurn(s.ID); err != nil {
		t.Fatalf("RecordTurn() error = %v", err)
	}
	if err := m.RecordTurn(s.ID); err != nil {
		t.Fatalf("RecordTurn() error = %v", err)
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TurnCount != 2 {
		t.Fatalf("TurnCount = %d, want 2", got.TurnCount)
	}
}

func TestManagerJanitorExpiresInactive(t *testing.T) {
	m := NewManager(30 * time.Millisecond)
	s := m.Register("sess-1", "u1")

	var expiredID string
	done := make(chan struct{})
	m.SetExpireHook(func(s *Session) {
		expiredID = s.ID
		close(done)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("janitor never fired")
	}
	if expiredID != s.ID {
		t.Fatalf("expired id = %q", expiredID)
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusEnded {
		t.Fatalf("Status = %q, want %q", got.Status, StatusEnded)
	}
}
