package records

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process store for local/dev use.
type InMemoryStore struct {
	mu          sync.RWMutex
	balanceRows map[string][]BalanceGameQuestion
	quizRows    map[string][]FourChoiceQuestion
	turnRows    map[string][]ConversationTurn
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		balanceRows: make(map[string][]BalanceGameQuestion),
		quizRows:    make(map[string][]FourChoiceQuestion),
		turnRows:    make(map[string][]ConversationTurn),
	}
}

func (s *InMemoryStore) SaveBalanceGameQuestions(_ context.Context, questions []BalanceGameQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range questions {
		fillIdentity(&q.ID, &q.QuestionID, &q.CreatedAt)
		s.balanceRows[q.SessionID] = append(s.balanceRows[q.SessionID], q)
	}
	return nil
}

func (s *InMemoryStore) BalanceGameQuestions(_ context.Context, sessionID string) ([]BalanceGameQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.balanceRows[sessionID]
	out := make([]BalanceGameQuestion, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *InMemoryStore) SaveFourChoiceQuestion(_ context.Context, question FourChoiceQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fillIdentity(&question.ID, &question.QuestionID, &question.CreatedAt)
	s.quizRows[question.SessionID] = append(s.quizRows[question.SessionID], question)
	return nil
}

func (s *InMemoryStore) FourChoiceQuestions(_ context.Context, sessionID string) ([]FourChoiceQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.quizRows[sessionID]
	out := make([]FourChoiceQuestion, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *InMemoryStore) SaveConversationTurn(_ context.Context, turn ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	s.turnRows[turn.SessionID] = append(s.turnRows[turn.SessionID], turn)
	return nil
}

func (s *InMemoryStore) ConversationTurns(_ context.Context, sessionID string, limit int) ([]ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.turnRows[sessionID]
	if len(rows) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	out := make([]ConversationTurn, 0, limit)
	for i := len(rows) - limit; i < len(rows); i++ {
		out = append(out, rows[i])
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }

func fillIdentity(id, questionID *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if *questionID == "" {
		*questionID = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}
