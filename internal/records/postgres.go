package records

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists session artifacts in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS balance_game_questions (
			id TEXT PRIMARY KEY,
			question_id TEXT UNIQUE NOT NULL,
			session_id TEXT NOT NULL,
			question_text TEXT NOT NULL,
			option_a TEXT NOT NULL,
			option_b TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_balance_game_session ON balance_game_questions (session_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS four_choice_questions (
			id TEXT PRIMARY KEY,
			question_id TEXT UNIQUE NOT NULL,
			session_id TEXT NOT NULL,
			question_text TEXT NOT NULL,
			correct_answer TEXT NOT NULL,
			wrong_answer_1 TEXT NOT NULL,
			wrong_answer_2 TEXT NOT NULL,
			wrong_answer_3 TEXT NOT NULL,
			about_user_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_four_choice_session ON four_choice_questions (session_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS voice_conversation_turns (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			user_text TEXT,
			assistant_reply TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_voice_turns_session ON voice_conversation_turns (session_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveBalanceGameQuestions(ctx context.Context, questions []BalanceGameQuestion) error {
	for _, q := range questions {
		fillIdentity(&q.ID, &q.QuestionID, &q.CreatedAt)
		_, err := s.pool.Exec(ctx,
			`INSERT INTO balance_game_questions (id, question_id, session_id, question_text, option_a, option_b, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.ID, q.QuestionID, q.SessionID, q.QuestionText, q.OptionA, q.OptionB, q.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("save balance game question: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) BalanceGameQuestions(ctx context.Context, sessionID string) ([]BalanceGameQuestion, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, question_id, session_id, question_text, option_a, option_b, created_at
		 FROM balance_game_questions WHERE session_id=$1 ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query balance game questions: %w", err)
	}
	defer rows.Close()

	var items []BalanceGameQuestion
	for rows.Next() {
		var q BalanceGameQuestion
		if err := rows.Scan(&q.ID, &q.QuestionID, &q.SessionID, &q.QuestionText, &q.OptionA, &q.OptionB, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan balance game row: %w", err)
		}
		items = append(items, q)
	}
	return items, rows.Err()
}

func (s *PostgresStore) SaveFourChoiceQuestion(ctx context.Context, question FourChoiceQuestion) error {
	fillIdentity(&question.ID, &question.QuestionID, &question.CreatedAt)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO four_choice_questions
		 (id, question_id, session_id, question_text, correct_answer, wrong_answer_1, wrong_answer_2, wrong_answer_3, about_user_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		question.ID, question.QuestionID, question.SessionID, question.QuestionText,
		question.CorrectAnswer, question.WrongAnswer1, question.WrongAnswer2, question.WrongAnswer3,
		question.AboutUserName, question.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save four choice question: %w", err)
	}
	return nil
}

func (s *PostgresStore) FourChoiceQuestions(ctx context.Context, sessionID string) ([]FourChoiceQuestion, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, question_id, session_id, question_text, correct_answer, wrong_answer_1, wrong_answer_2, wrong_answer_3, COALESCE(about_user_name, ''), created_at
		 FROM four_choice_questions WHERE session_id=$1 ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query four choice questions: %w", err)
	}
	defer rows.Close()

	var items []FourChoiceQuestion
	for rows.Next() {
		var q FourChoiceQuestion
		if err := rows.Scan(&q.ID, &q.QuestionID, &q.SessionID, &q.QuestionText, &q.CorrectAnswer, &q.WrongAnswer1, &q.WrongAnswer2, &q.WrongAnswer3, &q.AboutUserName, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan four choice row: %w", err)
		}
		items = append(items, q)
	}
	return items, rows.Err()
}

func (s *PostgresStore) SaveConversationTurn(ctx context.Context, turn ConversationTurn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO voice_conversation_turns (id, session_id, user_text, assistant_reply, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		turn.ID, turn.SessionID, turn.UserText, turn.AssistantReply, turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save conversation turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) ConversationTurns(ctx context.Context, sessionID string, limit int) ([]ConversationTurn, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, COALESCE(user_text, ''), assistant_reply, created_at
		 FROM voice_conversation_turns WHERE session_id=$1 ORDER BY created_at DESC LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversation turns: %w", err)
	}
	defer rows.Close()

	items := make([]ConversationTurn, 0, limit)
	for rows.Next() {
		var t ConversationTurn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserText, &t.AssistantReply, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}

	// Reverse into chronological order for history rebuilding.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	return items, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
