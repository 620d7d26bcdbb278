// Package records persists the session's side artifacts: generated
// balance-game questions, four-choice questions, and voice conversation
// turns. A question row is written only after its generation fully parsed.
package records

import (
	"context"
	"time"
)

// BalanceGameQuestion is one stored "A vs B" question.
type BalanceGameQuestion struct {
	ID           string    `json:"id"`
	QuestionID   string    `json:"question_id"`
	SessionID    string    `json:"session_id"`
	QuestionText string    `json:"question_text"`
	OptionA      string    `json:"option_a"`
	OptionB      string    `json:"option_b"`
	CreatedAt    time.Time `json:"created_at"`
}

// FourChoiceQuestion is a stored quiz about one participant: the real
// answer plus three decoys. AboutUserName is read back when TTS announces
// whose quiz it is.
type FourChoiceQuestion struct {
	ID            string    `json:"id"`
	QuestionID    string    `json:"question_id"`
	SessionID     string    `json:"session_id"`
	QuestionText  string    `json:"question_text"`
	CorrectAnswer string    `json:"correct_answer"`
	WrongAnswer1  string    `json:"wrong_answer_1"`
	WrongAnswer2  string    `json:"wrong_answer_2"`
	WrongAnswer3  string    `json:"wrong_answer_3"`
	AboutUserName string    `json:"about_user_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ConversationTurn stores one voice turn: the user transcript and the reply
// spoken back. Later turns read these rows to rebuild session history.
type ConversationTurn struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	UserText       string    `json:"user_text"`
	AssistantReply string    `json:"assistant_reply"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists session artifacts.
type Store interface {
	SaveBalanceGameQuestions(ctx context.Context, questions []BalanceGameQuestion) error
	BalanceGameQuestions(ctx context.Context, sessionID string) ([]BalanceGameQuestion, error)

	SaveFourChoiceQuestion(ctx context.Context, question FourChoiceQuestion) error
	FourChoiceQuestions(ctx context.Context, sessionID string) ([]FourChoiceQuestion, error)

	SaveConversationTurn(ctx context.Context, turn ConversationTurn) error
	ConversationTurns(ctx context.Context, sessionID string, limit int) ([]ConversationTurn, error)

	Close() error
}
