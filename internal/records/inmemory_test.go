package records

import (
	"context"
	"testing"
)

func TestInMemoryBalanceGameQuestions(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	err := store.SaveBalanceGameQuestions(ctx, []BalanceGameQuestion{
		{SessionID: "s1", QuestionText: "팝콘 vs 나초?", OptionA: "팝콘", OptionB: "나초"},
		{SessionID: "s1", QuestionText: "산 vs 바다?", OptionA: "산", OptionB: "바다"},
		{SessionID: "s2", QuestionText: "집 vs 밖?", OptionA: "집", OptionB: "밖"},
	})
	if err != nil {
		t.Fatalf("SaveBalanceGameQuestions() error = %v", err)
	}

	got, err := store.BalanceGameQuestions(ctx, "s1")
	if err != nil {
		t.Fatalf("BalanceGameQuestions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].QuestionID == "" || got[0].ID == "" || got[0].CreatedAt.IsZero() {
		t.Fatalf("identity fields not filled: %+v", got[0])
	}
	if got[1].QuestionText != "산 vs 바다?" {
		t.Fatalf("insertion order lost: %+v", got)
	}
}

func TestInMemoryFourChoiceQuestion(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	err := store.SaveFourChoiceQuestion(ctx, FourChoiceQuestion{
		SessionID:     "s1",
		QuestionText:  "민수 씨가 좋아하는 계절은?",
		CorrectAnswer: "겨울",
		WrongAnswer1:  "봄",
		WrongAnswer2:  "여름",
		WrongAnswer3:  "가을",
		AboutUserName: "민수",
	})
	if err != nil {
		t.Fatalf("SaveFourChoiceQuestion() error = %v", err)
	}

	got, err := store.FourChoiceQuestions(ctx, "s1")
	if err != nil {
		t.Fatalf("FourChoiceQuestions() error = %v", err)
	}
	if len(got) != 1 || got[0].AboutUserName != "민수" {
		t.Fatalf("rows = %+v", got)
	}
}

func TestInMemoryConversationTurnsLimit(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	for _, reply := range []string{"첫 번째", "두 번째", "세 번째"} {
		if err := store.SaveConversationTurn(ctx, ConversationTurn{
			SessionID:      "s1",
			UserText:       "안녕",
			AssistantReply: reply,
		}); err != nil {
			t.Fatalf("SaveConversationTurn() error = %v", err)
		}
	}

	got, err := store.ConversationTurns(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("ConversationTurns() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d turns, want 2", len(got))
	}
	// Most recent turns, oldest first.
	if got[0].AssistantReply != "두 번째" || got[1].AssistantReply != "세 번째" {
		t.Fatalf("turns = %+v", got)
	}

	if turns, _ := store.ConversationTurns(ctx, "unknown", 5); turns != nil {
		t.Fatalf("unknown session should have no turns")
	}
}
