package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aicupid/backend/internal/llm"
)

func testBank() *ItemBank {
	return NewItemBank([]Item{
		{Prompt: "대한민국의 수도는?", Answer: "서울"},
		{Prompt: "세상에서 가장 높은 산은?", Answer: "에베레스트 산"},
	})
}

func TestAskQuestionReturnsCurrentItem(t *testing.T) {
	bank := testBank()
	update := askQuestion(bank, State{Cursor: 0})

	if len(update.Messages) != 1 || update.Messages[0].Role != RoleAssistant {
		t.Fatalf("ask should emit one assistant message: %+v", update.Messages)
	}
	want := "퀴즈 질문입니다: 대한민국의 수도는?"
	if update.Messages[0].Content != want {
		t.Fatalf("content = %q, want %q", update.Messages[0].Content, want)
	}
	if update.Cursor != nil {
		t.Fatalf("ask must not advance the cursor")
	}
}

func TestAskQuestionExhaustedBank(t *testing.T) {
	bank := testBank()
	update := askQuestion(bank, State{Cursor: 2, Score: 1})
	if !strings.Contains(update.Messages[0].Content, "최종 점수: 1점") {
		t.Fatalf("all-done message = %q", update.Messages[0].Content)
	}
}

func TestGradeAnswerCorrect(t *testing.T) {
	bank := testBank()
	s := State{
		Cursor: 0,
		Messages: []Message{
			{Role: RoleAssistant, Content: "질문: 대한민국의 수도는?"},
			{Role: RoleUser, Content: "서울"},
		},
	}

	update := gradeAnswer(context.Background(), bank, StringGrader{}, s)
	if update.Score == nil || *update.Score != 1 {
		t.Fatalf("score = %+v, want 1", update.Score)
	}
	if update.Cursor == nil || *update.Cursor != 1 {
		t.Fatalf("cursor = %+v, want 1", update.Cursor)
	}
	if update.Messages[0].Content != "정답입니다! 현재 점수: 1" {
		t.Fatalf("verdict = %q", update.Messages[0].Content)
	}
}

func TestGradeAnswerWrongStillAdvances(t *testing.T) {
	bank := testBank()
	s := State{
		Cursor: 0,
		Messages: []Message{
			{Role: RoleAssistant, Content: "질문: 대한민국의 수도는?"},
			{Role: RoleUser, Content: "부산"},
		},
	}

	update := gradeAnswer(context.Background(), bank, StringGrader{}, s)
	if update.Score == nil || *update.Score != 0 {
		t.Fatalf("score = %+v, want 0", update.Score)
	}
	if update.Cursor == nil || *update.Cursor != 1 {
		t.Fatalf("wrong answer must still advance the cursor, got %+v", update.Cursor)
	}
	if !strings.Contains(update.Messages[0].Content, "'서울'") {
		t.Fatalf("verdict should name the correct answer: %q", update.Messages[0].Content)
	}
}

func TestChatSurfacesModelFailure(t *testing.T) {
	client := NewFailingClient(errors.New("model unreachable"))
	_, err := chat(context.Background(), client, time.Second, State{
		Messages: []Message{{Role: RoleUser, Content: "안녕"}},
	})
	if err == nil {
		t.Fatalf("chat must surface completion errors")
	}
}

func TestChatReturnsModelTextVerbatim(t *testing.T) {
	client := llm.NewMockClient(llm.Response{Text: "  반가워요!  "})
	update, err := chat(context.Background(), client, time.Second, State{
		Messages: []Message{{Role: RoleUser, Content: "안녕"}},
	})
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	// No post-processing of the model output.
	if update.Messages[0].Content != "  반가워요!  " {
		t.Fatalf("content = %q, want verbatim model text", update.Messages[0].Content)
	}
}

// NewFailingClient returns a client whose completions always fail.
func NewFailingClient(err error) llm.Client {
	c := llm.NewMockClient()
	c.Err = err
	return c
}
