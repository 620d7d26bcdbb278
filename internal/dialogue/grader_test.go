package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aicupid/backend/internal/llm"
)

func TestStringGrader(t *testing.T) {
	g := StringGrader{}
	ctx := context.Background()

	tests := []struct {
		expected string
		answer   string
		want     bool
	}{
		{"서울", "서울", true},
		{"서울", " 서울 ", true},
		{"서울", "정답은 서울입니다", true},
		{"서울", "부산", false},
		{"에베레스트 산", "에베레스트  산", true},
		{"Seoul", "seoul!", true},
		{"", "아무거나", false},
	}
	for _, tt := range tests {
		if got := g.Grade(ctx, "질문", tt.expected, tt.answer); got != tt.want {
			t.Errorf("Grade(%q, %q) = %v, want %v", tt.expected, tt.answer, got, tt.want)
		}
	}
}

func TestLLMGraderVerdicts(t *testing.T) {
	ctx := context.Background()

	correct := NewLLMGrader(llm.NewMockClient(llm.Response{Text: "정답"}), time.Second)
	if !correct.Grade(ctx, "수도는?", "서울", "한국의 서울이요") {
		t.Fatalf("verdict 정답 should grade correct")
	}

	wrong := NewLLMGrader(llm.NewMockClient(llm.Response{Text: "오답"}), time.Second)
	if wrong.Grade(ctx, "수도는?", "서울", "서울") {
		t.Fatalf("verdict 오답 should grade wrong even when strings match")
	}
}

func TestLLMGraderAmbiguousFallsBackToStringMatch(t *testing.T) {
	g := NewLLMGrader(llm.NewMockClient(llm.Response{Text: "음... 애매하네요"}), time.Second)
	if !g.Grade(context.Background(), "수도는?", "서울", "서울") {
		t.Fatalf("ambiguous verdict should fall back to string match")
	}
	g = NewLLMGrader(llm.NewMockClient(llm.Response{Text: "글쎄요"}), time.Second)
	if g.Grade(context.Background(), "수도는?", "서울", "부산") {
		t.Fatalf("ambiguous verdict with mismatched strings should grade wrong")
	}
}

func TestLLMGraderFailureFallsBackToStringMatch(t *testing.T) {
	client := llm.NewMockClient()
	client.Err = errors.New("quota exceeded")

	g := NewLLMGrader(client, time.Second)
	if !g.Grade(context.Background(), "수도는?", "서울", "서울") {
		t.Fatalf("model failure must not lose a correct answer")
	}
	if g.Grade(context.Background(), "수도는?", "서울", "부산") {
		t.Fatalf("model failure must not invent a correct answer")
	}
}
