package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aicupid/backend/internal/llm"
)

// Grader decides whether a user answer matches the expected answer. Grading
// must always produce a verdict; implementations never return an error.
type Grader interface {
	Grade(ctx context.Context, prompt, expected, answer string) bool
}

// StringGrader matches answers by normalized equality or containment of the
// expected answer. Used for the fixed item bank and as the fallback for
// every model-judged path.
type StringGrader struct{}

func (StringGrader) Grade(_ context.Context, _, expected, answer string) bool {
	want := normalizeAnswer(expected)
	got := normalizeAnswer(answer)
	if want == "" {
		return false
	}
	return got == want || strings.Contains(got, want)
}

func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, ".!?。")
}

const (
	gradeVerdictCorrect = "정답"
	gradeVerdictWrong   = "오답"
)

const gradeSystemPrompt = "당신은 퀴즈 채점 전문가입니다. 사용자의 답변이 주어진 질문의 정답과 의미적으로 일치하는지 판단해주세요. '정답' 또는 '오답'으로만 대답해야 합니다."

// LLMGrader judges semantic equivalence with one completion call constrained
// to a binary verdict token. A failed call or an ambiguous verdict falls
// back to string matching; the error never reaches the caller.
type LLMGrader struct {
	client   llm.Client
	fallback StringGrader
	timeout  time.Duration
}

func NewLLMGrader(client llm.Client, timeout time.Duration) *LLMGrader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &LLMGrader{client: client, timeout: timeout}
}

func (g *LLMGrader) Grade(ctx context.Context, prompt, expected, answer string) bool {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.client.Complete(ctx, llm.Request{
		SystemInstruction: gradeSystemPrompt,
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: fmt.Sprintf(
				"질문: '%s'\n정답: '%s'\n사용자 답변: '%s'\n\n이 답변은 정답인가요, 오답인가요?",
				prompt, expected, answer,
			),
		}},
	})
	if err != nil {
		log.Printf("grade judge failed, using string match: %v", err)
		return g.fallback.Grade(ctx, prompt, expected, answer)
	}

	verdict := strings.TrimSpace(res.Text)
	switch {
	case strings.HasPrefix(verdict, gradeVerdictCorrect):
		return true
	case strings.HasPrefix(verdict, gradeVerdictWrong):
		return false
	default:
		// Ambiguous output counts as a failed judgment.
		return g.fallback.Grade(ctx, prompt, expected, answer)
	}
}
