package dialogue

import (
	"context"
	"fmt"
	"time"

	"github.com/aicupid/backend/internal/llm"
)

const (
	askLeadIn       = "퀴즈 질문입니다: "
	allDoneTemplate = "퀴즈가 모두 끝났습니다! 최종 점수: %d점"

	chatSystemPrompt = `당신은 AiCupid 퀴즈·대화 에이전트입니다.
사용자와 퀴즈를 진행하거나, 퀴즈와 무관한 대화를 할 수 있습니다.
답변은 친근하고 짧게, 한국어로 해 주세요.`
)

// askQuestion returns the next prompt for the user. The cursor is not
// advanced here; it moves only when the answer is graded.
func askQuestion(bank *ItemBank, s State) Update {
	if s.Cursor < bank.Len() {
		text := askLeadIn + bank.Item(s.Cursor).Prompt
		return Update{Messages: []Message{{Role: RoleAssistant, Content: text}}}
	}
	return Update{Messages: []Message{{
		Role:    RoleAssistant,
		Content: fmt.Sprintf(allDoneTemplate, s.Score),
	}}}
}

// gradeAnswer scores the latest user message against the current bank item,
// advances the cursor, and reports the verdict. The cursor moves regardless
// of correctness; the score moves only on a correct answer.
func gradeAnswer(ctx context.Context, bank *ItemBank, grader Grader, s State) Update {
	answer := ""
	if len(s.Messages) > 0 {
		answer = s.Messages[len(s.Messages)-1].Content
	}

	item := bank.Item(s.Cursor)
	score := s.Score
	var text string
	if grader.Grade(ctx, item.Prompt, item.Answer, answer) {
		score++
		text = fmt.Sprintf("정답입니다! 현재 점수: %d", score)
	} else {
		text = fmt.Sprintf("아쉽네요. 정답은 '%s'입니다. 현재 점수: %d", item.Answer, score)
	}

	return Update{
		Messages: []Message{{Role: RoleAssistant, Content: text}},
		Cursor:   intRef(s.Cursor + 1),
		Score:    intRef(score),
	}
}

// chat generates a free-form reply over the full history. Failures surface
// to the caller; the node does not retry.
func chat(ctx context.Context, client llm.Client, timeout time.Duration, s State) (Update, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	messages := make([]llm.Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		messages = append(messages, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}

	res, err := client.Complete(ctx, llm.Request{
		SystemInstruction: chatSystemPrompt,
		Messages:          messages,
	})
	if err != nil {
		return Update{}, fmt.Errorf("chat completion: %w", err)
	}
	return Update{Messages: []Message{{Role: RoleAssistant, Content: res.Text}}}, nil
}
