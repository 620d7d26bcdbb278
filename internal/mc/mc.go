package mc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aicupid/backend/internal/icebreaker"
	"github.com/aicupid/backend/internal/llm"
)

// startBalanceGameTool is exposed to the model; it takes no arguments. The
// backend fulfills it locally by generating three balance-game questions
// from the conversation.
var startBalanceGameTool = llm.ToolSpec{
	Name: "start_balance_game",
	Description: "참가자가 밸런스 게임을 하자고 하거나, MC가 밸런스 게임을 제안·시작할 때 호출하세요. " +
		"대화 맥락에 맞는 밸런스 게임 질문 3개가 생성됩니다.",
}

const replyNudge = "위 대화 맥락에 맞게, MC로서 참가자에게 할 한 문장(인사·질문·말)만 짧게 답해 주세요. " +
	"따옴표나 설명 없이 말만 출력하세요. " +
	"단, 밸런스 게임을 시작할 때는 start_balance_game 도구를 먼저 호출한 뒤, 그 결과를 활용해 답하세요."

// Reply is the MC's next line, plus the generated balance-game questions
// when the model triggered the game this turn.
type Reply struct {
	Text        string
	Instruction string
	BalanceGame []icebreaker.BalanceQuestion
}

// MC produces the next MC utterance from raw conversation history.
type MC struct {
	client    llm.Client
	generator *icebreaker.Generator
	timeout   time.Duration
}

func New(client llm.Client, generator *icebreaker.Generator, timeout time.Duration) *MC {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MC{client: client, generator: generator, timeout: timeout}
}

// Reply parses the history, builds the MC instruction, and runs one
// completion. A start_balance_game tool call is answered with locally
// generated questions and followed by exactly one re-invocation; any tool
// calls in the second response are ignored.
func (m *MC) Reply(ctx context.Context, raw []byte) (Reply, error) {
	conv := ParseConversation(raw)
	instruction := BuildInstruction(conv)

	messages := make([]llm.Message, 0, len(conv)+1)
	for _, e := range conv {
		role := llm.RoleAssistant
		if e.Role == "user" {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: e.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: replyNudge})

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req := llm.Request{
		SystemInstruction: instruction,
		Messages:          messages,
		Tools:             []llm.ToolSpec{startBalanceGameTool},
	}
	resp, err := m.client.Complete(ctx, req)
	if err != nil {
		return Reply{}, fmt.Errorf("mc: completion failed: %w", err)
	}

	reply := Reply{Instruction: instruction}

	if call, ok := findToolCall(resp, startBalanceGameTool.Name); ok {
		result := "밸런스 게임 질문 생성에 실패했습니다."
		questions, genErr := m.generator.BalanceGame(ctx, conversationContext(conv))
		if genErr == nil {
			reply.BalanceGame = questions
			result = formatBalanceGameResult(questions)
		}

		req.Messages = append(req.Messages, llm.Message{
			Role:     llm.RoleTool,
			ToolName: call.Name,
			Content:  result,
		})
		resp, err = m.client.Complete(ctx, req)
		if err != nil {
			return Reply{}, fmt.Errorf("mc: follow-up completion failed: %w", err)
		}
	}

	reply.Text = strings.TrimSpace(resp.Text)
	return reply, nil
}

func findToolCall(resp llm.Response, name string) (llm.ToolCall, bool) {
	for _, call := range resp.ToolCalls {
		if call.Name == name {
			return call, true
		}
	}
	return llm.ToolCall{}, false
}

func conversationContext(conv []Entry) string {
	if len(conv) == 0 {
		return ""
	}
	lines := make([]string, len(conv))
	for i, e := range conv {
		lines[i] = fmt.Sprintf("- %s: %s", e.Role, e.Content)
	}
	return strings.Join(lines, "\n")
}

func formatBalanceGameResult(questions []icebreaker.BalanceQuestion) string {
	lines := make([]string, len(questions))
	for i, q := range questions {
		lines[i] = fmt.Sprintf("Q%d: %s  A: %s  B: %s", i+1, q.Question, q.OptionA, q.OptionB)
	}
	return "밸런스 게임 질문 3개: " + strings.Join(lines, " | ")
}
