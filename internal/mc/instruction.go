package mc

import (
	"fmt"
	"strings"
)

const mcSystemPrompt = "당신은 AiCupid의 AI MC입니다. " +
	"소개팅/미팅에 참가한 사람들이 서로 편하게 이야기할 수 있도록 분위기를 이끌어 주세요. " +
	"답변은 친근하고 짧게, 한국어로 해 주세요."

const mcRoleInstruction = "역할(roles): 당신은 **ai**이자 **mc**입니다. " +
	"소개팅/미팅 상황을 이끄는 MC로서, 어색한 대화를 자연스럽게 풀어 주세요."

const (
	contextEntries = 20
	contextLineCap = 200
)

// BuildInstruction assembles the MC system instruction: persona, role note,
// and (when present) the tail of the conversation with a nudge to ask a new
// context-fitting question.
func BuildInstruction(conv []Entry) string {
	parts := []string{mcSystemPrompt, mcRoleInstruction}

	if len(conv) > 0 {
		tail := conv
		if len(tail) > contextEntries {
			tail = tail[len(tail)-contextEntries:]
		}
		lines := []string{"[지금까지의 대화 내역:]"}
		for _, e := range tail {
			lines = append(lines, fmt.Sprintf("- %s: %s", e.Role, truncateRunes(e.Content, contextLineCap)))
		}
		parts = append(parts, strings.Join(lines, "\n")+"\n\n"+
			"위 대화 내역을 기반으로 참가자에게 자연스러운 **새 질문**을 하거나, 대화를 이어가세요. "+
			"맥락에 맞는 질문으로 분위기를 이끌어 주세요. "+
			"참가자가 밸런스 게임을 하자고 하면 start_balance_game 도구를 호출하세요.")
	}

	return strings.Join(parts, "\n\n")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
