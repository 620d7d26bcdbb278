package icebreaker

import (
	"fmt"
	"strings"
)

const emptyHistory = "(아직 대화 없음)"

const balanceGameSystem = "당신은 소개팅/미팅 MC입니다. **밸런스 게임** 질문 3개를 만드세요. " +
	"각 질문은 'A vs B' 형태로 두 가지 중 하나를 고르는 재미있는 질문이어야 합니다. " +
	"반드시 아래 형식으로만 출력하세요.\n\n" +
	"Q1: (첫 번째 질문 문장, 예: 영화 볼 때 팝콘 vs 나초?)\n" +
	"OPTION_A: (첫 번째 선택지)\nOPTION_B: (두 번째 선택지)\n\n" +
	"Q2: (두 번째 질문)\nOPTION_A: ...\nOPTION_B: ...\n\n" +
	"Q3: (세 번째 질문)\nOPTION_A: ...\nOPTION_B: ..."

func balanceGameUser(conversationContext string) string {
	history := strings.TrimSpace(conversationContext)
	if history == "" {
		history = emptyHistory
	}
	return "[이 세션의 대화 내역]\n" + history + "\n\n" +
		"위 대화 맥락을 활용해 참가자들이 고르기 좋은 밸런스 게임 질문 3개를 Q1/OPTION_A/OPTION_B 형식으로 출력하세요."
}

const fourChoiceSystem = "당신은 소개팅/미팅 MC입니다. 한 참가자에 대한 **4지선다 퀴즈** 1개를 만드세요. " +
	"질문은 대화에서 드러난 그 사람의 취향이나 경험에 대한 것이어야 하고, " +
	"정답 1개와 그럴듯한 오답 3개가 필요합니다. 반드시 아래 형식으로만 출력하세요.\n\n" +
	"QUESTION: (질문 문장)\n" +
	"CORRECT: (정답)\n" +
	"WRONG1: (오답 1)\nWRONG2: (오답 2)\nWRONG3: (오답 3)"

func fourChoiceUser(conversationContext, aboutUserName string) string {
	history := strings.TrimSpace(conversationContext)
	if history == "" {
		history = emptyHistory
	}
	subject := strings.TrimSpace(aboutUserName)
	if subject == "" {
		subject = "참가자"
	}
	return "[이 세션의 대화 내역]\n" + history + "\n\n" +
		fmt.Sprintf("위 대화를 바탕으로 %s에 대한 4지선다 퀴즈 1개를 QUESTION/CORRECT/WRONG1/WRONG2/WRONG3 형식으로 출력하세요.", subject)
}

const psychQuestionsSystem = "당신은 연인 관계나 두 사람의 케미를 알아볼 수 있는 창의적인 심리테스트 출제자입니다. " +
	"서로에 대해 더 깊이 이해할 수 있는 흥미로운 질문 3개를 순서대로 제시해야 합니다. " +
	"반드시 아래 형식으로만 출력하세요.\n\n" +
	"Q1: (첫 번째 질문)\nQ2: (두 번째 질문)\nQ3: (세 번째 질문)"

func psychQuestionsUser(history string) string {
	trimmed := strings.TrimSpace(history)
	if trimmed == "" {
		trimmed = emptyHistory
	}
	return "이전 대화 내용: " + trimmed + "\n\n" +
		"위 대화를 바탕으로, 두 사람을 위한 심리테스트 질문 3개를 Q1/Q2/Q3 형식으로 만들어줘."
}

const psychResultSystem = "당신은 커플 관계 및 심리 분석 전문가입니다. " +
	"주어진 심리테스트 질문과 두 사람의 답변을 종합적으로 분석하여, 두 사람의 성향, 가치관, " +
	"관계의 특징, 그리고 서로를 위한 조언을 담은 흥미로운 결과지를 작성해주세요. " +
	"결과는 친근하고 다정한 말투로, 반드시 아래 형식으로만 출력하세요.\n\n" +
	"성향: (두 사람 각각의 성향 분석)\n" +
	"가치관: (답변에서 드러난 가치관)\n" +
	"관계: (두 사람 관계의 특징)\n" +
	"조언: (서로를 위한 조언)\n" +
	"총평: (한두 문장의 종합 평가)"

func psychResultUser(questions []string, answers string) string {
	var sb strings.Builder
	sb.WriteString("심리테스트 질문:\n")
	for i, q := range questions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
	}
	sb.WriteString("\n두 사람의 답변:\n")
	sb.WriteString(strings.TrimSpace(answers))
	sb.WriteString("\n\n위 내용을 바탕으로 종합적인 심리테스트 결과지를 성향/가치관/관계/조언/총평 형식으로 작성해줘.")
	return sb.String()
}
