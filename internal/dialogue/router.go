package dialogue

import "strings"

// Decision is the closed set of router outcomes. The executor matches on it
// exhaustively, so adding a decision is a compile-time-checked change.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionAsk
	DecisionGrade
	DecisionChat
	DecisionFinish
)

func (d Decision) String() string {
	switch d {
	case DecisionAsk:
		return "ask"
	case DecisionGrade:
		return "grade"
	case DecisionChat:
		return "chat"
	case DecisionFinish:
		return "finish"
	default:
		return "none"
	}
}

const (
	// questionMarker tags assistant messages that pose a quiz question.
	// The ask lead-in contains it, so a user message that directly follows
	// a question routes to grading.
	questionMarker = "질문"
	quizToken      = "퀴즈"
	startToken     = "시작"
)

// Router maps the current state to exactly one decision. It reads the state
// only, passes cursor and score through unchanged, and is safe to call any
// number of times on the same input.
type Router struct {
	bank *ItemBank
}

func NewRouter(bank *ItemBank) *Router {
	return &Router{bank: bank}
}

func (r *Router) Route(s State) (Decision, Update) {
	if len(s.Messages) == 0 {
		// Bootstrap: nothing said yet, start a fresh free-chat session.
		return DecisionChat, Update{Cursor: intRef(0), Score: intRef(0), Decision: DecisionChat}
	}

	last := s.Messages[len(s.Messages)-1]

	decision := DecisionFinish
	if s.Cursor < r.bank.Len() {
		if len(s.Messages) >= 2 &&
			s.Messages[len(s.Messages)-2].Role == RoleAssistant &&
			strings.Contains(s.Messages[len(s.Messages)-2].Content, questionMarker) {
			decision = DecisionGrade
		} else {
			decision = DecisionAsk
		}
	}

	// Keyword override: "퀴즈" + "시작" forces a question, even mid-grading.
	// Inherited policy; see the open question in DESIGN.md.
	if last.Role == RoleUser &&
		strings.Contains(last.Content, quizToken) &&
		strings.Contains(last.Content, startToken) {
		decision = DecisionAsk
	}

	return decision, Update{Decision: decision}
}
