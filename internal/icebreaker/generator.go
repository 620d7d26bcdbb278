package icebreaker

import (
	"context"
	"fmt"
	"time"

	"github.com/aicupid/backend/internal/llm"
)

// Layout specs for the four generator variants. Caps keep stored questions
// within the record-table column budgets.
var (
	balanceGameSpec = Spec{
		Name:   "balance_game",
		Blocks: 3,
		Fields: []FieldSpec{
			{Labels: []string{"Q1", "Q2", "Q3", "질문1", "질문2", "질문3"}, MaxLen: 500},
			{Labels: []string{"OPTION_A", "선택A", "A"}, MaxLen: 200},
			{Labels: []string{"OPTION_B", "선택B", "B"}, MaxLen: 200},
		},
	}

	fourChoiceSpec = Spec{
		Name:   "four_choice",
		Blocks: 1,
		Fields: []FieldSpec{
			{Labels: []string{"QUESTION", "질문"}, MaxLen: 500},
			{Labels: []string{"CORRECT", "정답"}, MaxLen: 200},
			{Labels: []string{"WRONG1", "오답1"}, MaxLen: 200},
			{Labels: []string{"WRONG2", "오답2"}, MaxLen: 200},
			{Labels: []string{"WRONG3", "오답3"}, MaxLen: 200},
		},
	}

	psychQuestionsSpec = Spec{
		Name:   "psych_questions",
		Blocks: 3,
		Fields: []FieldSpec{
			{Labels: []string{"Q1", "Q2", "Q3", "질문1", "질문2", "질문3"}, MaxLen: 500},
		},
	}

	psychResultSpec = Spec{
		Name:   "psych_result",
		Blocks: 1,
		Fields: []FieldSpec{
			{Labels: []string{"성향"}},
			{Labels: []string{"가치관"}},
			{Labels: []string{"관계"}},
			{Labels: []string{"조언"}},
			{Labels: []string{"총평"}},
		},
	}
)

func init() {
	for _, s := range []*Spec{&balanceGameSpec, &fourChoiceSpec, &psychQuestionsSpec, &psychResultSpec} {
		if err := s.Compile(); err != nil {
			panic(err)
		}
	}
}

// BalanceQuestion is one "A vs B" pick.
type BalanceQuestion struct {
	Question string `json:"question"`
	OptionA  string `json:"option_a"`
	OptionB  string `json:"option_b"`
}

// FourChoiceQuestion is a quiz about one participant: the real answer plus
// three plausible decoys.
type FourChoiceQuestion struct {
	Question string `json:"question"`
	Correct  string `json:"correct_answer"`
	Wrong1   string `json:"wrong_answer_1"`
	Wrong2   string `json:"wrong_answer_2"`
	Wrong3   string `json:"wrong_answer_3"`
}

// PsychResult is the analyzed outcome of a psychology test, split into the
// five sections the result sheet renders.
type PsychResult struct {
	Traits   string `json:"traits"`
	Values   string `json:"values"`
	Relation string `json:"relation"`
	Advice   string `json:"advice"`
	Summary  string `json:"summary"`
}

// Generator runs the one-shot prompt → completion → parse cycle. It never
// retries; a parse failure is returned to the caller as ErrParse.
type Generator struct {
	client  llm.Client
	timeout time.Duration
}

func NewGenerator(client llm.Client, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{client: client, timeout: timeout}
}

func (g *Generator) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Complete(ctx, llm.Request{
		SystemInstruction: system,
		Messages:          []llm.Message{{Role: llm.RoleUser, Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("icebreaker: completion failed: %w", err)
	}
	return resp.Text, nil
}

// BalanceGame generates three balance-game questions from the session's
// conversation context.
func (g *Generator) BalanceGame(ctx context.Context, conversationContext string) ([]BalanceQuestion, error) {
	raw, err := g.complete(ctx, balanceGameSystem, balanceGameUser(conversationContext))
	if err != nil {
		return nil, err
	}
	blocks, err := balanceGameSpec.Parse(raw)
	if err != nil {
		return nil, err
	}

	questions := make([]BalanceQuestion, len(blocks))
	for i, b := range blocks {
		questions[i] = BalanceQuestion{Question: b[0], OptionA: b[1], OptionB: b[2]}
	}
	return questions, nil
}

// FourChoice generates one four-choice quiz about the named participant.
func (g *Generator) FourChoice(ctx context.Context, conversationContext, aboutUserName string) (FourChoiceQuestion, error) {
	raw, err := g.complete(ctx, fourChoiceSystem, fourChoiceUser(conversationContext, aboutUserName))
	if err != nil {
		return FourChoiceQuestion{}, err
	}
	blocks, err := fourChoiceSpec.Parse(raw)
	if err != nil {
		return FourChoiceQuestion{}, err
	}

	b := blocks[0]
	return FourChoiceQuestion{Question: b[0], Correct: b[1], Wrong1: b[2], Wrong2: b[3], Wrong3: b[4]}, nil
}

// PsychQuestions generates three psychology-test questions for the pair.
func (g *Generator) PsychQuestions(ctx context.Context, history string) ([]string, error) {
	raw, err := g.complete(ctx, psychQuestionsSystem, psychQuestionsUser(history))
	if err != nil {
		return nil, err
	}
	blocks, err := psychQuestionsSpec.Parse(raw)
	if err != nil {
		return nil, err
	}

	questions := make([]string, len(blocks))
	for i, b := range blocks {
		questions[i] = b[0]
	}
	return questions, nil
}

// PsychResult analyzes the asked questions and both participants' answers
// into the five-section result sheet.
func (g *Generator) PsychResult(ctx context.Context, questions []string, answers string) (PsychResult, error) {
	raw, err := g.complete(ctx, psychResultSystem, psychResultUser(questions, answers))
	if err != nil {
		return PsychResult{}, err
	}
	blocks, err := psychResultSpec.Parse(raw)
	if err != nil {
		return PsychResult{}, err
	}

	b := blocks[0]
	return PsychResult{Traits: b[0], Values: b[1], Relation: b[2], Advice: b[3], Summary: b[4]}, nil
}
