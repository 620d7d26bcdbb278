package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aicupid/backend/internal/llm"
)

var (
	// ErrEmptyUtterance rejects a turn before any node runs.
	ErrEmptyUtterance = errors.New("dialogue: utterance is required")
	// ErrSessionNotFound is returned in durable mode for an unknown session id.
	ErrSessionNotFound = errors.New("dialogue: session not found")
	// ErrInvalidState rejects caller-supplied state whose cursor or score is
	// out of bounds, before any node runs.
	ErrInvalidState = errors.New("dialogue: state is out of bounds")
	// ErrStepBudget stops a turn whose route loop never reached a reply.
	ErrStepBudget = errors.New("dialogue: turn exceeded step budget")
)

// CheckpointStore persists state snapshots under a session key. The found
// flag distinguishes a missing session from a transport failure. Writes are
// last-write-wins.
type CheckpointStore interface {
	Load(ctx context.Context, sessionID string) (State, bool, error)
	Save(ctx context.Context, sessionID string, s State) error
}

// TurnResult is the outcome of one user-in, assistant-out cycle.
type TurnResult struct {
	State    State
	Reply    string
	Decision Decision
}

// ExecutorConfig wires an Executor. Checkpoints may be nil when only
// stateless turns are needed.
type ExecutorConfig struct {
	Bank        *ItemBank
	Client      llm.Client
	Grader      Grader
	Checkpoints CheckpointStore
	MaxSteps    int
	ChatTimeout time.Duration
}

// Executor drives route → node → merge until the router signals finish or
// the turn has produced an assistant reply. Turns on one session are
// serialized; turns on distinct sessions run independently.
type Executor struct {
	router      *Router
	bank        *ItemBank
	client      llm.Client
	grader      Grader
	checkpoints CheckpointStore
	maxSteps    int
	chatTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	bank := cfg.Bank
	if bank == nil {
		bank = DefaultItemBank()
	}
	grader := cfg.Grader
	if grader == nil {
		grader = StringGrader{}
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 8
	}
	chatTimeout := cfg.ChatTimeout
	if chatTimeout <= 0 {
		chatTimeout = 30 * time.Second
	}
	return &Executor{
		router:      NewRouter(bank),
		bank:        bank,
		client:      cfg.Client,
		grader:      grader,
		checkpoints: cfg.Checkpoints,
		maxSteps:    maxSteps,
		chatTimeout: chatTimeout,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (e *Executor) Bank() *ItemBank { return e.bank }

// ExecuteTurn runs one stateless turn: the caller supplies the full prior
// state inline and keeps the returned state for the next call. The prior
// state is untrusted and checked against the bank bounds first.
func (e *Executor) ExecuteTurn(ctx context.Context, prior State, utterance string) (TurnResult, error) {
	if utterance == "" {
		return TurnResult{}, ErrEmptyUtterance
	}
	if err := e.validateState(prior); err != nil {
		return TurnResult{}, err
	}
	return e.run(ctx, prior.AppendUser(utterance))
}

// validateState enforces 0 <= cursor <= len(bank) and a non-negative score
// on state that crossed the API boundary.
func (e *Executor) validateState(s State) error {
	if s.Cursor < 0 || s.Cursor > e.bank.Len() {
		return fmt.Errorf("%w: cursor %d with %d bank items", ErrInvalidState, s.Cursor, e.bank.Len())
	}
	if s.Score < 0 {
		return fmt.Errorf("%w: score %d", ErrInvalidState, s.Score)
	}
	return nil
}

// CreateSession mints a new durable session with an empty checkpoint row.
func (e *Executor) CreateSession(ctx context.Context) (string, error) {
	if e.checkpoints == nil {
		return "", errors.New("dialogue: checkpoint store is not configured")
	}
	id := uuid.NewString()
	if err := e.checkpoints.Save(ctx, id, State{}); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// SessionState loads the checkpointed state for a session.
func (e *Executor) SessionState(ctx context.Context, sessionID string) (State, error) {
	if e.checkpoints == nil || sessionID == "" {
		return State{}, ErrSessionNotFound
	}
	s, found, err := e.checkpoints.Load(ctx, sessionID)
	if err != nil {
		return State{}, fmt.Errorf("load checkpoint: %w", err)
	}
	if !found {
		return State{}, ErrSessionNotFound
	}
	return s, nil
}

// ExecuteSessionTurn runs one durable turn: state is loaded from and saved
// to the checkpoint store under the session key. An unknown session id is a
// client error, rejected before any node runs. The checkpoint
// read-modify-write is guarded per session, so concurrent turns on the same
// session are processed in arrival order.
func (e *Executor) ExecuteSessionTurn(ctx context.Context, sessionID, utterance string) (TurnResult, error) {
	if sessionID == "" {
		return TurnResult{}, ErrSessionNotFound
	}
	if utterance == "" {
		return TurnResult{}, ErrEmptyUtterance
	}
	if e.checkpoints == nil {
		return TurnResult{}, errors.New("dialogue: checkpoint store is not configured")
	}

	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	prior, found, err := e.checkpoints.Load(ctx, sessionID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load checkpoint: %w", err)
	}
	if !found {
		return TurnResult{}, ErrSessionNotFound
	}

	result, err := e.run(ctx, prior.AppendUser(utterance))
	if err != nil {
		return TurnResult{}, err
	}
	if err := e.checkpoints.Save(ctx, sessionID, result.State); err != nil {
		return TurnResult{}, fmt.Errorf("save checkpoint: %w", err)
	}
	return result, nil
}

// run is the route → node loop. A turn completes at a finish decision or
// once a node has emitted the turn's assistant reply; the step budget is a
// hard stop against router/node combinations that would otherwise spin.
func (e *Executor) run(ctx context.Context, s State) (TurnResult, error) {
	for step := 0; step < e.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return TurnResult{}, err
		}

		decision, routed := e.router.Route(s)
		s = s.Merge(routed)

		if decision == DecisionFinish {
			return TurnResult{State: s, Reply: s.LastAssistantText(), Decision: decision}, nil
		}

		update, err := e.dispatch(ctx, decision, s)
		if err != nil {
			return TurnResult{}, err
		}
		s = s.Merge(update)

		if hasAssistantReply(update) {
			return TurnResult{State: s, Reply: s.LastAssistantText(), Decision: decision}, nil
		}
	}
	return TurnResult{}, ErrStepBudget
}

func (e *Executor) dispatch(ctx context.Context, decision Decision, s State) (Update, error) {
	switch decision {
	case DecisionAsk:
		return askQuestion(e.bank, s), nil
	case DecisionGrade:
		return gradeAnswer(ctx, e.bank, e.grader, s), nil
	case DecisionChat:
		return chat(ctx, e.client, e.chatTimeout, s)
	default:
		return Update{}, fmt.Errorf("dialogue: no node for decision %q", decision)
	}
}

func hasAssistantReply(u Update) bool {
	for _, m := range u.Messages {
		if m.Role == RoleAssistant {
			return true
		}
	}
	return false
}

func (e *Executor) sessionLock(sessionID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[sessionID] = lock
	}
	return lock
}

// ForgetSession drops the per-session lock entry once a session has ended,
// so the lock table does not grow with every session ever seen. Callers must
// ensure no further turns run on the session afterwards.
func (e *Executor) ForgetSession(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.locks, sessionID)
}
