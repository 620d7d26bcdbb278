package dialogue

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one (role, content) entry of the conversation record.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// State is the versioned conversation record threaded through every node.
// Messages is append-only; Cursor and Score are overwritten by merges.
type State struct {
	Messages []Message `json:"messages"`
	Cursor   int       `json:"cursor"`
	Score    int       `json:"score"`

	// Pending is the router decision for the current step. It is consumed
	// by the executor within the same step and never persisted.
	Pending Decision `json:"-"`
}

// Update is the partial state produced by one node. History concatenates,
// scalars overwrite only when set.
type Update struct {
	Messages []Message
	Cursor   *int
	Score    *int
	Decision Decision
}

// Merge folds a partial update into the state, returning a new value.
// Prior messages are never removed or reordered.
func (s State) Merge(u Update) State {
	out := s.Clone()
	out.Messages = append(out.Messages, u.Messages...)
	if u.Cursor != nil {
		out.Cursor = *u.Cursor
	}
	if u.Score != nil {
		out.Score = *u.Score
	}
	out.Pending = u.Decision
	return out
}

// Clone returns a deep copy so merges never alias the caller's slice.
func (s State) Clone() State {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// AppendUser returns the state with one inbound user utterance appended.
func (s State) AppendUser(text string) State {
	return s.Merge(Update{Messages: []Message{{Role: RoleUser, Content: text}}})
}

// LastAssistantText returns the most recent assistant message, or "".
func (s State) LastAssistantText() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Content
		}
	}
	return ""
}

func intRef(v int) *int { return &v }
