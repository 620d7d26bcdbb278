package dialogue

import "testing"

func TestMergeAppendsMessages(t *testing.T) {
	s := State{Messages: []Message{{Role: RoleUser, Content: "안녕"}}}

	merged := s.Merge(Update{
		Messages: []Message{{Role: RoleAssistant, Content: "반가워요"}},
		Cursor:   intRef(1),
		Score:    intRef(1),
	})

	if len(merged.Messages) != 2 {
		t.Fatalf("messages len = %d, want 2", len(merged.Messages))
	}
	if merged.Messages[0].Content != "안녕" || merged.Messages[1].Content != "반가워요" {
		t.Fatalf("history order changed: %+v", merged.Messages)
	}
	if merged.Cursor != 1 || merged.Score != 1 {
		t.Fatalf("scalars not overwritten: cursor=%d score=%d", merged.Cursor, merged.Score)
	}
	// Prior state is untouched.
	if len(s.Messages) != 1 || s.Cursor != 0 || s.Score != 0 {
		t.Fatalf("merge mutated the input state: %+v", s)
	}
}

func TestMergeWithoutScalarsKeepsThem(t *testing.T) {
	s := State{Cursor: 2, Score: 1}
	merged := s.Merge(Update{Messages: []Message{{Role: RoleAssistant, Content: "hi"}}})
	if merged.Cursor != 2 || merged.Score != 1 {
		t.Fatalf("unset scalars must carry over: cursor=%d score=%d", merged.Cursor, merged.Score)
	}
}

func TestMergeHistoryIsPrefixMonotonic(t *testing.T) {
	s := State{}
	var snapshots []State
	for _, text := range []string{"a", "b", "c"} {
		s = s.Merge(Update{Messages: []Message{{Role: RoleUser, Content: text}}})
		snapshots = append(snapshots, s)
	}

	for i := 1; i < len(snapshots); i++ {
		prev, cur := snapshots[i-1], snapshots[i]
		if len(prev.Messages) > len(cur.Messages) {
			t.Fatalf("history shrank between turns %d and %d", i-1, i)
		}
		for j := range prev.Messages {
			if prev.Messages[j] != cur.Messages[j] {
				t.Fatalf("turn %d is not a prefix of turn %d at index %d", i-1, i, j)
			}
		}
	}
}

func TestCloneDoesNotAliasMessages(t *testing.T) {
	s := State{Messages: []Message{{Role: RoleUser, Content: "원본"}}}
	c := s.Clone()
	c.Messages[0].Content = "변경"
	if s.Messages[0].Content != "원본" {
		t.Fatalf("clone aliases the source slice")
	}
}

func TestLastAssistantText(t *testing.T) {
	s := State{Messages: []Message{
		{Role: RoleAssistant, Content: "첫 번째"},
		{Role: RoleUser, Content: "답"},
		{Role: RoleAssistant, Content: "두 번째"},
		{Role: RoleUser, Content: "또 답"},
	}}
	if got := s.LastAssistantText(); got != "두 번째" {
		t.Fatalf("LastAssistantText() = %q", got)
	}
	if got := (State{}).LastAssistantText(); got != "" {
		t.Fatalf("empty state should yield empty reply, got %q", got)
	}
}
