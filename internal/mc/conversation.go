// Package mc drives the live MC flow: the client ships its conversation
// history as bytes, the backend builds an MC instruction from it and
// produces the MC's next line, optionally kicking off a balance game via a
// model tool call.
package mc

import (
	"encoding/json"
	"strings"
)

// Entry is one conversation line. Role is "user" for a participant and "ai"
// for anything the MC side said.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ParseConversation decodes client history bytes. Accepted shapes:
//
//   - JSON array of {"role": ..., "content"|"text": ...} objects
//   - JSON array of [role, content] pairs
//   - {"messages": [[role, content], ...]}
//   - anything else: the whole text becomes a single user entry
//
// Roles other than user/human collapse to "ai". Undecodable or empty input
// yields an empty conversation, never an error.
func ParseConversation(raw []byte) []Entry {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil
	}

	if conv := parseJSONConversation(text); len(conv) > 0 {
		return conv
	}
	return []Entry{{Role: "user", Content: text}}
}

func parseJSONConversation(text string) []Entry {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return parseItems(items)
	}

	var wrapped struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil {
		return parseItems(wrapped.Messages)
	}
	return nil
}

func parseItems(items []json.RawMessage) []Entry {
	var conv []Entry
	for _, item := range items {
		var obj struct {
			Role    string `json:"role"`
			Content string `json:"content"`
			Text    string `json:"text"`
		}
		if err := json.Unmarshal(item, &obj); err == nil && (obj.Content != "" || obj.Text != "") {
			content := obj.Content
			if content == "" {
				content = obj.Text
			}
			conv = append(conv, Entry{Role: normalizeRole(obj.Role), Content: content})
			continue
		}

		var pair []string
		if err := json.Unmarshal(item, &pair); err == nil && len(pair) >= 2 {
			conv = append(conv, Entry{Role: normalizeRole(pair[0]), Content: pair[1]})
		}
	}
	return conv
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user", "human":
		return "user"
	default:
		return "ai"
	}
}
