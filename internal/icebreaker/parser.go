// Package icebreaker generates structured mini-games from conversation
// context: balance-game questions, a four-choice quiz, and psychology-test
// questions and results. All variants share one layout parser; a generation
// either yields every expected field or fails as a whole.
package icebreaker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParse reports model output that did not match the expected layout.
// Callers decide whether to retry; the parser never substitutes partial
// results.
var ErrParse = errors.New("icebreaker: model output did not match the expected layout")

// FieldSpec is one labeled field inside a block. Labels are accepted
// alternatives for the same field (e.g. "OPTION_A", "선택A", "A").
type FieldSpec struct {
	Labels []string
	MaxLen int // rune cap on the value, 0 means uncapped
}

// Spec describes the layout one generator variant expects: Blocks repeated
// blocks, each opened by the first field's label and carrying every field in
// order.
type Spec struct {
	Name   string
	Blocks int
	Fields []FieldSpec

	blockStart *regexp.Regexp
	fields     []*regexp.Regexp
}

// Compile builds the spec's matchers. Field values run until the next
// field's label or the end of the block, so labels may be followed by
// multi-line content.
func (s *Spec) Compile() error {
	if s.Blocks <= 0 || len(s.Fields) == 0 {
		return fmt.Errorf("icebreaker: spec %s needs blocks and fields", s.Name)
	}

	start, err := regexp.Compile(`(?mi)^\s*` + labelAlternation(s.Fields[0].Labels) + `\s*[:：]`)
	if err != nil {
		return fmt.Errorf("icebreaker: spec %s block matcher: %w", s.Name, err)
	}
	s.blockStart = start

	s.fields = make([]*regexp.Regexp, len(s.Fields))
	for i, f := range s.Fields {
		terminator := `\z`
		if i+1 < len(s.Fields) {
			terminator = `(?:` + labelAlternation(s.Fields[i+1].Labels) + `\s*[:：]|\z)`
		}
		expr := `(?is)` + labelAlternation(f.Labels) + `\s*[:：]\s*(.+?)\s*` + terminator
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("icebreaker: spec %s field %d: %w", s.Name, i, err)
		}
		s.fields[i] = re
	}
	return nil
}

func labelAlternation(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return `(?:` + strings.Join(quoted, `|`) + `)`
}

// Parse extracts exactly Blocks tuples of len(Fields) values from raw model
// output. It tries regex block segmentation first, then a line-walk over
// loosely formatted output. Anything short of a full extraction is ErrParse.
func (s *Spec) Parse(raw string) ([][]string, error) {
	if s.blockStart == nil {
		if err := s.Compile(); err != nil {
			return nil, err
		}
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrParse
	}

	if result := s.parseBlocks(text); result != nil {
		return result, nil
	}
	if result := s.parseLines(text); result != nil {
		return result, nil
	}
	return nil, ErrParse
}

func (s *Spec) parseBlocks(text string) [][]string {
	var blocks []string
	if s.Blocks == 1 {
		blocks = []string{text}
	} else {
		starts := s.blockStart.FindAllStringIndex(text, -1)
		if len(starts) < s.Blocks {
			// Loosely formatted output sometimes separates blocks only
			// with blank lines.
			blocks = regexp.MustCompile(`\n\n+`).Split(text, -1)
		} else {
			for i, loc := range starts {
				end := len(text)
				if i+1 < len(starts) {
					end = starts[i+1][0]
				}
				blocks = append(blocks, text[loc[0]:end])
			}
		}
	}

	result := make([][]string, 0, s.Blocks)
	for _, block := range blocks {
		values := s.parseBlock(block)
		if values == nil {
			continue
		}
		result = append(result, values)
		if len(result) == s.Blocks {
			return result
		}
	}
	return nil
}

func (s *Spec) parseBlock(block string) []string {
	values := make([]string, len(s.fields))
	for i, re := range s.fields {
		m := re.FindStringSubmatch(block)
		if m == nil {
			return nil
		}
		value := strings.TrimSpace(m[1])
		if value == "" {
			return nil
		}
		values[i] = capRunes(value, s.Fields[i].MaxLen)
	}
	return values
}

// parseLines walks non-empty lines and consumes a run of len(Fields) lines
// wherever a plausible block-opening line appears. "label: value" lines are
// stripped to the value; bare lines are taken whole.
func (s *Spec) parseLines(text string) [][]string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	result := make([][]string, 0, s.Blocks)
	for i := 0; i < len(lines) && len(result) < s.Blocks; {
		if !s.looksLikeBlockStart(lines[i]) || i+len(s.Fields) > len(lines) {
			i++
			continue
		}
		values := make([]string, len(s.Fields))
		ok := true
		for j := range s.Fields {
			value := stripLabel(lines[i+j])
			if value == "" {
				ok = false
				break
			}
			values[j] = capRunes(value, s.Fields[j].MaxLen)
		}
		if !ok {
			i++
			continue
		}
		result = append(result, values)
		i += len(s.Fields)
	}

	if len(result) != s.Blocks {
		return nil
	}
	return result
}

func (s *Spec) looksLikeBlockStart(line string) bool {
	if s.blockStart.MatchString(line) {
		return true
	}
	return strings.HasPrefix(line, "Q") ||
		strings.Contains(line, "질문") ||
		strings.Contains(line, "?") ||
		strings.Contains(line, "vs")
}

func stripLabel(line string) string {
	for _, sep := range []string{":", "："} {
		if idx := strings.Index(line, sep); idx >= 0 {
			return strings.TrimSpace(line[idx+len(sep):])
		}
	}
	return strings.TrimSpace(line)
}

func capRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
