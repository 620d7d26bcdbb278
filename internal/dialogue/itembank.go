package dialogue

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Item is one quiz entry of the fixed bank.
type Item struct {
	Prompt string `yaml:"prompt" json:"prompt"`
	Answer string `yaml:"answer" json:"answer"`
}

// ItemBank is an ordered, immutable sequence of quiz items. It is loaded
// once at process start and safely shared read-only across all sessions.
type ItemBank struct {
	items []Item
}

func NewItemBank(items []Item) *ItemBank {
	copied := make([]Item, len(items))
	copy(copied, items)
	return &ItemBank{items: copied}
}

// DefaultItemBank is the compiled-in quiz used when no bank file is
// configured.
func DefaultItemBank() *ItemBank {
	return NewItemBank([]Item{
		{Prompt: "대한민국의 수도는 어디인가요?", Answer: "서울"},
		{Prompt: "세상에서 가장 높은 산은 무엇인가요?", Answer: "에베레스트 산"},
		{Prompt: "1년은 몇 개월인가요?", Answer: "12개월"},
		{Prompt: "무지개는 몇 가지 색인가요?", Answer: "7가지"},
		{Prompt: "바다에서 가장 큰 동물은 무엇인가요?", Answer: "흰수염고래"},
	})
}

type itemBankFile struct {
	Items []Item `yaml:"items"`
}

// LoadItemBank reads a YAML bank file of the form:
//
//	items:
//	  - prompt: 대한민국의 수도는 어디인가요?
//	    answer: 서울
func LoadItemBank(path string) (*ItemBank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item bank: %w", err)
	}

	var file itemBankFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse item bank: %w", err)
	}
	if len(file.Items) == 0 {
		return nil, fmt.Errorf("item bank %s contains no items", path)
	}
	for i, item := range file.Items {
		if item.Prompt == "" || item.Answer == "" {
			return nil, fmt.Errorf("item bank %s: item %d is missing prompt or answer", path, i)
		}
	}
	return NewItemBank(file.Items), nil
}

func (b *ItemBank) Len() int { return len(b.items) }

func (b *ItemBank) Item(i int) Item { return b.items[i] }
