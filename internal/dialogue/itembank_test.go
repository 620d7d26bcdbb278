package dialogue

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultItemBank(t *testing.T) {
	bank := DefaultItemBank()
	if bank.Len() == 0 {
		t.Fatalf("default bank is empty")
	}
	first := bank.Item(0)
	if first.Prompt == "" || first.Answer == "" {
		t.Fatalf("first item incomplete: %+v", first)
	}
}

func TestLoadItemBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	doc := `items:
  - prompt: "대한민국의 수도는 어디인가요?"
    answer: "서울"
  - prompt: "1+1은?"
    answer: "2"
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	bank, err := LoadItemBank(path)
	if err != nil {
		t.Fatalf("LoadItemBank() error = %v", err)
	}
	if bank.Len() != 2 {
		t.Fatalf("len = %d, want 2", bank.Len())
	}
	if item := bank.Item(1); item.Answer != "2" {
		t.Fatalf("item[1].Answer = %q", item.Answer)
	}
}

func TestLoadItemBankRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadItemBank(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("missing file should fail")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("items: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadItemBank(empty); err == nil {
		t.Fatalf("empty item list should fail")
	}

	partial := filepath.Join(dir, "partial.yaml")
	if err := os.WriteFile(partial, []byte("items:\n  - prompt: \"질문만 있음\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadItemBank(partial); err == nil {
		t.Fatalf("item without answer should fail")
	}
}
