package lexicon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLexiconAddGroup(t *testing.T) {
	lex := New()
	lex.AddGroup("Mouse", []string{"MICE", "mouse", ""})

	if got := lex.Normalize("mice"); got != "mouse" {
		t.Errorf("Normalize('mice') = %q, want 'mouse'", got)
	}
	if got := lex.Normalize("Mice"); got != "mouse" {
		t.Errorf("Normalize should be case-insensitive, got %q", got)
	}
	if got := lex.Normalize("unknown"); got != "unknown" {
		t.Errorf("Normalize('unknown') = %q, want 'unknown'", got)
	}

	variants := lex.Variants("mice")
	if len(variants) != 2 || variants[0] != "mouse" {
		t.Errorf("Variants('mice') = %v, want [mouse mice]", variants)
	}
}

func TestLexiconReplaceGroup(t *testing.T) {
	lex := New()
	lex.AddGroup("go", []string{"went"})
	lex.AddGroup("go", []string{"gone"})

	if lex.Has("went") {
		t.Error("old form should be removed when the group is replaced")
	}
	if got := lex.Normalize("gone"); got != "go" {
		t.Errorf("Normalize('gone') = %q, want 'go'", got)
	}
}

func TestLemmatizeRules(t *testing.T) {
	lex := New()
	cases := map[string]string{
		"cats":     "cat",
		"boxes":    "box",
		"churches": "church",
		"dishes":   "dish",
		"stories":  "story",
		"buses":    "bus",
		"class":    "class",
		"status":   "status",
		"analysis": "analysis",
		"is":       "is",
		"as":       "as",
		"firemen":  "fireman",
		"Dogs":     "dog",
		"running":  "running",
	}
	for in, want := range cases {
		if got := lex.Lemmatize(in); got != want {
			t.Errorf("Lemmatize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnglishIrregulars(t *testing.T) {
	lex := English()
	cases := map[string]string{
		"children": "child",
		"went":     "go",
		"was":      "be",
		"mice":     "mouse",
		"analyses": "analysis",
		"tables":   "table",
	}
	for in, want := range cases {
		if got := lex.Lemmatize(in); got != want {
			t.Errorf("Lemmatize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLemmatizeDeterministic(t *testing.T) {
	lex := English()
	for i := 0; i < 10; i++ {
		if lex.Lemmatize("geese") != "goose" {
			t.Fatal("Lemmatize must be deterministic")
		}
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lemmas.yaml")
	content := `lemmas:
  - canonical: octopus
    variants: [octopi, octopuses]
  - canonical: ""
    variants: [ignored]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	lex, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	if got := lex.Lemmatize("octopi"); got != "octopus" {
		t.Errorf("Lemmatize('octopi') = %q, want 'octopus'", got)
	}
	if lex.Has("ignored") {
		t.Error("entries without a canonical form should be skipped")
	}
	if lemmas := lex.Lemmas(); len(lemmas) != 1 {
		t.Errorf("Lemmas() = %v, want one lemma", lemmas)
	}
}

func TestLoadFromYAMLMissingFile(t *testing.T) {
	if _, err := LoadFromYAML("/nonexistent/lemmas.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMerge(t *testing.T) {
	base := English()
	extra := New()
	extra.AddGroup("octopus", []string{"octopi"})
	base.Merge(extra)
	base.Merge(nil)

	if base.Lemmatize("octopi") != "octopus" || base.Lemmatize("children") != "child" {
		t.Error("Merge should keep existing groups and add new ones")
	}
}
