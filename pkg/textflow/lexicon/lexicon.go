package lexicon

import (
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon maps inflected word forms to their lemma:
// - Irregular forms: children → child, went → go
// - Curated variants: analyses → analysis
//
// Lookups are case-insensitive. Forms missing from the lexicon fall back to
// deterministic suffix rules in Lemmatize.
type Lexicon struct {
	// lemma -> all forms (including the lemma itself)
	// Example: "child" -> ["child", "children"]
	groups map[string][]string

	// form -> lemma
	reverseIndex map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		groups:       make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// LoadFromYAML loads lemma groups from a YAML file.
//
// Expected format:
//
//	lemmas:
//	  - canonical: mouse
//	    variants: [mice]
//	  - canonical: be
//	    variants: [is, are, was, were, been]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a lexicon from YAML bytes in the LoadFromYAML format.
func Parse(data []byte) (*Lexicon, error) {
	var config struct {
		Lemmas []struct {
			Canonical string   `yaml:"canonical"`
			Variants  []string `yaml:"variants"`
		} `yaml:"lemmas"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	lex := New()
	for _, entry := range config.Lemmas {
		if strings.TrimSpace(entry.Canonical) == "" {
			continue
		}
		lex.AddGroup(entry.Canonical, entry.Variants)
	}
	return lex, nil
}

// AddGroup registers a lemma together with its inflected forms.
// The lemma is always the first entry of the group. Re-adding a lemma
// replaces its previous forms.
func (l *Lexicon) AddGroup(lemma string, forms []string) {
	lemma = strings.ToLower(strings.TrimSpace(lemma))

	if old, exists := l.groups[lemma]; exists {
		for _, f := range old {
			delete(l.reverseIndex, f)
		}
	}

	normalized := make([]string, 0, len(forms)+1)
	seen := map[string]bool{lemma: true}
	normalized = append(normalized, lemma)
	for _, f := range forms {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		normalized = append(normalized, f)
		seen[f] = true
	}

	l.groups[lemma] = normalized
	for _, f := range normalized {
		l.reverseIndex[f] = lemma
	}
}

// Normalize returns the lemma registered for a form, or the lowercased form
// itself when unknown.
func (l *Lexicon) Normalize(token string) string {
	token = strings.ToLower(token)
	if lemma, ok := l.reverseIndex[token]; ok {
		return lemma
	}
	return token
}

// Has reports whether the form is registered.
func (l *Lexicon) Has(token string) bool {
	_, ok := l.reverseIndex[strings.ToLower(token)]
	return ok
}

// Variants returns every form of the token's lemma, or just the token itself
// when unknown.
func (l *Lexicon) Variants(token string) []string {
	token = strings.ToLower(token)
	if forms, ok := l.groups[l.Normalize(token)]; ok {
		return forms
	}
	return []string{token}
}

// Lemmas returns all registered lemmas, sorted.
func (l *Lexicon) Lemmas() []string {
	out := make([]string, 0, len(l.groups))
	for lemma := range l.groups {
		out = append(out, lemma)
	}
	sort.Strings(out)
	return out
}

// Merge copies every group of other into l. Groups in other win.
func (l *Lexicon) Merge(other *Lexicon) {
	if other == nil {
		return
	}
	for lemma, forms := range other.groups {
		l.AddGroup(lemma, forms)
	}
}

// detachment rules for regular English noun plurals, longest suffix first
var nounRules = []struct {
	suffix, replacement string
}{
	{"shes", "sh"},
	{"ches", "ch"},
	{"ies", "y"},
	{"ses", "s"},
	{"xes", "x"},
	{"zes", "z"},
	{"men", "man"},
	{"s", ""},
}

// Lemmatize returns the lemma of a token: the lexicon entry when present,
// otherwise the result of the regular plural rules. It is deterministic and
// leaves words it cannot reduce unchanged (lowercased).
func (l *Lexicon) Lemmatize(token string) string {
	token = strings.ToLower(token)
	if lemma, ok := l.reverseIndex[token]; ok {
		return lemma
	}
	return applyNounRules(token)
}

func applyNounRules(word string) string {
	// "class", "status", "analysis" are already singular
	if strings.HasSuffix(word, "ss") || strings.HasSuffix(word, "us") || strings.HasSuffix(word, "is") {
		return word
	}
	for _, rule := range nounRules {
		if !strings.HasSuffix(word, rule.suffix) {
			continue
		}
		stem := word[:len(word)-len(rule.suffix)] + rule.replacement
		if len(stem) < 3 {
			return word
		}
		return stem
	}
	return word
}
