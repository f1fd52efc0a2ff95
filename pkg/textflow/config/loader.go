package config

import (
	"fmt"

	"github.com/cognicore/textflow/pkg/textflow/lexicon"
	"github.com/cognicore/textflow/pkg/textflow/preprocess"
	"github.com/cognicore/textflow/pkg/textflow/stoplist"
)

// Loader loads the tokenizer resource files and constructs components
type Loader struct {
	StoplistPath string
	LexiconPath  string
}

// Components holds all loaded configuration components
type Components struct {
	Tokenizer *preprocess.Tokenizer
	Lexicon   *lexicon.Lexicon
}

// Load reads the configured files and returns initialized components.
// Without a stoplist file the built-in English list is used; a lexicon file
// extends the built-in English lemma table.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	stops := stoplist.English()
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		stops = sl.Terms
	}
	comp.Tokenizer = preprocess.NewTokenizer(stops)

	comp.Lexicon = lexicon.English()
	if l.LexiconPath != "" {
		lex, err := lexicon.LoadFromYAML(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon.Merge(lex)
	}
	comp.Tokenizer.SetLemmatizer(comp.Lexicon)

	return comp, nil
}
