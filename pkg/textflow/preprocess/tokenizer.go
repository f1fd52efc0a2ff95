package preprocess

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"

	"github.com/cognicore/textflow/pkg/textflow/lexicon"
	"github.com/cognicore/textflow/pkg/textflow/stoplist"
)

// Stemmer reduces a token to its stem. Implementations must be deterministic.
type Stemmer interface {
	Stem(token string) string
}

// Lemmatizer reduces a token to its lemma. Implementations must be deterministic.
type Lemmatizer interface {
	Lemmatize(token string) string
}

// SnowballStemmer is the Porter2 English stemmer.
type SnowballStemmer struct{}

// Stem implements Stemmer.
func (SnowballStemmer) Stem(token string) string {
	return english.Stem(token, true)
}

// Tokenizer handles text cleaning, tokenization and normalization
type Tokenizer struct {
	stops      *stoplist.Manager
	lemmatizer Lemmatizer
	stemmer    Stemmer
}

// NewTokenizer creates a tokenizer with the given stopword list, the
// built-in English lemma lexicon and the Snowball stemmer.
func NewTokenizer(stopwords []string) *Tokenizer {
	return &Tokenizer{
		stops:      stoplist.NewManager(stopwords),
		lemmatizer: lexicon.English(),
		stemmer:    SnowballStemmer{},
	}
}

// NewEnglishTokenizer creates a tokenizer using the NLTK English stopwords.
func NewEnglishTokenizer() *Tokenizer {
	return NewTokenizer(stoplist.English())
}

// SetLemmatizer replaces the lemmatizer.
func (t *Tokenizer) SetLemmatizer(l Lemmatizer) {
	t.lemmatizer = l
}

// SetStemmer replaces the stemmer.
func (t *Tokenizer) SetStemmer(s Stemmer) {
	t.stemmer = s
}

// Stoplist exposes the stopword manager.
func (t *Tokenizer) Stoplist() *stoplist.Manager {
	return t.stops
}

// AddStopword adds a word to the stopword list
func (t *Tokenizer) AddStopword(word string) {
	t.stops.Add(word, stoplist.Reason{})
}

// RemoveStopword removes a word from the stopword list
func (t *Tokenizer) RemoveStopword(word string) {
	t.stops.Remove(word)
}

// Clean applies the character-level steps of opts to text, in order:
// lowercase, strip punctuation and symbols, strip digits, collapse
// whitespace. Word-level steps are ignored.
func (t *Tokenizer) Clean(text string, opts Options) string {
	return clean(text, opts)
}

// Tokenize turns raw text into a normalized token sequence. Steps run in a
// fixed order: lowercase → strip punctuation/symbols → strip numbers →
// collapse whitespace → split on whitespace → stopword filter → lemmatize →
// stem. Empty input yields an empty, non-nil slice.
func (t *Tokenizer) Tokenize(text string, opts Options) []string {
	fields := strings.Fields(clean(text, opts))
	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if word := t.processToken(tok, opts); word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// TokenizeAll tokenizes every text of a corpus with the same options.
func (t *Tokenizer) TokenizeAll(texts []string, opts Options) [][]string {
	corpus := make([][]string, len(texts))
	for i, text := range texts {
		corpus[i] = t.Tokenize(text, opts)
	}
	return corpus
}

// processToken applies stopword filtering, lemmatization and stemming.
func (t *Tokenizer) processToken(token string, opts Options) string {
	if opts.RemoveStopwords && t.stops != nil && t.stops.IsStop(token) {
		return ""
	}
	if opts.Lemmatize && t.lemmatizer != nil {
		token = t.lemmatizer.Lemmatize(token)
	}
	if opts.Stem && t.stemmer != nil {
		token = t.stemmer.Stem(token)
	}
	return token
}

func clean(text string, opts Options) string {
	if opts.Lowercase {
		text = strings.ToLower(text)
	}
	if opts.RemovePunctuation || opts.RemoveNumbers {
		text = strings.Map(func(r rune) rune {
			if opts.RemovePunctuation && (unicode.IsPunct(r) || unicode.IsSymbol(r)) {
				return -1
			}
			if opts.RemoveNumbers && unicode.IsDigit(r) {
				return -1
			}
			return r
		}, text)
	}
	if opts.RemoveExtraWhitespace {
		text = strings.Join(strings.Fields(text), " ")
	}
	return text
}
