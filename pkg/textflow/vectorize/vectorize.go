// Package vectorize builds document-term matrices from a tokenized corpus
// and a vocabulary. Every function is a pure function of its inputs.
package vectorize

import (
	"fmt"
	"math"
	"strings"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
	"github.com/cognicore/textflow/pkg/textflow/vocab"
)

// Matrix is a rectangular document-term table. Row i belongs to corpus
// document i; column j to Terms[j].
type Matrix struct {
	Terms []string    `json:"terms"`
	Rows  [][]float64 `json:"rows"`
}

// Dims returns the number of rows and columns.
func (m Matrix) Dims() (rows, cols int) {
	return len(m.Rows), len(m.Terms)
}

// Column returns the values of one term across all documents.
func (m Matrix) Column(j int) []float64 {
	out := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = row[j]
	}
	return out
}

// Mode selects a vectorization scheme.
type Mode int

const (
	ModeOneHot Mode = iota
	ModeBagOfWords
	ModeNGram
	ModeTFIDF
)

var modeNames = [...]string{"one-hot", "bow", "ngram", "tfidf"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode accepts the canonical mode names and common spellings.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one-hot", "onehot", "one_hot":
		return ModeOneHot, nil
	case "bow", "bag-of-words", "bag_of_words", "count":
		return ModeBagOfWords, nil
	case "ngram", "n-gram", "ngrams", "n_gram":
		return ModeNGram, nil
	case "tfidf", "tf-idf", "tf_idf":
		return ModeTFIDF, nil
	}
	return 0, fmt.Errorf("vectorize mode %q: %w", s, internalerr.ErrInvalidInput)
}

// Vectorize dispatches to the function for mode.
func Vectorize(mode Mode, corpus [][]string, v *vocab.Vocabulary) (Matrix, error) {
	switch mode {
	case ModeOneHot:
		return OneHot(corpus, v)
	case ModeBagOfWords:
		return BagOfWords(corpus, v)
	case ModeNGram:
		return NGramCounts(corpus, v)
	case ModeTFIDF:
		return TFIDF(corpus, v)
	}
	return Matrix{}, fmt.Errorf("vectorize mode %d: %w", int(mode), internalerr.ErrInvalidInput)
}

// OneHot marks term presence: 1 when the term occurs at least once in
// the document, else 0.
func OneHot(corpus [][]string, v *vocab.Vocabulary) (Matrix, error) {
	m, err := countMatrix(corpus, v)
	if err != nil {
		return Matrix{}, err
	}
	for _, row := range m.Rows {
		for j, c := range row {
			if c > 0 {
				row[j] = 1
			}
		}
	}
	return m, nil
}

// BagOfWords holds raw occurrence counts.
func BagOfWords(corpus [][]string, v *vocab.Vocabulary) (Matrix, error) {
	return countMatrix(corpus, v)
}

// NGramCounts holds n-gram occurrence counts. It is BagOfWords over an
// n-gram vocabulary; documents are windowed with the vocabulary's N.
func NGramCounts(corpus [][]string, v *vocab.Vocabulary) (Matrix, error) {
	return countMatrix(corpus, v)
}

// TF returns term frequencies: count(term, doc) / number of tokens in doc.
// For n-gram vocabularies the denominator is still the token count. Empty
// documents get an all-zero row.
func TF(corpus [][]string, v *vocab.Vocabulary) (Matrix, error) {
	m, err := countMatrix(corpus, v)
	if err != nil {
		return Matrix{}, err
	}
	for i, doc := range corpus {
		total := len(doc)
		if total == 0 {
			continue
		}
		for j := range m.Rows[i] {
			m.Rows[i][j] /= float64(total)
		}
	}
	return m, nil
}

// DocumentFrequency returns, per term, the number of documents containing it.
func DocumentFrequency(corpus [][]string, v *vocab.Vocabulary) ([]int, error) {
	m, err := countMatrix(corpus, v)
	if err != nil {
		return nil, err
	}
	df := make([]int, len(m.Terms))
	for _, row := range m.Rows {
		for j, c := range row {
			if c > 0 {
				df[j]++
			}
		}
	}
	return df, nil
}

// IDF returns the smoothed inverse document frequency of every term:
// ln((N+1)/(df+1)) + 1. It is always > 0.
func IDF(corpus [][]string, v *vocab.Vocabulary) ([]float64, error) {
	df, err := DocumentFrequency(corpus, v)
	if err != nil {
		return nil, err
	}
	n := float64(len(corpus))
	idf := make([]float64, len(df))
	for j, d := range df {
		idf[j] = math.Log((n+1)/(float64(d)+1)) + 1
	}
	return idf, nil
}

// TFIDF returns tf[doc][term] * idf[term].
func TFIDF(corpus [][]string, v *vocab.Vocabulary) (Matrix, error) {
	tf, err := TF(corpus, v)
	if err != nil {
		return Matrix{}, err
	}
	idf, err := IDF(corpus, v)
	if err != nil {
		return Matrix{}, err
	}
	for _, row := range tf.Rows {
		for j := range row {
			row[j] *= idf[j]
		}
	}
	return tf, nil
}

func countMatrix(corpus [][]string, v *vocab.Vocabulary) (Matrix, error) {
	if v == nil {
		return Matrix{}, fmt.Errorf("nil vocabulary: %w", internalerr.ErrInvalidInput)
	}
	if !v.BoundTo(corpus) {
		return Matrix{}, fmt.Errorf("vocabulary built from corpus %.12s: %w", v.CorpusHash, internalerr.ErrVocabularyMismatch)
	}

	terms := make([]string, len(v.Terms))
	copy(terms, v.Terms)
	rows := make([][]float64, len(corpus))
	for i, doc := range corpus {
		row := make([]float64, len(terms))
		for _, term := range vocab.NGrams(doc, v.N) {
			if j := v.Index(term); j >= 0 {
				row[j]++
			}
		}
		rows[i] = row
	}
	return Matrix{Terms: terms, Rows: rows}, nil
}
