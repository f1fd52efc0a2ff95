// Package embed turns tokens and documents into dense vectors and compares
// them by cosine similarity.
package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// Provider maps a key (a token, or a whole document for document-level
// models) to a fixed-dimension vector. Embed returns an error wrapping
// internalerr.ErrNotFound when the key has no vector.
type Provider interface {
	Dimension() int
	Embed(ctx context.Context, key string) ([]float64, error)
}

// DocumentVector averages the vectors of every embeddable token. Tokens the
// provider does not know are skipped; a document with none yields the zero
// vector.
func DocumentVector(ctx context.Context, p Provider, tokens []string) ([]float64, error) {
	sum := make([]float64, p.Dimension())
	var n int
	for _, tok := range tokens {
		vec, err := p.Embed(ctx, tok)
		if errors.Is(err, internalerr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("embed %q: %w", tok, err)
		}
		if len(vec) != len(sum) {
			return nil, fmt.Errorf("embed %q: dimension %d, want %d: %w", tok, len(vec), len(sum), internalerr.ErrInvalidInput)
		}
		for i, x := range vec {
			sum[i] += x
		}
		n++
	}
	if n > 0 {
		for i := range sum {
			sum[i] /= float64(n)
		}
	}
	return sum, nil
}

// DocumentVectors embeds every document of a tokenized corpus.
func DocumentVectors(ctx context.Context, p Provider, corpus [][]string) ([][]float64, error) {
	out := make([][]float64, len(corpus))
	for i, doc := range corpus {
		vec, err := DocumentVector(ctx, p, doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b, clamped to [-1, 1].
// It is 0 when either norm is 0.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine of %d and %d dimensional vectors: %w", len(a), len(b), internalerr.ErrInvalidInput)
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, sim)), nil
}

// Item is a named vector.
type Item struct {
	Key    string    `json:"key"`
	Vector []float64 `json:"vector"`
}

// Pair is the similarity of two items, identified by their position in the
// input.
type Pair struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	I          int     `json:"i"`
	J          int     `json:"j"`
	Similarity float64 `json:"similarity"`
}

// RankPairs scores every unordered pair (i < j) and sorts them by descending
// similarity. Equal scores keep generation order: (0,1), (0,2), ..., (1,2).
func RankPairs(items []Item) ([]Pair, error) {
	var pairs []Pair
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			sim, err := Cosine(items[i].Vector, items[j].Vector)
			if err != nil {
				return nil, fmt.Errorf("pair %s/%s: %w", items[i].Key, items[j].Key, err)
			}
			pairs = append(pairs, Pair{A: items[i].Key, B: items[j].Key, I: i, J: j, Similarity: sim})
		}
	}
	sort.SliceStable(pairs, func(x, y int) bool {
		return pairs[x].Similarity > pairs[y].Similarity
	})
	return pairs, nil
}

// Match is one result of MostSimilar.
type Match struct {
	Key        string  `json:"key"`
	Index      int     `json:"index"`
	Similarity float64 `json:"similarity"`
}

// MostSimilar returns the k items closest to query, best first. k <= 0
// returns every item.
func MostSimilar(query []float64, items []Item, k int) ([]Match, error) {
	matches := make([]Match, 0, len(items))
	for i, it := range items {
		sim, err := Cosine(query, it.Vector)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", it.Key, err)
		}
		matches = append(matches, Match{Key: it.Key, Index: i, Similarity: sim})
	}
	sort.SliceStable(matches, func(x, y int) bool {
		return matches[x].Similarity > matches[y].Similarity
	})
	if k > 0 && k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}
