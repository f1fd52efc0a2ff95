// Package vocab derives deterministic, sorted term indexes from tokenized
// corpora. A term's position in Terms is its column in every matrix built
// from the vocabulary.
package vocab

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Vocabulary is an ordered, deduplicated term set.
type Vocabulary struct {
	Terms []string `json:"terms"`
	// N is the n-gram size the terms were built with.
	N int `json:"n"`
	// CorpusHash identifies the corpus the vocabulary was built from. Empty
	// for vocabularies assembled by hand with FromTerms.
	CorpusHash string `json:"corpus_hash,omitempty"`

	index map[string]int
}

// Build derives the vocabulary of a tokenized corpus. For n > 1 terms are
// contiguous n-grams joined by a single space; documents shorter than n
// contribute nothing. n < 1 is treated as 1. An empty corpus yields an
// empty vocabulary.
func Build(corpus [][]string, n int) *Vocabulary {
	if n < 1 {
		n = 1
	}
	set := make(map[string]struct{})
	for _, doc := range corpus {
		for _, term := range NGrams(doc, n) {
			set[term] = struct{}{}
		}
	}
	terms := make([]string, 0, len(set))
	for term := range set {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vocabulary{Terms: terms, N: n, CorpusHash: HashCorpus(corpus)}
	v.reindex()
	return v
}

// FromTerms builds a vocabulary from an explicit term list. Terms are
// deduplicated and sorted. The result is not bound to any corpus.
func FromTerms(terms []string, n int) *Vocabulary {
	if n < 1 {
		n = 1
	}
	set := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := set[t]; ok {
			continue
		}
		set[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	v := &Vocabulary{Terms: out, N: n}
	v.reindex()
	return v
}

// NGrams slides a window of size n over tokens and returns each window
// joined by a single space. For n == 1 it returns a copy of tokens.
func NGrams(tokens []string, n int) []string {
	if n < 1 {
		n = 1
	}
	if len(tokens) < n {
		return []string{}
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		if n == 1 {
			out = append(out, tokens[i])
			continue
		}
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	return len(v.Terms)
}

// Index returns the column of term, or -1 when absent.
func (v *Vocabulary) Index(term string) int {
	if v.index != nil {
		if i, ok := v.index[term]; ok {
			return i
		}
		return -1
	}
	i := sort.SearchStrings(v.Terms, term)
	if i < len(v.Terms) && v.Terms[i] == term {
		return i
	}
	return -1
}

// UnmarshalJSON decodes a vocabulary and restores the sorted, deduplicated
// term invariant.
func (v *Vocabulary) UnmarshalJSON(b []byte) error {
	type plain Vocabulary
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	rebuilt := FromTerms(p.Terms, p.N)
	rebuilt.CorpusHash = p.CorpusHash
	*v = *rebuilt
	return nil
}

// Contains reports whether term is in the vocabulary.
func (v *Vocabulary) Contains(term string) bool {
	return v.Index(term) >= 0
}

// BoundTo reports whether the vocabulary may be used with corpus: unbound
// vocabularies accept any corpus, bound ones only the corpus they were
// built from.
func (v *Vocabulary) BoundTo(corpus [][]string) bool {
	return v.CorpusHash == "" || v.CorpusHash == HashCorpus(corpus)
}

func (v *Vocabulary) reindex() {
	v.index = make(map[string]int, len(v.Terms))
	for i, t := range v.Terms {
		v.index[t] = i
	}
}

// HashCorpus returns a stable digest of a tokenized corpus. Document and
// token boundaries are length-prefixed so ["a b"] and ["a","b"] differ.
func HashCorpus(corpus [][]string) string {
	h := sha256.New()
	var buf [binary.MaxVarintLen64]byte
	writeLen := func(n int) {
		k := binary.PutUvarint(buf[:], uint64(n))
		h.Write(buf[:k])
	}
	writeLen(len(corpus))
	for _, doc := range corpus {
		writeLen(len(doc))
		for _, tok := range doc {
			writeLen(len(tok))
			h.Write([]byte(tok))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
