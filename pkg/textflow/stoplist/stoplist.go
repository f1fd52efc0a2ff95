package stoplist

import (
	"math"
	"sort"
	"strings"
)

// Manager holds a case-insensitive stopword list
type Manager struct {
	stops map[string]Reason
}

// Reason explains why a token is a stopword
type Reason struct {
	Builtin   bool    // came from the initial list
	HighDF    bool    // high document frequency in the corpus
	DFPercent float64 // share of documents containing the token
	IDF       float64 // smoothed inverse document frequency
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]Reason, len(initialStops))
	for _, s := range initialStops {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		stops[s] = Reason{Builtin: true}
	}
	return &Manager{stops: stops}
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[strings.ToLower(token)]
	return ok
}

// Add adds a token to the stoplist with a reason
func (m *Manager) Add(token string, reason Reason) {
	m.stops[strings.ToLower(token)] = reason
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// Why returns the reason a token was added.
func (m *Manager) Why(token string) (Reason, bool) {
	r, ok := m.stops[strings.ToLower(token)]
	return r, ok
}

// Len returns the number of stopwords.
func (m *Manager) Len() int {
	return len(m.stops)
}

// All returns all stopwords, sorted
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Stats holds corpus statistics for candidate evaluation
type Stats struct {
	Token     string
	DF        int64
	DFPercent float64
	IDF       float64
}

// StatsFromCorpus computes per-token document frequencies over a tokenized
// corpus. Results are sorted by token.
func StatsFromCorpus(corpus [][]string) []Stats {
	df := make(map[string]int64)
	for _, doc := range corpus {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			tok = strings.ToLower(tok)
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	n := float64(len(corpus))
	stats := make([]Stats, 0, len(df))
	for tok, count := range df {
		stats = append(stats, Stats{
			Token:     tok,
			DF:        count,
			DFPercent: 100 * float64(count) / n,
			IDF:       math.Log((n+1)/(float64(count)+1)) + 1,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Token < stats[j].Token })
	return stats
}

// Candidate represents a candidate stopword
type Candidate struct {
	Token  string
	Reason Reason
	Score  float64 // confidence score in [0,1]
}

// Thresholds defines criteria for stopword identification
type Thresholds struct {
	DFPercent float64 // e.g., 80% - appears in 80% of documents
	MinDocs   int64   // minimum absolute document frequency
}

// DefaultThresholds returns sensible default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DFPercent: 80.0,
		MinDocs:   5,
	}
}

// SuggestCandidates suggests tokens that should be stopwords, most
// confident first. Tokens already on the list are skipped.
func (m *Manager) SuggestCandidates(stats []Stats, thresholds Thresholds) []Candidate {
	if thresholds.DFPercent == 0 {
		thresholds.DFPercent = DefaultThresholds().DFPercent
	}

	var candidates []Candidate
	for _, s := range stats {
		if m.IsStop(s.Token) {
			continue // already a stopword
		}
		if s.DF < thresholds.MinDocs {
			continue
		}
		if s.DFPercent <= thresholds.DFPercent {
			continue
		}
		candidates = append(candidates, Candidate{
			Token: s.Token,
			Reason: Reason{
				HighDF:    true,
				DFPercent: s.DFPercent,
				IDF:       s.IDF,
			},
			Score: s.DFPercent / 100.0,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}
