package embed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// Static is an in-memory token embedding table, typically loaded from a
// pretrained GloVe or word2vec text file.
type Static struct {
	dim     int
	vectors map[string][]float64
}

// NewStatic creates an empty table of the given dimension.
func NewStatic(dim int) *Static {
	return &Static{dim: dim, vectors: make(map[string][]float64)}
}

// Dimension implements Provider.
func (s *Static) Dimension() int { return s.dim }

// Len returns the number of known keys.
func (s *Static) Len() int { return len(s.vectors) }

// Set stores a vector. It is not safe to call concurrently with Embed.
func (s *Static) Set(key string, vec []float64) error {
	if len(vec) != s.dim {
		return fmt.Errorf("vector for %q has dimension %d, want %d: %w", key, len(vec), s.dim, internalerr.ErrInvalidInput)
	}
	cp := make([]float64, len(vec))
	copy(cp, vec)
	s.vectors[key] = cp
	return nil
}

// Embed implements Provider. Lookup is exact first, then lowercased.
func (s *Static) Embed(_ context.Context, key string) ([]float64, error) {
	vec, ok := s.vectors[key]
	if !ok {
		vec, ok = s.vectors[strings.ToLower(key)]
	}
	if !ok {
		return nil, fmt.Errorf("token %q: %w", key, internalerr.ErrNotFound)
	}
	out := make([]float64, len(vec))
	copy(out, vec)
	return out, nil
}

// LoadTextFile reads a vector file from disk. See LoadText.
func LoadTextFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadText(f)
}

// LoadText parses the "token v1 v2 ... vn" text format. A leading word2vec
// header line ("count dim") is skipped. The dimension is taken from the
// first vector; every following line must match it.
func LoadText(r io.Reader) (*Static, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var s *Static
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && len(fields) == 2 && isInt(fields[0]) && isInt(fields[1]) {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: no vector components: %w", line, internalerr.ErrInvalidInput)
		}
		vec := make([]float64, len(fields)-1)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v: %w", line, err, internalerr.ErrInvalidInput)
			}
			vec[i] = x
		}
		if s == nil {
			s = NewStatic(len(vec))
		}
		if err := s.Set(fields[0], vec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("no vectors: %w", internalerr.ErrInvalidInput)
	}
	return s, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
