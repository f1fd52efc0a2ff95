package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// BatchProvider embeds several keys in one call. Results follow key order;
// a nil entry marks a key without a vector.
type BatchProvider interface {
	Provider
	EmbedBatch(ctx context.Context, keys []string) ([][]float64, error)
}

// TextVectors embeds every text as a single key, for document-level models.
// A BatchProvider gets one request for the whole set. Blank texts and texts
// the provider does not know map to the zero vector.
func TextVectors(ctx context.Context, p Provider, texts []string) ([][]float64, error) {
	dim := p.Dimension()
	out := make([][]float64, len(texts))
	var (
		keys []string
		idx  []int
	)
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			out[i] = make([]float64, dim)
			continue
		}
		keys = append(keys, text)
		idx = append(idx, i)
	}

	vecs := make([][]float64, len(keys))
	if bp, ok := p.(BatchProvider); ok && len(keys) > 0 {
		got, err := bp.EmbedBatch(ctx, keys)
		if err != nil {
			return nil, err
		}
		if len(got) != len(keys) {
			return nil, fmt.Errorf("embed batch: %d vectors for %d texts: %w", len(got), len(keys), internalerr.ErrInvalidInput)
		}
		vecs = got
	} else {
		for k, key := range keys {
			vec, err := p.Embed(ctx, key)
			if errors.Is(err, internalerr.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("document %d: %w", idx[k], err)
			}
			vecs[k] = vec
		}
	}

	for k, vec := range vecs {
		i := idx[k]
		if vec == nil {
			out[i] = make([]float64, dim)
			continue
		}
		if len(vec) != dim {
			return nil, fmt.Errorf("document %d: dimension %d, want %d: %w", i, len(vec), dim, internalerr.ErrInvalidInput)
		}
		out[i] = vec
	}
	return out, nil
}
