package textflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/embed"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
	"github.com/cognicore/textflow/pkg/textflow/preprocess"
	"github.com/cognicore/textflow/pkg/textflow/stage"
	"github.com/cognicore/textflow/pkg/textflow/vectorize"
	"github.com/cognicore/textflow/pkg/textflow/vocab"
)

// Representation metadata keys.
const (
	MetaTerms          = "terms"
	MetaN              = "n"
	MetaDimensionality = "dimensionality"
	MetaSamples        = "num_samples"
	MetaAvgMagnitude   = "avg_magnitude"
	MetaSparsity       = "sparsity"
	MetaOriginal       = "originalDataset"
	MetaEmbeddingLevel = "embedding_level"
)

// MethodEmbedding is the method recorded for embedding representations.
const MethodEmbedding = "embedding"

// RepresentOptions configures the representation stage.
type RepresentOptions struct {
	Mode vectorize.Mode

	// N is the n-gram window. Values below 1 mean 1, except for ModeNGram
	// where the default is 2.
	N int

	// Embeddings uses the configured embedding provider instead of Mode.
	Embeddings bool

	// DocumentLevel sends each record's whole text to the provider instead
	// of averaging token vectors.
	DocumentLevel bool

	// Tokenize is applied to record text before building the vocabulary.
	// Already preprocessed text only needs whitespace splitting, which the
	// zero value does.
	Tokenize preprocess.Options
}

func (o RepresentOptions) window() int {
	switch {
	case o.N >= 1:
		return o.N
	case o.Mode == vectorize.ModeNGram:
		return 2
	default:
		return 1
	}
}

// Vectorize tokenizes texts and encodes them with a vocabulary built from
// the same corpus.
func (e *Engine) Vectorize(texts []string, opts RepresentOptions) (vectorize.Matrix, *vocab.Vocabulary, error) {
	corpus := e.tokenizer.TokenizeAll(texts, opts.Tokenize)
	v := e.vocabulary(corpus, opts.window(), opts.Tokenize)
	m, err := vectorize.Vectorize(opts.Mode, corpus, v)
	if err != nil {
		return vectorize.Matrix{}, nil, err
	}
	return m, v, nil
}

// Compare encodes texts once per mode over one shared vocabulary. Matrices
// are computed in parallel, bounded by the engine's worker count, and
// returned in mode order.
func (e *Engine) Compare(ctx context.Context, texts []string, modes []vectorize.Mode, opts RepresentOptions) ([]vectorize.Matrix, error) {
	corpus := e.tokenizer.TokenizeAll(texts, opts.Tokenize)
	v := e.vocabulary(corpus, opts.window(), opts.Tokenize)
	jobs := make([]vectorize.Job, len(modes))
	for i, mode := range modes {
		jobs[i] = vectorize.Job{Mode: mode, Corpus: corpus, Vocab: v}
	}
	return vectorize.Batch(ctx, jobs, e.workers)
}

func (e *Engine) vocabulary(corpus [][]string, n int, opts preprocess.Options) *vocab.Vocabulary {
	if e.vocabs != nil {
		return e.vocabs.GetOrBuild(corpus, n, opts.Fingerprint())
	}
	return vocab.Build(corpus, n)
}

// Represent attaches a vector to every record of the active dataset.
func (e *Engine) Represent(ctx context.Context, st stage.State, opts RepresentOptions) (stage.State, dataset.Dataset, error) {
	if opts.Embeddings && e.embedder == nil {
		return st, dataset.Dataset{}, fmt.Errorf("representation: no embedding provider configured: %w", internalerr.ErrInvalidConfig)
	}
	return e.run(ctx, st, stage.Representation, "", func(ctx context.Context, in dataset.Dataset) ([]dataset.Record, map[string]string, error) {
		corpus := e.tokenizer.TokenizeAll(in.Texts(), opts.Tokenize)
		meta := map[string]string{MetaOriginal: in.ID}

		var m vectorize.Matrix
		if opts.Embeddings {
			var (
				rows [][]float64
				err  error
			)
			if opts.DocumentLevel {
				rows, err = embed.TextVectors(ctx, e.embedder, in.Texts())
				meta[MetaEmbeddingLevel] = "document"
			} else {
				rows, err = embed.DocumentVectors(ctx, e.embedder, corpus)
				meta[MetaEmbeddingLevel] = "token"
			}
			if err != nil {
				return nil, nil, err
			}
			m = vectorize.Matrix{Rows: rows}
			meta[MetaMethod] = MethodEmbedding
		} else {
			n := opts.window()
			v := e.vocabulary(corpus, n, opts.Tokenize)
			var err error
			m, err = vectorize.Vectorize(opts.Mode, corpus, v)
			if err != nil {
				return nil, nil, err
			}
			terms, err := json.Marshal(m.Terms)
			if err != nil {
				return nil, nil, err
			}
			meta[MetaMethod] = opts.Mode.String()
			meta[MetaTerms] = string(terms)
			meta[MetaN] = strconv.Itoa(n)
		}

		sum := vectorize.Stats(m)
		meta[MetaDimensionality] = strconv.Itoa(sum.Dimensionality)
		meta[MetaSamples] = strconv.Itoa(sum.Samples)
		meta[MetaAvgMagnitude] = formatFloat(sum.AvgMagnitude)
		meta[MetaSparsity] = formatFloat(sum.Sparsity)

		records := dataset.CloneRecords(in.Records)
		for i := range records {
			records[i].Vector = m.Rows[i]
		}
		return records, meta, nil
	})
}

// Similar ranks the record pairs of a represented dataset by cosine
// similarity. k > 0 keeps the best k pairs.
func (e *Engine) Similar(ctx context.Context, id string, k int) ([]embed.Pair, error) {
	d, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Type != dataset.Represented {
		return nil, fmt.Errorf("similar: dataset %s is %s, not represented: %w", id, d.Type, internalerr.ErrPreconditionFailed)
	}
	items := make([]embed.Item, len(d.Records))
	for i, r := range d.Records {
		items[i] = embed.Item{Key: r.Text, Vector: r.Vector}
	}
	pairs, err := embed.RankPairs(items)
	if err != nil {
		return nil, err
	}
	if k > 0 && k < len(pairs) {
		pairs = pairs[:k]
	}
	return pairs, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
