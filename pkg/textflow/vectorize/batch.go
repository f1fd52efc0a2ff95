package vectorize

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/textflow/pkg/textflow/vocab"
)

// Job is one independent vectorization request.
type Job struct {
	Mode   Mode
	Corpus [][]string
	Vocab  *vocab.Vocabulary
}

// Batch computes several matrices concurrently, at most workers at a time
// (workers <= 0 means unbounded). Results are returned in job order. The
// first failing job cancels the rest and its error is returned.
func Batch(ctx context.Context, jobs []Job, workers int) ([]Matrix, error) {
	out := make([]Matrix, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := Vectorize(job.Mode, job.Corpus, job.Vocab)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
