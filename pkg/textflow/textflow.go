// Package textflow runs the staged text-processing pipeline: collection,
// augmentation, cleaning, preprocessing, representation and classification.
// Every stage reads one dataset snapshot from the lineage store and writes a
// new one linked to it. Controller state is passed in and returned; the
// engine keeps none.
package textflow

import (
	"context"
	"fmt"

	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/embed"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
	"github.com/cognicore/textflow/pkg/textflow/logging"
	"github.com/cognicore/textflow/pkg/textflow/preprocess"
	"github.com/cognicore/textflow/pkg/textflow/stage"
	"github.com/cognicore/textflow/pkg/textflow/store"
	"github.com/cognicore/textflow/pkg/textflow/vocab"
)

// Augmenter produces augmented variants of records.
type Augmenter interface {
	Augment(ctx context.Context, records []dataset.Record, options map[string]any) ([]dataset.Record, error)
}

// DeepCleaner cleans records out of process.
type DeepCleaner interface {
	DeepClean(ctx context.Context, records []dataset.Record, options preprocess.Options) ([]dataset.Record, error)
}

// Classifier labels records with a trained model.
type Classifier interface {
	Classify(ctx context.Context, records []dataset.Record, options ClassifyOptions) (Classification, error)
}

// Scraper fetches the text segments of a web page.
type Scraper interface {
	Scrape(ctx context.Context, url string) ([]string, error)
}

// ClassifyOptions selects the classification task and model family.
type ClassifyOptions struct {
	Task      string `json:"task"`
	ModelType string `json:"modelType"`
}

// Classification is a classifier's answer for a batch of records.
// Predictions, when present, holds one label per record; otherwise
// Prediction applies to the whole batch.
type Classification struct {
	Accuracies  map[string]float64 `json:"accuracies"`
	Prediction  string             `json:"prediction"`
	Predictions []string           `json:"predictions,omitempty"`
}

// Engine is the main pipeline facade
type Engine struct {
	store      store.Store
	controller *stage.Controller
	tokenizer  *preprocess.Tokenizer
	augmenter  Augmenter
	cleaner    DeepCleaner
	classifier Classifier
	scraper    Scraper
	embedder   embed.Provider
	vocabs     *vocab.Cache
	workers    int
	log        *logging.Logger
}

// Options configures an Engine. Only Store is required; remote stages fail
// with ErrInvalidConfig when their collaborator is missing.
type Options struct {
	Store      store.Store
	Tokenizer  *preprocess.Tokenizer
	Augmenter  Augmenter
	Cleaner    DeepCleaner
	Classifier Classifier
	Scraper    Scraper
	Embedder   embed.Provider
	VocabCache *vocab.Cache
	Logger     *logging.Logger

	// Workers bounds parallel matrix computation in Compare.
	Workers int
}

// New creates an Engine with the given dependencies
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("textflow: store is required: %w", internalerr.ErrInvalidConfig)
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = preprocess.NewEnglishTokenizer()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Noop()
	}
	return &Engine{
		store:      opts.Store,
		controller: stage.NewController(opts.Store),
		tokenizer:  opts.Tokenizer,
		augmenter:  opts.Augmenter,
		cleaner:    opts.Cleaner,
		classifier: opts.Classifier,
		scraper:    opts.Scraper,
		embedder:   opts.Embedder,
		vocabs:     opts.VocabCache,
		workers:    opts.Workers,
		log:        opts.Logger,
	}, nil
}

// Close cleanly shuts down the engine and its store
func (e *Engine) Close() error {
	return e.store.Close()
}

// Controller exposes the stage controller for Advance/JumpTo/Select.
func (e *Engine) Controller() *stage.Controller {
	return e.controller
}

// Get returns a stored dataset.
func (e *Engine) Get(ctx context.Context, id string) (dataset.Dataset, error) {
	return e.store.Get(ctx, id)
}

// Datasets lists every stored dataset in creation order.
func (e *Engine) Datasets(ctx context.Context) ([]dataset.Dataset, error) {
	return e.store.List(ctx)
}

// Lineage returns the chain from id back to its root dataset.
func (e *Engine) Lineage(ctx context.Context, id string) ([]dataset.Dataset, error) {
	return e.store.Lineage(ctx, id)
}

// Eligible lists the datasets the stage may consume.
func (e *Engine) Eligible(ctx context.Context, s stage.Stage) ([]dataset.Dataset, error) {
	return e.controller.Eligible(ctx, s)
}

// transform computes a stage's records and metadata from its input.
type transform func(ctx context.Context, in dataset.Dataset) ([]dataset.Record, map[string]string, error)

// run enters target, reads the active dataset, applies fn and stores the
// result as a child of the input.
func (e *Engine) run(ctx context.Context, st stage.State, target stage.Stage, name string, fn transform) (stage.State, dataset.Dataset, error) {
	entered, err := e.controller.JumpTo(ctx, st, target)
	if err != nil {
		e.log.LogStageFailure(ctx, target.String(), err)
		return st, dataset.Dataset{}, err
	}
	in, err := e.controller.Input(ctx, entered)
	if err != nil {
		e.log.LogStageFailure(ctx, target.String(), err)
		return st, dataset.Dataset{}, err
	}
	records, meta, err := fn(ctx, in)
	if err != nil {
		err = fmt.Errorf("%s: %w", target, err)
		e.log.LogStageFailure(ctx, target.String(), err)
		return st, dataset.Dataset{}, err
	}
	if name == "" {
		name = fmt.Sprintf("%s (%s)", in.Name, target.Output())
	}
	out, err := e.store.Create(ctx, &in, target.Output(), name, records, meta)
	if err != nil {
		e.log.LogStageFailure(ctx, target.String(), err)
		return st, dataset.Dataset{}, err
	}
	next, err := e.controller.Complete(entered, out)
	if err != nil {
		return st, dataset.Dataset{}, err
	}
	e.log.LogSnapshot(ctx, target.String(), out.ID, out.ParentID, len(out.Records))
	return next, out, nil
}
