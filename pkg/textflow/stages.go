package textflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
	"github.com/cognicore/textflow/pkg/textflow/preprocess"
	"github.com/cognicore/textflow/pkg/textflow/stage"
)

// Metadata keys written by the stages.
const (
	MetaSource     = "source"
	MetaMethod     = "method"
	MetaOptions    = "options"
	MetaTokens     = "tokens"
	MetaTask       = "task"
	MetaModelType  = "modelType"
	MetaPrediction = "prediction"
	MetaAccuracies = "accuracies"
)

// Collect stores data as a new raw dataset and makes it active. data may be
// any record shape dataset.NormalizeRecords accepts.
func (e *Engine) Collect(ctx context.Context, st stage.State, name, source string, data any) (stage.State, dataset.Dataset, error) {
	records, err := dataset.NormalizeRecords(data)
	if err != nil {
		e.log.LogStageFailure(ctx, stage.Collection.String(), err)
		return st, dataset.Dataset{}, err
	}
	if len(records) == 0 {
		err := fmt.Errorf("collect %q: no non-empty records: %w", name, internalerr.ErrInvalidInput)
		e.log.LogStageFailure(ctx, stage.Collection.String(), err)
		return st, dataset.Dataset{}, err
	}
	entered, err := e.controller.JumpTo(ctx, st, stage.Collection)
	if err != nil {
		return st, dataset.Dataset{}, err
	}
	out, err := e.store.Create(ctx, nil, dataset.Raw, name, records, map[string]string{MetaSource: source})
	if err != nil {
		e.log.LogStageFailure(ctx, stage.Collection.String(), err)
		return st, dataset.Dataset{}, err
	}
	next, err := e.controller.Complete(entered, out)
	if err != nil {
		return st, dataset.Dataset{}, err
	}
	e.log.LogSnapshot(ctx, stage.Collection.String(), out.ID, "", len(out.Records))
	return next, out, nil
}

// CollectURL scrapes a web page and stores its paragraphs as a raw dataset.
func (e *Engine) CollectURL(ctx context.Context, st stage.State, url string) (stage.State, dataset.Dataset, error) {
	if e.scraper == nil {
		return st, dataset.Dataset{}, fmt.Errorf("collect: no scraper configured: %w", internalerr.ErrInvalidConfig)
	}
	texts, err := e.scraper.Scrape(ctx, url)
	if err != nil {
		err = fmt.Errorf("collect %s: %w", url, err)
		e.log.LogStageFailure(ctx, stage.Collection.String(), err)
		return st, dataset.Dataset{}, err
	}
	return e.Collect(ctx, st, url, url, texts)
}

// Augment sends the active dataset to the augmentation service.
func (e *Engine) Augment(ctx context.Context, st stage.State, options map[string]any) (stage.State, dataset.Dataset, error) {
	if e.augmenter == nil {
		return st, dataset.Dataset{}, fmt.Errorf("augmentation: no augmenter configured: %w", internalerr.ErrInvalidConfig)
	}
	return e.run(ctx, st, stage.Augmentation, "", func(ctx context.Context, in dataset.Dataset) ([]dataset.Record, map[string]string, error) {
		records, err := e.augmenter.Augment(ctx, in.Records, options)
		if err != nil {
			return nil, nil, err
		}
		return records, map[string]string{MetaMethod: "remote"}, nil
	})
}

// CleanOptions configures the cleaning stage.
type CleanOptions struct {
	Text preprocess.Options
	// Remote sends records to the configured DeepCleaner instead of
	// cleaning them locally.
	Remote bool
}

// Clean applies character-level cleaning to every record. Records are kept
// in order even when cleaning empties them.
func (e *Engine) Clean(ctx context.Context, st stage.State, opts CleanOptions) (stage.State, dataset.Dataset, error) {
	if opts.Remote && e.cleaner == nil {
		return st, dataset.Dataset{}, fmt.Errorf("cleaning: no remote cleaner configured: %w", internalerr.ErrInvalidConfig)
	}
	return e.run(ctx, st, stage.Cleaning, "", func(ctx context.Context, in dataset.Dataset) ([]dataset.Record, map[string]string, error) {
		meta := map[string]string{MetaOptions: opts.Text.Fingerprint()}
		if opts.Remote {
			records, err := e.cleaner.DeepClean(ctx, in.Records, opts.Text)
			if err != nil {
				return nil, nil, err
			}
			meta[MetaMethod] = "remote"
			return records, meta, nil
		}
		records := dataset.CloneRecords(in.Records)
		for i := range records {
			records[i].Text = e.tokenizer.Clean(records[i].Text, opts.Text)
		}
		meta[MetaMethod] = "local"
		return records, meta, nil
	})
}

// Preprocess tokenizes every record and stores the tokens joined by single
// spaces.
func (e *Engine) Preprocess(ctx context.Context, st stage.State, opts preprocess.Options) (stage.State, dataset.Dataset, error) {
	return e.run(ctx, st, stage.Preprocessing, "", func(ctx context.Context, in dataset.Dataset) ([]dataset.Record, map[string]string, error) {
		records := dataset.CloneRecords(in.Records)
		var total int
		for i := range records {
			tokens := e.tokenizer.Tokenize(records[i].Text, opts)
			total += len(tokens)
			records[i].Text = strings.Join(tokens, " ")
		}
		return records, map[string]string{
			MetaOptions: opts.Fingerprint(),
			MetaTokens:  strconv.Itoa(total),
		}, nil
	})
}

// Classify sends the active dataset to the classifier and stores the
// predicted labels.
func (e *Engine) Classify(ctx context.Context, st stage.State, opts ClassifyOptions) (stage.State, dataset.Dataset, error) {
	if e.classifier == nil {
		return st, dataset.Dataset{}, fmt.Errorf("classification: no classifier configured: %w", internalerr.ErrInvalidConfig)
	}
	return e.run(ctx, st, stage.Classification, "", func(ctx context.Context, in dataset.Dataset) ([]dataset.Record, map[string]string, error) {
		res, err := e.classifier.Classify(ctx, in.Records, opts)
		if err != nil {
			return nil, nil, err
		}
		records := applyPredictions(in.Records, res)
		acc, err := json.Marshal(res.Accuracies)
		if err != nil {
			return nil, nil, err
		}
		return records, map[string]string{
			MetaTask:       opts.Task,
			MetaModelType:  opts.ModelType,
			MetaPrediction: res.Prediction,
			MetaAccuracies: string(acc),
		}, nil
	})
}

// applyPredictions labels records with per-record predictions when the
// classifier returned one per record, else with the batch prediction. An
// empty prediction leaves the record unlabeled.
func applyPredictions(in []dataset.Record, res Classification) []dataset.Record {
	records := dataset.CloneRecords(in)
	switch {
	case len(res.Predictions) == len(records) && len(records) > 0:
		for i := range records {
			records[i].Label = labelOf(res.Predictions[i])
		}
	case res.Prediction != "":
		for i := range records {
			records[i].Label = labelOf(res.Prediction)
		}
	}
	return records
}

func labelOf(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
