// Package remote calls the HTTP services that augment, deep-clean and
// classify datasets. Calls are never retried; failures wrap
// internalerr.ErrExternalService and keep the service's message.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cognicore/textflow/pkg/textflow"
	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
	"github.com/cognicore/textflow/pkg/textflow/preprocess"
)

// Client talks to a processing service rooted at BaseURL. It implements
// textflow.Augmenter, textflow.DeepCleaner and textflow.Classifier.
type Client struct {
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
	// Limiter, when set, paces outgoing requests.
	Limiter *rate.Limiter
}

// cleanOptions mirrors the flags the cleaning service understands.
type cleanOptions struct {
	RemovePunctuation bool `json:"remove_punctuation"`
	RemoveNumbers     bool `json:"remove_numbers"`
	RemoveExtraSpaces bool `json:"remove_extra_spaces"`
	RemoveSymbols     bool `json:"remove_symbols"`
}

type wireRecord struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

type errorBody struct {
	Detail any `json:"detail"`
}

// Augment sends records to /augment-data and returns the augmented records.
func (c *Client) Augment(ctx context.Context, records []dataset.Record, options map[string]any) ([]dataset.Record, error) {
	req := map[string]any{"data": toWire(records)}
	if len(options) > 0 {
		req["options"] = options
	}
	var resp struct {
		Data []any `json:"augmented_data"`
	}
	if err := c.post(ctx, "/augment-data", req, &resp); err != nil {
		return nil, err
	}
	out, err := dataset.NormalizeRecords(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("augment-data response: %v: %w", err, internalerr.ErrExternalService)
	}
	return out, nil
}

// DeepClean sends records to /clean-data. The service answers with bare
// strings; labels are carried over by position when the counts match.
func (c *Client) DeepClean(ctx context.Context, records []dataset.Record, options preprocess.Options) ([]dataset.Record, error) {
	req := map[string]any{"data": toWire(records), "options": cleanOptions{
		RemovePunctuation: options.RemovePunctuation,
		RemoveNumbers:     options.RemoveNumbers,
		RemoveExtraSpaces: options.RemoveExtraWhitespace,
		RemoveSymbols:     options.RemovePunctuation,
	}}
	var resp struct {
		Data []any `json:"cleaned_data"`
	}
	if err := c.post(ctx, "/clean-data", req, &resp); err != nil {
		return nil, err
	}
	out, err := dataset.NormalizeRecords(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("clean-data response: %v: %w", err, internalerr.ErrExternalService)
	}
	if len(out) == len(records) {
		for i := range out {
			if out[i].Label == nil && records[i].Label != nil {
				l := *records[i].Label
				out[i].Label = &l
			}
		}
	}
	return out, nil
}

// Classify sends records to /compare-models.
func (c *Client) Classify(ctx context.Context, records []dataset.Record, options textflow.ClassifyOptions) (textflow.Classification, error) {
	req := struct {
		Data      []wireRecord `json:"data"`
		Task      string       `json:"task"`
		ModelType string       `json:"modelType"`
	}{Data: toWire(records), Task: options.Task, ModelType: options.ModelType}
	var resp struct {
		Accuracies  map[string]float64 `json:"accuracies"`
		Prediction  string             `json:"prediction"`
		Predictions []string           `json:"predictions"`
	}
	if err := c.post(ctx, "/compare-models", req, &resp); err != nil {
		return textflow.Classification{}, err
	}
	return textflow.Classification{
		Accuracies:  resp.Accuracies,
		Prediction:  resp.Prediction,
		Predictions: resp.Predictions,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if c.BaseURL == "" {
		return fmt.Errorf("remote: base URL required: %w", internalerr.ErrInvalidConfig)
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+path, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, internalerr.ErrExternalService)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, internalerr.ErrExternalService)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %s: %w", path, errorMessage(resp.StatusCode, payload), internalerr.ErrExternalService)
	}
	var eb errorBody
	if json.Unmarshal(payload, &eb) == nil && eb.Detail != nil {
		return fmt.Errorf("%s: %s: %w", path, detailString(eb.Detail), internalerr.ErrExternalService)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s: decode response: %v: %w", path, err, internalerr.ErrExternalService)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func toWire(records []dataset.Record) []wireRecord {
	out := make([]wireRecord, len(records))
	for i, r := range records {
		out[i] = wireRecord{Text: r.Text, Label: r.LabelValue()}
	}
	return out
}

func errorMessage(status int, payload []byte) string {
	var eb errorBody
	if json.Unmarshal(payload, &eb) == nil && eb.Detail != nil {
		return detailString(eb.Detail)
	}
	if msg := strings.TrimSpace(string(payload)); msg != "" {
		return msg
	}
	return http.StatusText(status)
}

// detailString renders a service "detail" field, which is a string for
// handled errors and a list of objects for request validation errors.
func detailString(d any) string {
	if s, ok := d.(string); ok {
		return s
	}
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprint(d)
	}
	return string(b)
}
