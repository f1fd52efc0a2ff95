package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"github.com/cognicore/textflow/pkg/textflow"
	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
	"github.com/cognicore/textflow/pkg/textflow/preprocess"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func stubClient(t *testing.T, wantPath string, status int, body string, inspect func(map[string]any)) *Client {
	t.Helper()
	return &Client{
		BaseURL: "https://svc.test/",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				if req.URL.Path != wantPath {
					t.Errorf("path = %s, want %s", req.URL.Path, wantPath)
				}
				if req.Method != http.MethodPost {
					t.Errorf("method = %s", req.Method)
				}
				if inspect != nil {
					var payload map[string]any
					raw, _ := io.ReadAll(req.Body)
					if err := json.Unmarshal(raw, &payload); err != nil {
						t.Fatalf("request body: %v", err)
					}
					inspect(payload)
				}
				return respond(status, body)
			}),
		},
	}
}

func TestAugment(t *testing.T) {
	c := stubClient(t, "/augment-data", 200,
		`{"augmented_data":[{"text":"the feline sat","label":"animal"},{"text":"hello there","label":""}]}`,
		func(p map[string]any) {
			data := p["data"].([]any)
			first := data[0].(map[string]any)
			if first["text"] != "the cat sat" || first["label"] != "animal" {
				t.Errorf("request record = %v", first)
			}
		})
	out, err := c.Augment(context.Background(), []dataset.Record{
		dataset.Labeled("the cat sat", "animal"),
		{Text: "hello"},
	}, nil)
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}
	if len(out) != 2 || out[0].Text != "the feline sat" || out[0].LabelValue() != "animal" {
		t.Errorf("out = %+v", out)
	}
	if out[1].Label != nil {
		t.Errorf("empty label should normalize to nil, got %q", *out[1].Label)
	}
}

func TestDeepCleanKeepsLabels(t *testing.T) {
	c := stubClient(t, "/clean-data", 200, `{"cleaned_data":["Hello World","spam here"]}`,
		func(p map[string]any) {
			opts := p["options"].(map[string]any)
			if opts["remove_numbers"] != true || opts["remove_extra_spaces"] != true || opts["remove_symbols"] != false {
				t.Errorf("options = %v", opts)
			}
		})
	out, err := c.DeepClean(context.Background(), []dataset.Record{
		dataset.Labeled("Hello, World! 123", "greeting"),
		dataset.Labeled("spam!! here", "spam"),
	}, preprocess.Options{RemoveNumbers: true, RemoveExtraWhitespace: true})
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Text != "Hello World" || out[0].LabelValue() != "greeting" || out[1].LabelValue() != "spam" {
		t.Errorf("out = %+v", out)
	}
}

func TestClassify(t *testing.T) {
	c := stubClient(t, "/compare-models", 200,
		`{"accuracies":{"naive_bayes":0.85,"svm":0.9},"prediction":"1"}`,
		func(p map[string]any) {
			if p["task"] != "Sentiment Analysis" || p["modelType"] != "svm" {
				t.Errorf("payload = %v", p)
			}
			if _, ok := p["data"].([]any); !ok {
				t.Errorf("data missing: %v", p)
			}
		})
	res, err := c.Classify(context.Background(), []dataset.Record{{Text: "great film"}},
		textflow.ClassifyOptions{Task: "Sentiment Analysis", ModelType: "svm"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Prediction != "1" || res.Accuracies["svm"] != 0.9 {
		t.Errorf("res = %+v", res)
	}
}

func TestErrorDetailVerbatim(t *testing.T) {
	c := stubClient(t, "/augment-data", 400, `{"detail":"Data is required"}`, nil)
	_, err := c.Augment(context.Background(), nil, nil)
	if !errors.Is(err, internalerr.ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}
	if !strings.Contains(err.Error(), "Data is required") {
		t.Errorf("message lost: %v", err)
	}
}

func TestErrorPlainBody(t *testing.T) {
	c := stubClient(t, "/clean-data", 502, "upstream down", nil)
	_, err := c.DeepClean(context.Background(), nil, preprocess.Options{})
	if !errors.Is(err, internalerr.ErrExternalService) || !strings.Contains(err.Error(), "upstream down") {
		t.Errorf("err = %v", err)
	}
}

func TestDetailOnSuccessStatus(t *testing.T) {
	c := stubClient(t, "/compare-models", 200, `{"detail":"Task Foo not supported"}`, nil)
	_, err := c.Classify(context.Background(), nil, textflow.ClassifyOptions{Task: "Foo"})
	if !errors.Is(err, internalerr.ErrExternalService) || !strings.Contains(err.Error(), "Task Foo not supported") {
		t.Errorf("err = %v", err)
	}
}

func TestMalformedResponse(t *testing.T) {
	c := stubClient(t, "/augment-data", 200, `{"augmented_data":[42]}`, nil)
	if _, err := c.Augment(context.Background(), nil, nil); !errors.Is(err, internalerr.ErrExternalService) {
		t.Errorf("err = %v, want ErrExternalService", err)
	}
}

func TestTransportFailureNoRetry(t *testing.T) {
	calls := 0
	c := &Client{
		BaseURL: "https://svc.test",
		HTTPClient: &http.Client{
			Transport: failingTransport(func() { calls++ }),
		},
	}
	if _, err := c.Augment(context.Background(), nil, nil); !errors.Is(err, internalerr.ErrExternalService) {
		t.Errorf("err = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

type failingTransport func()

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f()
	return nil, errors.New("connection refused")
}

func TestMissingBaseURL(t *testing.T) {
	c := &Client{}
	if _, err := c.Augment(context.Background(), nil, nil); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestLimiterHonorsContext(t *testing.T) {
	c := stubClient(t, "/augment-data", 200, `{"augmented_data":[]}`, nil)
	c.Limiter = rate.NewLimiter(rate.Every(1e12), 1)
	if _, err := c.Augment(context.Background(), nil, nil); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Augment(ctx, nil, nil); err == nil {
		t.Error("expected limiter wait to fail on a cancelled context")
	}
}
