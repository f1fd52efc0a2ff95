package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// ErrDisallowed is returned when robots.txt forbids fetching a URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// DefaultUserAgent identifies the scraper.
const DefaultUserAgent = "textflow/1.0 (+https://github.com/cognicore/textflow)"

// Fetcher downloads pages and extracts their paragraphs.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *RobotsChecker
}

// FetcherOptions configures a Fetcher; zero values get defaults.
type FetcherOptions struct {
	Timeout       time.Duration
	UserAgent     string
	MaxBytes      int64
	RespectRobots bool
	HTTPClient    *http.Client
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5 << 20
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		}
	}
	f := &Fetcher{httpClient: client, userAgent: opts.UserAgent, maxBytes: opts.MaxBytes}
	if opts.RespectRobots {
		f.robots = NewRobotsChecker(client, opts.UserAgent)
	}
	return f
}

// Fetch retrieves the body of rawURL, truncated at the size limit.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.robots != nil {
		ok, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", rawURL, err, internalerr.ErrInvalidInput)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %v: %w", err, internalerr.ErrInvalidInput)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %v: %w", err, internalerr.ErrExternalService)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d: %w", resp.StatusCode, internalerr.ErrExternalService)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %v: %w", err, internalerr.ErrExternalService)
	}
	return body, nil
}

// Scrape fetches rawURL and returns its meaningful paragraphs. A page with
// none fails with ErrNotFound.
func (f *Fetcher) Scrape(ctx context.Context, rawURL string) ([]string, error) {
	body, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	texts, err := ExtractParagraphs(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", rawURL, err, internalerr.ErrInvalidInput)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("no meaningful text found on %s: %w", rawURL, internalerr.ErrNotFound)
	}
	return texts, nil
}
