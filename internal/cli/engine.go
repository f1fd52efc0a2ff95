package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/cognicore/textflow/internal/remote"
	"github.com/cognicore/textflow/pkg/textflow"
	"github.com/cognicore/textflow/pkg/textflow/collect"
	"github.com/cognicore/textflow/pkg/textflow/config"
	"github.com/cognicore/textflow/pkg/textflow/embed"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
	"github.com/cognicore/textflow/pkg/textflow/preprocess"
	"github.com/cognicore/textflow/pkg/textflow/store"
	"github.com/cognicore/textflow/pkg/textflow/store/memstore"
	"github.com/cognicore/textflow/pkg/textflow/store/sqlite"
	"github.com/cognicore/textflow/pkg/textflow/vocab"
)

// engine wires an Engine from the loaded configuration. The caller closes it.
func (a *app) engine(ctx context.Context) (*textflow.Engine, error) {
	tokenizer, err := a.tokenizer()
	if err != nil {
		return nil, err
	}
	embedder, err := newEmbedder(a.cfg.Embedding)
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx, a.cfg.Store)
	if err != nil {
		return nil, err
	}

	opts := textflow.Options{
		Store:      st,
		Tokenizer:  tokenizer,
		Embedder:   embedder,
		VocabCache: vocab.NewCache(30*time.Minute, 10*time.Minute),
		Workers:    a.cfg.Vectorize.Workers,
		Logger:     a.log,
		Scraper: collect.NewFetcher(collect.FetcherOptions{
			Timeout:       a.cfg.Collect.Timeout,
			UserAgent:     a.cfg.Collect.UserAgent,
			MaxBytes:      a.cfg.Collect.MaxBytes,
			RespectRobots: a.cfg.Collect.RespectRobots,
		}),
	}
	if a.cfg.Remote.BaseURL != "" {
		client := newRemoteClient(a.cfg.Remote)
		opts.Augmenter = client
		opts.Cleaner = client
		opts.Classifier = client
	}

	e, err := textflow.New(opts)
	if err != nil {
		st.Close()
		return nil, err
	}
	return e, nil
}

func (a *app) tokenizer() (*preprocess.Tokenizer, error) {
	loader := &config.Loader{StoplistPath: a.cfg.StoplistPath, LexiconPath: a.cfg.LexiconPath}
	comp, err := loader.Load()
	if err != nil {
		return nil, err
	}
	return comp.Tokenizer, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return memstore.New(), nil
	case "sqlite":
		return sqlite.OpenSQLite(ctx, cfg.Path)
	}
	return nil, fmt.Errorf("store driver %q: %w", cfg.Driver, internalerr.ErrInvalidConfig)
}

func newRemoteClient(cfg config.RemoteConfig) *remote.Client {
	c := &remote.Client{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RatePerSecond > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), max(cfg.Burst, 1))
	}
	return c
}

// newEmbedder returns nil when no provider is configured.
func newEmbedder(cfg config.EmbeddingConfig) (embed.Provider, error) {
	var p embed.Provider
	switch cfg.Provider {
	case "":
		return nil, nil
	case "static":
		s, err := embed.LoadTextFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		p = s
	case "openai":
		o, err := embed.NewOpenAI(embed.OpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		p = o
	default:
		return nil, fmt.Errorf("embedding provider %q: %w", cfg.Provider, internalerr.ErrInvalidConfig)
	}
	if cfg.CacheSize <= 0 {
		return p, nil
	}
	cached, err := embed.NewCached(p, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}
