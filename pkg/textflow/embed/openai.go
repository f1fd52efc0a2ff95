package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// OpenAIConfig configures the hosted embeddings provider.
type OpenAIConfig struct {
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	Model      string        `yaml:"model" mapstructure:"model"`
	Dimensions int           `yaml:"dimensions" mapstructure:"dimensions"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// OpenAI embeds whole keys (tokens or documents) through the OpenAI
// embeddings API or any compatible endpoint.
type OpenAI struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAI creates the provider. Dimensions is required since Provider
// reports it before any request is made.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required: %w", internalerr.ErrInvalidConfig)
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("openai embedding dimensions must be positive: %w", internalerr.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(clientConfig), cfg: cfg}, nil
}

// Dimension implements Provider.
func (p *OpenAI) Dimension() int { return p.cfg.Dimensions }

// Embed implements Provider.
func (p *OpenAI) Embed(ctx context.Context, key string) ([]float64, error) {
	vecs, err := p.EmbedBatch(ctx, []string{key})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds several inputs in one request. Results follow input
// order.
func (p *OpenAI) EmbedBatch(ctx context.Context, inputs []string) ([][]float64, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      inputs,
		Model:      openai.EmbeddingModel(p.cfg.Model),
		Dimensions: p.cfg.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %v: %w", err, internalerr.ErrExternalService)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs: %w", len(resp.Data), len(inputs), internalerr.ErrExternalService)
	}

	out := make([][]float64, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range: %w", d.Index, internalerr.ErrExternalService)
		}
		if len(d.Embedding) != p.cfg.Dimensions {
			return nil, fmt.Errorf("openai embeddings: dimension %d, want %d: %w", len(d.Embedding), p.cfg.Dimensions, internalerr.ErrExternalService)
		}
		vec := make([]float64, len(d.Embedding))
		for i, x := range d.Embedding {
			vec[i] = float64(x)
		}
		out[d.Index] = vec
	}
	return out, nil
}
