package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
	"github.com/cognicore/textflow/pkg/textflow/preprocess"
	"github.com/cognicore/textflow/pkg/textflow/vectorize"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// Config is the pipeline configuration file.
type Config struct {
	Store      StoreConfig        `yaml:"store" mapstructure:"store"`
	Preprocess preprocess.Options `yaml:"preprocess" mapstructure:"preprocess"`
	Vectorize  VectorizeConfig    `yaml:"vectorize" mapstructure:"vectorize"`
	Remote     RemoteConfig       `yaml:"remote" mapstructure:"remote"`
	Embedding  EmbeddingConfig    `yaml:"embedding" mapstructure:"embedding"`
	Collect    CollectConfig      `yaml:"collect" mapstructure:"collect"`
	Log        LogConfig          `yaml:"log" mapstructure:"log"`

	StoplistPath string `yaml:"stoplist" mapstructure:"stoplist"`
	LexiconPath  string `yaml:"lexicon" mapstructure:"lexicon"`
}

// StoreConfig selects the lineage store backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // memory or sqlite
	Path   string `yaml:"path" mapstructure:"path"`
}

// VectorizeConfig sets representation defaults.
type VectorizeConfig struct {
	Mode    string `yaml:"mode" mapstructure:"mode"`
	NGram   int    `yaml:"ngram" mapstructure:"ngram"`
	Workers int    `yaml:"workers" mapstructure:"workers"`
}

// RemoteConfig points at the augmentation/cleaning/classification service.
type RemoteConfig struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey        string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RatePerSecond float64       `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Burst         int           `yaml:"burst" mapstructure:"burst"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // "", static or openai
	Path       string `yaml:"path" mapstructure:"path"`
	CacheSize  int    `yaml:"cache_size" mapstructure:"cache_size"`
	Model      string `yaml:"model" mapstructure:"model"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`

	// DocumentLevel embeds whole record texts instead of averaging tokens.
	DocumentLevel bool `yaml:"document_level" mapstructure:"document_level"`
}

// CollectConfig configures URL scraping.
type CollectConfig struct {
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBytes      int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Level  string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Store:      StoreConfig{Driver: "memory"},
		Preprocess: preprocess.AllOptions(),
		Vectorize:  VectorizeConfig{Mode: "bow", NGram: 1},
		Remote:     RemoteConfig{Timeout: 60 * time.Second, Burst: 1},
		Embedding:  EmbeddingConfig{CacheSize: 10000},
		Collect: CollectConfig{
			Timeout:       10 * time.Second,
			MaxBytes:      5 << 20,
			RespectRobots: true,
		},
		Log: LogConfig{Format: "text", Level: "info"},
	}
}

// Load reads a YAML pipeline config on top of DefaultConfig and validates it.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c Config) Validate() error {
	var problems []string
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not memory or sqlite", c.Store.Driver))
	}
	if _, err := vectorize.ParseMode(c.Vectorize.Mode); err != nil {
		problems = append(problems, fmt.Sprintf("vectorize.mode %q is unknown", c.Vectorize.Mode))
	}
	if c.Vectorize.NGram < 1 {
		problems = append(problems, "vectorize.ngram must be at least 1")
	}
	if c.Vectorize.Workers < 0 {
		problems = append(problems, "vectorize.workers must not be negative")
	}
	if c.Remote.RatePerSecond < 0 {
		problems = append(problems, "remote.rate_per_second must not be negative")
	}
	switch c.Embedding.Provider {
	case "":
	case "static":
		if c.Embedding.Path == "" {
			problems = append(problems, "embedding.path is required for the static provider")
		}
	case "openai":
		if c.Embedding.APIKey == "" || c.Embedding.Dimensions <= 0 {
			problems = append(problems, "embedding.api_key and embedding.dimensions are required for the openai provider")
		}
	default:
		problems = append(problems, fmt.Sprintf("embedding.provider %q is not static or openai", c.Embedding.Provider))
	}
	if c.Embedding.CacheSize < 0 {
		problems = append(problems, "embedding.cache_size must not be negative")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not text or json", c.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), internalerr.ErrInvalidConfig)
	}
	return nil
}
