package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// EnvPrefix prefixes environment overrides, e.g. TEXTFLOW_STORE_PATH.
const EnvPrefix = "TEXTFLOW"

// envKeys are the settings that may be given through the environment
// without appearing in a config file.
var envKeys = []string{
	"store.driver", "store.path",
	"remote.base_url", "remote.api_key", "remote.timeout",
	"embedding.provider", "embedding.path", "embedding.api_key", "embedding.base_url",
	"embedding.model", "embedding.dimensions", "embedding.document_level",
	"vectorize.mode", "vectorize.ngram", "vectorize.workers",
	"log.format", "log.level",
	"stoplist", "lexicon",
}

// NewViper returns a viper instance reading TEXTFLOW_* variables and, when
// path is not empty, the YAML file at path.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
		}
	}
	return v, nil
}

// FromViper decodes the settings known to v on top of DefaultConfig and
// validates the result.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %v: %w", err, internalerr.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
