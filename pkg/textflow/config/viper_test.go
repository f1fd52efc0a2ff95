package config

import (
	"errors"
	"testing"
	"time"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

func TestFromViperFileAndEnv(t *testing.T) {
	path := writeFile(t, "textflow.yaml", `
vectorize:
  mode: tfidf
remote:
  base_url: http://localhost:8000
  timeout: 5s
preprocess:
  stem: false
`)
	t.Setenv("TEXTFLOW_STORE_DRIVER", "sqlite")
	t.Setenv("TEXTFLOW_STORE_PATH", "/tmp/lineage.db")
	t.Setenv("TEXTFLOW_LOG_LEVEL", "debug")

	v, err := NewViper(path)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}
	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "/tmp/lineage.db" {
		t.Errorf("store = %+v, want sqlite at /tmp/lineage.db", cfg.Store)
	}
	if cfg.Vectorize.Mode != "tfidf" || cfg.Vectorize.NGram != 1 {
		t.Errorf("vectorize = %+v", cfg.Vectorize)
	}
	if cfg.Remote.Timeout != 5*time.Second {
		t.Errorf("remote timeout = %v, want 5s", cfg.Remote.Timeout)
	}
	if cfg.Preprocess.Stem || !cfg.Preprocess.Lowercase {
		t.Errorf("preprocess = %+v, want defaults with stem off", cfg.Preprocess)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestFromViperDefaults(t *testing.T) {
	v, err := NewViper("")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.Store.Driver != "memory" || cfg.Collect.MaxBytes != 5<<20 {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestFromViperInvalid(t *testing.T) {
	t.Setenv("TEXTFLOW_VECTORIZE_MODE", "word2vec")
	v, err := NewViper("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FromViper(v); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestNewViperMissingFile(t *testing.T) {
	if _, err := NewViper("/nonexistent/textflow.yaml"); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}
