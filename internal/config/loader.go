package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CONSTPROP_CONFIG is set
//  3. env (prefix CONSTPROP_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CONSTPROP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: CONSTPROP_DATASET_DIR, CONSTPROP_MAX_PASSES, ...
	// Keys keep their underscores to match the koanf struct tags.
	envProvider := env.Provider("CONSTPROP_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "constprop_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.CatalogFile == "" {
		return nil, fmt.Errorf("%w: catalog_file must not be empty", ErrInvalidConfig)
	}
	if cfg.DatasetDir == "" {
		return nil, fmt.Errorf("%w: dataset_dir must not be empty", ErrInvalidConfig)
	}
	if cfg.MaxPasses <= 0 {
		return nil, fmt.Errorf("%w: max_passes must be positive", ErrInvalidConfig)
	}
	if cfg.Parallelism <= 0 {
		return nil, fmt.Errorf("%w: parallelism must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
