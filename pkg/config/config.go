package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for docuflow-engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables always override YAML values. The heuristic
// thresholds are deliberately configurable — they are tuning parameters, not
// fixed constants.
type Config struct {
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Stats     StatsConfig     `yaml:"stats"`
}

// AnalyzerConfig holds relationship-analysis and classification thresholds.
type AnalyzerConfig struct {
	// StrongRatio is the source/target row ratio at or above which an edge
	// is classified strong with an embed recommendation.
	StrongRatio float64 `yaml:"strong_ratio" env:"ANALYZER_STRONG_RATIO" env-default:"10"`
	// WeakRatio is the ratio at or below which an edge is classified weak
	// with a reference recommendation.
	WeakRatio float64 `yaml:"weak_ratio" env:"ANALYZER_WEAK_RATIO" env-default:"0.1"`
	// HighUsageColumns / MediumUsageColumns are the column-count thresholds
	// for usage-frequency scoring.
	HighUsageColumns   int `yaml:"high_usage_columns" env:"ANALYZER_HIGH_USAGE_COLUMNS" env-default:"10"`
	MediumUsageColumns int `yaml:"medium_usage_columns" env:"ANALYZER_MEDIUM_USAGE_COLUMNS" env-default:"5"`
	// CoreMinRefs is the inbound or outbound reference count that promotes a
	// table to core.
	CoreMinRefs int `yaml:"core_min_refs" env:"ANALYZER_CORE_MIN_REFS" env-default:"2"`
	// CoreMinColumns is the column count that promotes a table to core.
	CoreMinColumns int `yaml:"core_min_columns" env:"ANALYZER_CORE_MIN_COLUMNS" env-default:"5"`
}

// EmbeddingConfig holds embedding-planner thresholds.
type EmbeddingConfig struct {
	// MaxEmbedColumns is the column count at or below which a table is
	// considered embeddable.
	MaxEmbedColumns int `yaml:"max_embed_columns" env:"EMBEDDING_MAX_EMBED_COLUMNS" env-default:"8"`
}

// StatsConfig holds row-count collection settings.
type StatsConfig struct {
	// DefaultRowEstimate is assumed when no provider is available or a fetch
	// fails.
	DefaultRowEstimate int64 `yaml:"default_row_estimate" env:"STATS_DEFAULT_ROW_ESTIMATE" env-default:"1000"`
	// Workers bounds concurrent row-count fetches.
	Workers int `yaml:"workers" env:"STATS_WORKERS" env-default:"4"`
	// FetchTimeout is the per-fetch deadline before falling back to the
	// default estimate.
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"STATS_FETCH_TIMEOUT" env-default:"5s"`
	// MaxRetries bounds retry attempts against the row-count provider.
	MaxRetries int `yaml:"max_retries" env:"STATS_MAX_RETRIES" env-default:"2"`
}

// Load reads configuration from the given YAML file with environment variable
// overrides. A missing file is not an error — env vars and defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration without touching files or the
// environment. Used by library callers and tests.
func Default() *Config {
	return &Config{
		Env: "local",
		Analyzer: AnalyzerConfig{
			StrongRatio:        10,
			WeakRatio:          0.1,
			HighUsageColumns:   10,
			MediumUsageColumns: 5,
			CoreMinRefs:        2,
			CoreMinColumns:     5,
		},
		Embedding: EmbeddingConfig{
			MaxEmbedColumns: 8,
		},
		Stats: StatsConfig{
			DefaultRowEstimate: 1000,
			Workers:            4,
			FetchTimeout:       5 * time.Second,
			MaxRetries:         2,
		},
	}
}

func (c *Config) validate() error {
	if c.Analyzer.StrongRatio <= c.Analyzer.WeakRatio {
		return fmt.Errorf("analyzer strong_ratio (%v) must exceed weak_ratio (%v)",
			c.Analyzer.StrongRatio, c.Analyzer.WeakRatio)
	}
	if c.Embedding.MaxEmbedColumns < 1 {
		return fmt.Errorf("embedding max_embed_columns must be positive")
	}
	if c.Stats.Workers < 1 {
		return fmt.Errorf("stats workers must be positive")
	}
	if c.Stats.DefaultRowEstimate < 1 {
		return fmt.Errorf("stats default_row_estimate must be positive")
	}
	return nil
}
