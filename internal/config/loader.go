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

// Environment variable names.
const (
	EnvPrefix     = "SAMPLEAPI_"
	EnvConfigFile = "SAMPLEAPI_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SAMPLEAPI_CONFIG is set
//  3. env (prefix SAMPLEAPI_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SAMPLEAPI_ROOT_PATH -> root_path. Underscores are kept to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Servers is decoded into an empty slice; decoding over the defaults
	// would keep trailing default entries when the file lists fewer.
	cfg := *base
	cfg.Servers = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if len(cfg.Servers) == 0 {
		cfg.Servers = DefaultServers()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the rest of the service relies on.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.APIKeyHeader) == "":
		return fmt.Errorf("%w: api_key_header must not be empty", ErrInvalidConfig)
	case c.RootPath != "" && !strings.HasPrefix(c.RootPath, "/"):
		return fmt.Errorf("%w: root_path must start with '/': %q", ErrInvalidConfig, c.RootPath)
	case len(c.RootPath) > 1 && strings.HasSuffix(c.RootPath, "/"):
		return fmt.Errorf("%w: root_path must not end with '/': %q", ErrInvalidConfig, c.RootPath)
	}

	switch c.LambdaEventFormat {
	case EventFormatV1, EventFormatV2:
	default:
		return fmt.Errorf("%w: unknown lambda_event_format %q", ErrInvalidConfig, c.LambdaEventFormat)
	}

	switch c.TracingExporter {
	case "", TracingNone, TracingStdout:
	default:
		return fmt.Errorf("%w: unknown tracing_exporter %q", ErrInvalidConfig, c.TracingExporter)
	}

	for i, s := range c.Servers {
		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("%w: servers[%d].url must not be empty", ErrInvalidConfig, i)
		}
	}
	return nil
}
