package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/sampleapi/internal/config"
	"github.com/okian/sampleapi/pkg/logger"
)

// lambdaRuntimeEnv is set by the Lambda runtime in every function container.
const lambdaRuntimeEnv = "AWS_LAMBDA_RUNTIME_API"

// Run modes selected when no subcommand is given.
const (
	modeServe  = "serve"
	modeLambda = "lambda"
)

var (
	configPath string
	logLevel   string
)

// NewRootCmd creates the root 'sampleapi' command with persistent flags and subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "sampleapi",
		Short:        "Sample HTTP API served standalone or behind API Gateway",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			if runMode(os.Getenv) == modeLambda {
				return runLambda(cmd.Context(), cfg)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config (overrides "+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn, error")

	rootCmd.AddCommand(newServeCmd(), newLambdaCmd(), newOpenAPICmd())
	return rootCmd
}

// runMode picks lambda inside a Lambda container and serve everywhere else.
func runMode(getenv func(string) string) string {
	if getenv(lambdaRuntimeEnv) != "" {
		return modeLambda
	}
	return modeServe
}

// bootstrap loads configuration (defaults -> optional file -> env) and
// initializes the global logger from it.
func bootstrap(ctx context.Context) (*config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if configPath != "" {
		if err := os.Setenv(config.EnvConfigFile, configPath); err != nil {
			return nil, fmt.Errorf("set %s: %w", config.EnvConfigFile, err)
		}
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}
