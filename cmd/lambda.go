package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/okian/sampleapi/internal/adapters/gateway"
	app "github.com/okian/sampleapi/internal/app"
	"github.com/okian/sampleapi/internal/config"
	"github.com/okian/sampleapi/pkg/logger"
)

// newLambdaCmd creates the 'lambda' subcommand.
func newLambdaCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Run the API as an AWS Lambda function behind API Gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			if format != "" {
				cfg.LambdaEventFormat = format
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return runLambda(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&format, "event-format", "", "API Gateway payload format: v1 or v2 (overrides lambda_event_format)")
	return cmd
}

// newGatewayHandler builds the service and wraps its handler for API Gateway.
func newGatewayHandler(ctx context.Context, cfg *config.Config) (*app.Service, *gateway.Handler, error) {
	log := logger.Get()

	svc := app.New(
		app.WithConfig(cfg),
		app.WithLogger(log),
		app.WithVersion(version),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, nil, err
	}

	handler, err := svc.Handler(ctx)
	if err != nil {
		svc.Stop()
		return nil, nil, err
	}

	gw, err := gateway.New(handler,
		gateway.WithEventFormat(cfg.LambdaEventFormat),
		gateway.WithLogger(log.Named("gateway")),
	)
	if err != nil {
		svc.Stop()
		return nil, nil, err
	}
	return svc, gw, nil
}

func runLambda(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	svc, gw, err := newGatewayHandler(ctx, cfg)
	if err != nil {
		return err
	}

	logger.Get().Info(ctx, "starting lambda handler",
		logger.String("event_format", gw.Format()),
		logger.String("root_path", cfg.RootPath),
	)
	lambda.StartWithOptions(gw.Entrypoint(),
		lambda.WithContext(ctx),
		lambda.WithEnableSIGTERM(svc.Stop),
	)
	return nil
}
