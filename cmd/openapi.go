package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	app "github.com/okian/sampleapi/internal/app"
)

// newOpenAPICmd creates the 'openapi' subcommand.
func newOpenAPICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			svc := app.New(app.WithConfig(cfg), app.WithVersion(version))
			doc := svc.Document()
			if err := doc.Validate(cmd.Context()); err != nil {
				return fmt.Errorf("invalid openapi document: %w", err)
			}
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
