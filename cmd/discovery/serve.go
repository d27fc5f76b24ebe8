package main

import (
	"github.com/alchemorsel/discovery/internal/infrastructure/container"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the discovery read model over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				container.Module(opts.configPath),
				fx.NopLogger,
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}
