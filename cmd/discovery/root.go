package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "discovery",
		Short: "Recipe discovery read model",
		Long: `discovery filters a static recipe catalogue against a user profile
and a set of criteria, paginates the result and resolves recipe images.

Example usage:
  discovery list --category dessert      # Apply a category filter
  discovery list --search poulet --pages 2
  discovery serve                        # Run the HTTP read model`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ./discovery.yaml)")

	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}
