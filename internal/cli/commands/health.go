package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func HealthCmd(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the reconciliation backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load(cmd)
			if err != nil {
				return err
			}
			if err := env.API.Health(cmd.Context()); err != nil {
				return fmt.Errorf("backend %s: %w", env.API.BaseURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend ok at %s\n", env.API.BaseURL())
			return nil
		},
	}
}
