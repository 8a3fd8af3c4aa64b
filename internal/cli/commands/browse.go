package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// BrowseCmd opens the interactive browser through run.
func BrowseCmd(load EnvLoader, run func(ctx context.Context, env *Env) error) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse reconciliation runs and their unmatched records interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), env)
		},
	}
}
