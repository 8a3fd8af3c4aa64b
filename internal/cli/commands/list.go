package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"reconciliation-portal/internal/models"
	"reconciliation-portal/internal/render"
	"reconciliation-portal/internal/services/listing"
	"reconciliation-portal/internal/services/reconciliation"
)

func SummariesCmd(load EnvLoader) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "summaries",
		Short: "List past reconciliation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc := env.Service(reconciliation.Views{}, render.NewWriterNotifier(cmd.ErrOrStderr()))

			if err := svc.LoadSummaries(ctx); err != nil {
				return err
			}
			if err := walk(ctx, page, svc.NextSummaries); err != nil {
				return err
			}
			snap := svc.Summaries()
			writeSnapshot[models.ReconciliationSummary](snap, render.NewSummaryTable(cmd.OutOrStdout(), env.Format))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number to show")
	return cmd
}

func DetailsCmd(load EnvLoader) *cobra.Command {
	var (
		page     int
		category string
	)
	cmd := &cobra.Command{
		Use:   "details TASK_ID",
		Short: "List the unmatched records of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := models.ParseCategory(category)
			if err != nil {
				return err
			}
			env, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc := env.Service(reconciliation.Views{}, render.NewWriterNotifier(cmd.ErrOrStderr()))

			if err := svc.DrillIn(ctx, args[0], cat); err != nil {
				return err
			}
			if err := walk(ctx, page, svc.NextDetails); err != nil {
				return err
			}
			_, snap := svc.Details()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (Task ID: %s)\n", cat.Title(), args[0])
			writeSnapshot[models.DetailRecord](snap, render.NewDetailTable(w, env.Format, cat))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number to show")
	cmd.Flags().StringVarP(&category, "category", "c", string(models.CategoryTransaction), "Records to show: transaction or bank")
	return cmd
}

// walk advances a loaded list to the 1-based page.
func walk(ctx context.Context, page int, next func(context.Context) (bool, error)) error {
	if page < 1 {
		return fmt.Errorf("page must be at least 1, got %d", page)
	}
	for current := 1; current < page; current++ {
		moved, err := next(ctx)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("page %d is past the last page (%d)", page, current)
		}
	}
	return nil
}

// writeSnapshot renders the settled state of a list once.
func writeSnapshot[T any](snap listing.Snapshot[T], d listing.Delegate[T]) {
	if snap.Display == listing.StatePopulated {
		d.RenderPage(snap.Records, snap.Page)
		return
	}
	d.RenderState(snap.Display, snap.Message)
}
