package commands

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"reconciliation-portal/internal/render"
	"reconciliation-portal/internal/services/reconciliation"
	"reconciliation-portal/internal/services/upload"
)

type runOptions struct {
	transactions  string
	bankStatement string
	form          reconciliation.TaskForm
}

// RunCmd uploads both files, submits the task and prints the refreshed
// first page of summaries.
func RunCmd(load EnvLoader) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Upload a transaction file and a bank statement and start a reconciliation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load(cmd)
			if err != nil {
				return err
			}
			return runReconciliation(cmd, env, opts)
		},
	}
	cmd.Flags().StringVar(&opts.transactions, "transactions", "", "Internal transaction CSV file")
	cmd.Flags().StringVar(&opts.bankStatement, "bank-statement", "", "Bank statement CSV file")
	cmd.Flags().StringVar(&opts.form.BankName, "bank-name", "", "Bank the statement came from")
	cmd.Flags().StringVar(&opts.form.StartDate, "start-date", "", "First day to reconcile (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.form.EndDate, "end-date", "", "Last day to reconcile (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("transactions")
	_ = cmd.MarkFlagRequired("bank-statement")
	_ = cmd.MarkFlagRequired("bank-name")
	return cmd
}

func runReconciliation(cmd *cobra.Command, env *Env, opts runOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	svc := env.Service(reconciliation.Views{
		Summaries: render.NewSummaryTable(out, env.Format),
	}, render.NewWriterNotifier(out))

	progress := newProgressPrinter(cmd.ErrOrStderr())
	svc.Uploads().OnProgress(progress.print)
	svc.Uploads().OnChange(progress.changed)

	if err := svc.Start(ctx); err != nil {
		return err
	}

	files := map[upload.Kind]upload.File{
		upload.KindTransaction:   upload.LocalFile(opts.transactions),
		upload.KindBankStatement: upload.LocalFile(opts.bankStatement),
	}
	g, gctx := errgroup.WithContext(ctx)
	for kind, file := range files {
		g.Go(func() error {
			_, err := svc.Upload(gctx, kind, file)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	_, err := svc.Submit(ctx, opts.form)
	return err
}

// progressPrinter reports upload progress in 25% steps per slot.
type progressPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	last map[upload.Kind]int64
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, last: make(map[upload.Kind]int64)}
}

func (p *progressPrinter) print(state upload.SlotState) {
	if state.Total <= 0 {
		return
	}
	step := state.Sent * 4 / state.Total * 25
	p.mu.Lock()
	defer p.mu.Unlock()
	if step <= p.last[state.Kind] || step >= 100 {
		return
	}
	p.last[state.Kind] = step
	fmt.Fprintf(p.w, "uploading %s file: %d%%\n", state.Kind.Label(), step)
}

func (p *progressPrinter) changed(state upload.SlotState, ready bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch state.Status {
	case upload.StatusSucceeded:
		fmt.Fprintf(p.w, "%s file uploaded (%s)\n", state.Kind.Label(), state.Identifier)
		if ready {
			fmt.Fprintln(p.w, "both files uploaded")
		}
	case upload.StatusFailed:
		fmt.Fprintf(p.w, "%s file failed: %s\n", state.Kind.Label(), state.ErrorMessage)
	case upload.StatusIdle:
		delete(p.last, state.Kind)
	}
}
