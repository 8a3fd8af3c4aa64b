package commands

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"reconciliation-portal/internal/config"
	"reconciliation-portal/internal/render"
	"reconciliation-portal/internal/repository"
	"reconciliation-portal/internal/services/reconciliation"
)

// Env is what every command needs once configuration is loaded.
type Env struct {
	Config   config.Config
	Logger   *slog.Logger
	API      *repository.APIClient
	Format   render.Formatter
	Location *time.Location
}

// EnvLoader builds the Env for a command invocation.
type EnvLoader func(cmd *cobra.Command) (*Env, error)

// Service wires a workflow over the env's API client.
func (e *Env) Service(views reconciliation.Views, notifier reconciliation.Notifier) *reconciliation.ReconciliationService {
	return reconciliation.NewReconciliationServiceFromAPI(e.API, views, notifier, reconciliation.Options{
		PageSize: e.Config.List.PageSize,
		Location: e.Location,
	}, e.Logger)
}
