package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"reconciliation-portal/internal/cli/commands"
	"reconciliation-portal/internal/config"
	"reconciliation-portal/internal/logging"
	"reconciliation-portal/internal/render"
	"reconciliation-portal/internal/repository"
	"reconciliation-portal/internal/services/reconciliation"
	"reconciliation-portal/internal/tui"
)

func Execute(ctx context.Context) error {
	return NewRoot().ExecuteContext(ctx)
}

var runTUI = func(ctx context.Context, env *commands.Env) error {
	svc := env.Service(reconciliation.Views{}, nil)
	p := tea.NewProgram(tui.New(ctx, svc, env.Format), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"api-url":    "api.base_url",
	"timeout":    "api.timeout",
	"page-size":  "list.page_size",
	"timezone":   "ui.timezone",
	"currency":   "ui.currency_symbol",
	"log-level":  "log.level",
	"log-format": "log.format",
}

func NewRoot() *cobra.Command {
	v := config.New()
	var configFile string

	root := &cobra.Command{
		Use:          "reconctl",
		Short:        "Upload files to the reconciliation service and browse its results",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (yaml, toml or json)")
	flags.String("api-url", config.DefaultBaseURL, "Reconciliation backend base URL")
	flags.Duration("timeout", config.DefaultTimeout, "HTTP timeout per request")
	flags.Int("page-size", config.DefaultPageSize, "Rows per page")
	flags.String("timezone", "Local", "Zone for date ranges and displayed dates")
	flags.String("currency", "$", "Currency symbol")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
	for flag, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	load := func(cmd *cobra.Command) (*commands.Env, error) {
		if configFile != "" {
			v.SetConfigFile(configFile)
		}
		return newEnv(cmd, v)
	}

	root.AddCommand(
		commands.RunCmd(load),
		commands.SummariesCmd(load),
		commands.DetailsCmd(load),
		commands.BrowseCmd(load, func(ctx context.Context, env *commands.Env) error {
			return runTUI(ctx, env)
		}),
		commands.HealthCmd(load),
	)
	return root
}

func newEnv(cmd *cobra.Command, v *viper.Viper) (*commands.Env, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	api, err := repository.NewAPIClient(cfg.API.BaseURL, nil, cfg.API.Timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	return &commands.Env{
		Config:   cfg,
		Logger:   logger,
		API:      api,
		Format:   render.NewFormatter(cfg.UI, loc),
		Location: loc,
	}, nil
}
