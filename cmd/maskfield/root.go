package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"maskfield/internal/config"
	"maskfield/internal/logging"
	"maskfield/internal/store"
	"maskfield/internal/ui"
)

type rootOptions struct {
	configPath string
	logLevel   string
	dryRun     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "maskfield",
		Short: "Terminal form with masked, floating-label inputs",
		Long: `maskfield shows a form whose fields format input as you type.

Pattern masks insert literal separators (phone, date, card numbers) and
currency masks group digits into thousands. Fields are defined in
config.yaml; edits to that file are picked up while the form is open.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForm(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config.yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "keep submissions in memory instead of writing them")

	cmd.AddCommand(newFormatCmd(), newInitCmd(opts), newListCmd(opts))
	return cmd
}

func runForm(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	manager := config.NewManager(opts.configPath)
	if err := manager.Load(); err != nil {
		return err
	}
	cfg := manager.Config()
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	logger, closer, err := logging.Open(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()
	ctx = logging.WithContext(ctx, logger)

	var recorder store.Recorder = store.NewFileRecorder(cfg.Output.Path)
	if opts.dryRun {
		recorder = store.NewMemoryRecorder()
	}

	model, err := ui.NewModel(ctx, cfg, recorder)
	if err != nil {
		return fmt.Errorf("build form: %w", err)
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	manager.OnConfigChange(func(cfg config.Config) {
		logger.Info().Str("file", manager.FileUsed()).Msg("config reloaded")
		program.Send(reloadMsg(cfg, opts))
	})
	manager.Watch(func(err error) {
		logger.Warn().Err(err).Msg("config reload failed")
		program.Send(ui.ConfigErrorMsg{Err: err})
	})

	logger.Info().Int("fields", len(cfg.Fields)).Str("output", cfg.Output.Path).Msg("starting form")
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run form: %w", err)
	}
	return nil
}

// reloadMsg applies the command-line overrides to a reloaded configuration.
// Dry runs keep their in-memory recorder.
func reloadMsg(cfg config.Config, opts *rootOptions) ui.ConfigReloadedMsg {
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	msg := ui.ConfigReloadedMsg{Config: cfg}
	if !opts.dryRun {
		msg.Recorder = store.NewFileRecorder(cfg.Output.Path)
	}
	return msg
}
