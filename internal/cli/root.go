// Package cli implements the trackline command line surface: project
// management, the timeline editor, and render jobs.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tOgg1/trackline/internal/config"
	"github.com/tOgg1/trackline/internal/logging"
	"github.com/tOgg1/trackline/internal/store"
)

// Execute runs the root command.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

// app carries lazily initialized shared state for subcommands.
type app struct {
	cfgFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
	db  *store.DB
}

func newRootCmd(version string) *cobra.Command {
	return buildRootCmd(version, &app{})
}

func buildRootCmd(version string, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "trackline",
		Short:         "Terminal timeline editor for video projects",
		Long:          "trackline arranges video, text, and sound clips on a multi-lane timeline and renders the composed edit.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/trackline/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "override logging format (json, console)")

	cmd.AddCommand(
		newProjectsCmd(a),
		newEditCmd(a),
		newRenderCmd(a),
		newJobsCmd(a),
	)

	return cmd
}

// init loads configuration and wires logging. Tests preset a.cfg to skip
// file and environment loading.
func (a *app) init() error {
	if a.cfg == nil {
		loader := config.NewLoader()
		if a.cfgFile != "" {
			loader.SetConfigFile(a.cfgFile)
		}
		cfg, err := loader.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
	}

	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		a.cfg.Logging.Format = a.logFormat
	}

	logging.Init(logging.Config{
		Level:        a.cfg.Logging.Level,
		Format:       a.cfg.Logging.Format,
		EnableCaller: a.cfg.Logging.EnableCaller,
	})

	if err := a.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create data directories: %w", err)
	}

	return nil
}

// database opens the project store on first use.
func (a *app) database() (*store.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := store.Open(a.cfg.DatabasePath(), a.cfg.Database.BusyTimeoutMs)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
