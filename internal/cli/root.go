// Package cli implements the textflow command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cognicore/textflow/pkg/textflow/config"
	"github.com/cognicore/textflow/pkg/textflow/logging"
)

// app carries the state shared by every subcommand.
type app struct {
	cfgFile  string
	logLevel string
	dbPath   string

	cfg config.Config
	log *logging.Logger
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "textflow",
		Short: "Staged text-processing pipeline with dataset lineage",
		Long: `textflow collects text, cleans and preprocesses it, turns it into
vectors and keeps every intermediate dataset linked to the one it came from.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (TEXTFLOW_*)
3. Config file (--config)
4. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite lineage database (selects the sqlite store)")

	root.AddCommand(
		newTokenizeCommand(a),
		newStopwordsCommand(a),
		newVectorizeCommand(a),
		newRunCommand(a),
		newLineageCommand(a),
		newListCommand(a),
		newSimilarCommand(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		v.Set("store.driver", "sqlite")
		v.Set("store.path", a.dbPath)
	}
	if flags.Changed("log-level") {
		v.Set("log.level", a.logLevel)
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	logger, err := logging.FromConfig(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger
	return nil
}
