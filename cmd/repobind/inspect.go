package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/repobind/repobind/pkg/config"
	"github.com/repobind/repobind/pkg/discovery"
	"github.com/repobind/repobind/pkg/errors"
	"github.com/repobind/repobind/pkg/logging"
	"github.com/repobind/repobind/pkg/registry"
	"github.com/repobind/repobind/pkg/sqlrepo"
)

func newInspectCmd() *cobra.Command {
	var (
		configDir string
		dsn       string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Run a discovery pass over the sample model and report it",
		Long: `Inspect loads the configuration, opens the orders database, runs one
discovery pass over its candidates and prints what was registered, what
was skipped, and why.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.inspect")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			settings, err := config.Load(configDir)
			if err != nil {
				return err
			}

			// config-level verbose raises the effective verbosity to
			// debug unless the -v flag already asked for more
			if settings.Verbose && verbosity < 2 {
				logging.SetupLogger(2)
			}

			logger.Debug().
				Bool("enabled", settings.Enabled).
				Bool("proxies", settings.Proxy.Enabled).
				Bool("verbose", settings.Verbose).
				Msg("Configuration loaded")

			db, err := sqlrepo.Open(dsn)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			seqs, err := sqlrepo.Sequences(ctx, db)
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal,
					"failed to seed order sequences")
			}

			beans := registry.NewBeans()
			if err := beans.Register(settings.Sequences.Bean, seqs); err != nil {
				return err
			}

			registrar := discovery.NewRegistrar(discovery.Options{
				Enabled:   settings.Enabled,
				Proxies:   settings.Proxy.Enabled,
				Packages:  settings.Scan.Packages,
				Exclude:   settings.Scan.Exclude,
				Sequences: seqs,
				Tx:        sqlrepo.NewTxManager(db),
			}, beans)

			report, err := registrar.Run(discovery.NewStaticScanner(sqlrepo.Candidates(db)...))
			if err != nil {
				return err
			}

			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory searched for a repobind config file (default: working directory)")
	cmd.Flags().StringVar(&dsn, "db", "repobind.db", "SQLite database path")

	return cmd
}
