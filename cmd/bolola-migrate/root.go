package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dalemusser/bolola/internal/app/system/dbmigrate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	cfg     dbmigrate.Config
	yes     bool
	verbose bool
}

// errNotConfirmed is returned when --yes is missing.
var errNotConfirmed = errors.New("refusing to replace target contents without --yes")

func newRootCmd() *cobra.Command {
	return newRootCmdWith(dbmigrate.MongoDial)
}

func newRootCmdWith(dial dbmigrate.Dialer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "bolola-migrate",
		Short: "Replace a target bolola database with the contents of a source database",
		Long: `Copies users, categories, groups, items and chartitems from the source
database into the target. Each target collection is cleared before it is
refilled. Failed insert batches are counted and reported, not retried.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts, dial)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.cfg.Source.URI, "source-uri", os.Getenv("BOLOLA_MIGRATE_SOURCE_URI"), "MongoDB URI to copy from")
	f.StringVar(&opts.cfg.Source.Database, "source-db", os.Getenv("BOLOLA_MIGRATE_SOURCE_DATABASE"), "database to copy from")
	f.StringVar(&opts.cfg.Target.URI, "target-uri", os.Getenv("BOLOLA_MIGRATE_TARGET_URI"), "MongoDB URI to copy into")
	f.StringVar(&opts.cfg.Target.Database, "target-db", os.Getenv("BOLOLA_MIGRATE_TARGET_DATABASE"), "database to copy into (contents are replaced)")
	f.IntVar(&opts.cfg.BatchSize, "batch-size", dbmigrate.DefaultBatchSize, "documents per insert batch")
	f.BoolVar(&opts.yes, "yes", false, "confirm that the target contents may be replaced")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log each batch")

	return cmd
}

func run(ctx context.Context, out io.Writer, opts options, dial dbmigrate.Dialer) error {
	if err := opts.cfg.Validate(); err != nil {
		return err
	}
	if !opts.yes {
		return errNotConfirmed
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sum, runErr := dbmigrate.New(opts.cfg, dial, logger).Run(ctx)
	if sum != nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("migration failed: %w", runErr)
	}
	if sum.TotalErrors > 0 {
		return fmt.Errorf("migration finished with %d failed documents", sum.TotalErrors)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
