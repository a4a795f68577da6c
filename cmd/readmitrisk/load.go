package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/readmitrisk/internal/db"
	"github.com/gyeh/readmitrisk/internal/exitcode"
	"github.com/gyeh/readmitrisk/internal/load"
	"github.com/gyeh/readmitrisk/internal/logging"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Bulk-load admission, comorbidity and patient Parquet files into Postgres",
	RunE:  runLoad,
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&cfg.Files.Admissions, "admissions", "", "Admissions Parquet file (required)")
	f.StringVar(&cfg.Files.Comorbidities, "comorbidities", "", "Comorbidities Parquet file (required)")
	f.StringVar(&cfg.Files.Patients, "patients", "", "Patients Parquet file (required)")
	f.BoolVar(&cfg.Truncate, "truncate", false, "Empty the source tables before loading")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.ValidateFiles(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if cfg.DSN == "" {
		log.Error().Msg("--dsn or READMIT_DSN is required")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN, 0)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := load.Run(ctx, pool, log, cfg.Files, load.Options{Truncate: cfg.Truncate})
	if err != nil {
		pool.Close()
		if pe, ok := err.(*load.PipelineError); ok {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("load failed")
			switch pe.Phase {
			case "preflight":
				os.Exit(exitcode.ValidationError)
			default:
				os.Exit(exitcode.CopyError)
			}
		}
		log.Error().Err(err).Msg("load failed")
		os.Exit(exitcode.CopyError)
	}

	fmt.Printf("Load complete: %d rows loaded, %d rows rejected (%.1fs)\n",
		summary.RowsLoaded(), summary.RowsRejected(), summary.DurationTotal.Seconds())
	if summary.RowsRejected() > 0 {
		pool.Close()
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}
