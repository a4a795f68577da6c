package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gyeh/readmitrisk/internal/config"
	"github.com/gyeh/readmitrisk/internal/exitcode"
)

var (
	cfg        = envDefaults()
	configPath string
)

// envDefaults seeds cfg from READMIT_* variables before any flag is registered.
func envDefaults() config.Config {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "environment: %v\n", err)
		os.Exit(exitcode.UsageError)
	}
	return env.Defaults()
}

var rootCmd = &cobra.Command{
	Use:   "readmitrisk",
	Short: "30-day hospital readmission risk scorer",
	Long: "Joins admission, comorbidity and patient records, encodes each admission into a " +
		"feature vector and scores it with a decision-tree forest.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfigFile,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", cfg.DSN, "Postgres connection string (or set READMIT_DSN / DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	pf.StringVar(&configPath, "config", "", "YAML config file (flags override it)")
}

// addSourceFlags registers the record-source flags on cmd.
func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cfg.Source, "source", cfg.Source, "Record source: parquet, postgres or mongo")
	f.StringVar(&cfg.Files.Admissions, "admissions", "", "Admissions Parquet file")
	f.StringVar(&cfg.Files.Comorbidities, "comorbidities", "", "Comorbidities Parquet file")
	f.StringVar(&cfg.Files.Patients, "patients", "", "Patients Parquet file")
	f.StringVar(&cfg.MongoURL, "mongo-url", cfg.MongoURL, "MongoDB URL including the database (or set READMIT_MONGO_URL)")
}

// addScoringFlags registers the model and run flags on cmd.
func addScoringFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cfg.ForestPath, "forest", cfg.ForestPath, "Forest JSON file (or set READMIT_FOREST)")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Scoring workers (0 = number of CPUs)")
	f.BoolVar(&cfg.Strict, "strict", false, "Fail when any requested id has no admission record")
}

// loadConfigFile merges --config into cfg, then re-applies any flag set on
// the command line so flags keep precedence over the file.
func loadConfigFile(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		return nil
	}
	if err := cfg.LoadFromFile(configPath); err != nil {
		return err
	}
	var setErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if err := f.Value.Set(f.Value.String()); err != nil && setErr == nil {
			setErr = fmt.Errorf("--%s: %w", f.Name, err)
		}
	})
	return setErr
}
