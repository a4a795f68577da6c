package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/readmitrisk/internal/exitcode"
	"github.com/gyeh/readmitrisk/internal/forest"
	"github.com/gyeh/readmitrisk/internal/logging"
	"github.com/gyeh/readmitrisk/internal/score"
)

var scoreIDs string

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score admissions and print the id → readmissionRisk mapping",
	RunE:  runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.StringVar(&scoreIDs, "ids", "", "Admission ids, e.g. 10,20,30 or [10,20,30] (required)")
	f.BoolVar(&cfg.Save, "save", false, "Persist scores to risk.scored_admissions (requires --dsn)")
	_ = scoreCmd.MarkFlagRequired("ids")
	addSourceFlags(scoreCmd)
	addScoringFlags(scoreCmd)
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	validate := cfg.Validate
	if cfg.Save {
		validate = cfg.ValidateWithDSN
	}
	if err := validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.ValidateForest(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	ids, err := score.ParseIDs(scoreIDs)
	if err != nil {
		log.Error().Err(err).Msg("bad --ids")
		os.Exit(exitcode.UsageError)
	}

	f, err := forest.Load(cfg.ForestPath, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to load forest")
		os.Exit(exitcode.ModelError)
	}

	src, code := openSource(ctx, log, cfg.Save)
	if code != exitcode.Success {
		os.Exit(code)
	}
	defer src.Close()

	res, err := score.Run(ctx, src.src, f, ids, score.Options{Strict: cfg.Strict, Workers: cfg.Workers}, log)
	if err != nil {
		logFailure(log, err, "scoring failed")
		src.Close()
		os.Exit(exitFor(err))
	}

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(res.Response); err != nil {
		return err
	}

	if cfg.Save {
		if _, err := score.Save(ctx, src.pool, res, log); err != nil {
			log.Error().Err(err).Msg("saving scores failed")
			src.Close()
			os.Exit(exitcode.PartialSuccess)
		}
	}
	return nil
}
