package main

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/readmitrisk/internal/exitcode"
	"github.com/gyeh/readmitrisk/internal/forest"
	"github.com/gyeh/readmitrisk/internal/logging"
	"github.com/gyeh/readmitrisk/internal/score"
	"github.com/gyeh/readmitrisk/internal/source"
)

var (
	planSample int
	planSeed   uint64
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Sample a discharge population, score it and save it as the processed population",
	Long: "Draws --sample distinct admissions from the configured source, scores them and " +
		"stores the run in risk.scored_admissions and risk.discharge_plans. The newest plan " +
		"backs the /v1/processed and /v1/distributions endpoints.",
	RunE: runPlan,
}

func init() {
	f := planCmd.Flags()
	f.IntVar(&planSample, "sample", score.DefaultSampleSize, "Number of admissions to sample")
	f.Uint64Var(&planSeed, "seed", 0, "Random seed (0 picks a random sample each run)")
	addSourceFlags(planCmd)
	addScoringFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.ValidateForest(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if planSample <= 0 {
		log.Error().Int("sample", planSample).Msg("--sample must be positive")
		os.Exit(exitcode.UsageError)
	}

	f, err := forest.Load(cfg.ForestPath, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to load forest")
		os.Exit(exitcode.ModelError)
	}

	src, code := openSource(ctx, log, true)
	if code != exitcode.Success {
		os.Exit(code)
	}
	defer src.Close()

	pop, ok := src.src.(source.Population)
	if !ok {
		log.Error().Str("source", cfg.Source).Msg("source cannot list admissions")
		src.Close()
		os.Exit(exitcode.SourceError)
	}

	var r *rand.Rand
	if planSeed != 0 {
		r = rand.New(rand.NewPCG(planSeed, planSeed))
	}
	plan, err := score.Plan(ctx, pop, f, planSample, r, score.Options{Strict: cfg.Strict, Workers: cfg.Workers}, log)
	if err != nil {
		logFailure(log, err, "discharge plan failed")
		src.Close()
		os.Exit(exitFor(err))
	}

	if _, err := score.SavePlan(ctx, src.pool, plan, log); err != nil {
		log.Error().Err(err).Msg("saving plan failed")
		src.Close()
		os.Exit(exitcode.CopyError)
	}

	return json.NewEncoder(os.Stdout).Encode(plan.Response)
}
