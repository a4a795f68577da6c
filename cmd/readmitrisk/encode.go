package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyeh/readmitrisk/internal/encode"
	"github.com/gyeh/readmitrisk/internal/exitcode"
	"github.com/gyeh/readmitrisk/internal/logging"
	"github.com/gyeh/readmitrisk/internal/model"
	"github.com/gyeh/readmitrisk/internal/score"
)

var encodeIDs string

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Dry-run join and encode (no model, no writes)",
	RunE:  runEncode,
}

func init() {
	f := encodeCmd.Flags()
	f.StringVar(&encodeIDs, "ids", "", "Admission ids, e.g. 10,20,30 (required)")
	_ = encodeCmd.MarkFlagRequired("ids")
	addSourceFlags(encodeCmd)
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	ids, err := score.ParseIDs(encodeIDs)
	if err != nil {
		log.Error().Err(err).Msg("bad --ids")
		os.Exit(exitcode.UsageError)
	}

	src, code := openSource(ctx, log, false)
	if code != exitcode.Success {
		os.Exit(code)
	}
	defer src.Close()

	joined, vectors, dropped, err := score.JoinAndEncode(ctx, src.src, ids, score.Options{}, log)
	if err != nil {
		logFailure(log, err, "encode failed")
		src.Close()
		os.Exit(exitFor(err))
	}

	// Print report
	fmt.Println("=== readmitrisk encode ===")
	fmt.Printf("Source:    %s\n", cfg.Source)
	fmt.Printf("Requested: %d ids\n", len(ids))
	fmt.Printf("Joined:    %d records\n", len(joined))
	fmt.Printf("Dropped:   %d %v\n", len(dropped), dropped)
	fmt.Println()

	fmt.Printf("%-10s", "hadm_id")
	for _, col := range model.FeatureColumns {
		fmt.Printf(" %14s", col)
	}
	fmt.Println()

	unmapped := make(map[string]int)
	for i, rec := range joined {
		fmt.Printf("%-10d", rec.HadmID)
		for _, v := range vectors[i] {
			fmt.Printf(" %14g", v)
		}
		fmt.Println()
		for _, field := range encode.Unmapped(rec) {
			unmapped[field]++
		}
	}

	if len(unmapped) > 0 {
		fmt.Println()
		fmt.Println("Values in fallback buckets:")
		var fields []string
		for _, t := range encode.Tables {
			if n := unmapped[t.Field]; n > 0 {
				fields = append(fields, fmt.Sprintf("%s=%d", t.Field, n))
			}
		}
		fmt.Printf("  %s\n", strings.Join(fields, ", "))
	}
	return nil
}
