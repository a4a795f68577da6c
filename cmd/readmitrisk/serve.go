package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyeh/readmitrisk/internal/exitcode"
	"github.com/gyeh/readmitrisk/internal/forest"
	"github.com/gyeh/readmitrisk/internal/logging"
	"github.com/gyeh/readmitrisk/internal/score"
	"github.com/gyeh/readmitrisk/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring and records API over HTTP",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.IntVar(&cfg.Port, "port", cfg.Port, "Listen port (or set READMIT_PORT)")
	f.BoolVar(&cfg.Save, "save", false, "Persist every scoring run and enable the plan and processed-population endpoints (requires --dsn)")
	addSourceFlags(serveCmd)
	addScoringFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	srv := server.New(server.Deps{
		Source:  src.src,
		Forest:  f,
		Options: score.Options{Strict: cfg.Strict, Workers: cfg.Workers},
		Pool:    src.pool,
		Save:    cfg.Save,
		Port:    cfg.Port,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
