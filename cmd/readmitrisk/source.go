package main

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/config"
	"github.com/gyeh/readmitrisk/internal/db"
	"github.com/gyeh/readmitrisk/internal/exitcode"
	"github.com/gyeh/readmitrisk/internal/score"
	"github.com/gyeh/readmitrisk/internal/source"
)

// opened is a record source plus whatever must be closed with it.
type opened struct {
	src  source.Source
	pool *pgxpool.Pool
	done func()
}

func (o *opened) Close() {
	if o.done != nil {
		o.done()
	}
}

// openSource opens the source selected by cfg. When needPool is set a
// Postgres pool is opened even for non-Postgres sources.
func openSource(ctx context.Context, log zerolog.Logger, needPool bool) (*opened, int) {
	o := &opened{}
	var closers []func()
	o.done = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Source == config.SourcePostgres || needPool {
		pool, err := db.NewPool(ctx, cfg.DSN, 0)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			return nil, exitcode.DBConnError
		}
		o.pool = pool
		closers = append(closers, pool.Close)
	}

	switch cfg.Source {
	case config.SourceParquet:
		mem, err := source.OpenParquet(cfg.Files, log)
		if err != nil {
			o.Close()
			log.Error().Err(err).Msg("failed to read source files")
			return nil, exitcode.SourceError
		}
		o.src = mem
	case config.SourcePostgres:
		o.src = source.NewPostgres(o.pool)
	case config.SourceMongo:
		m, err := source.DialMongo(cfg.MongoURL, cfg.Collections, cfg.MongoTimeout)
		if err != nil {
			o.Close()
			log.Error().Err(err).Msg("mongo connection failed")
			return nil, exitcode.SourceError
		}
		o.src = m
		closers = append(closers, m.Close)
	}
	return o, exitcode.Success
}

// exitFor maps a scoring error to a process exit code.
func exitFor(err error) int {
	var missing *score.MissingIDsError
	switch {
	case errors.As(err, &missing), errors.Is(err, score.ErrInvalidIDs), errors.Is(err, score.ErrInvalidSample):
		return exitcode.ValidationError
	case errors.Is(err, score.ErrMissingSource):
		return exitcode.SourceError
	}
	var pe *score.PipelineError
	if errors.As(err, &pe) {
		switch pe.Phase {
		case "sample", "fetch", "join":
			return exitcode.SourceError
		case "score":
			return exitcode.ScoreError
		}
	}
	return exitcode.ScoreError
}

// logFailure logs a scoring error with its phase when it has one.
func logFailure(log zerolog.Logger, err error, msg string) {
	var pe *score.PipelineError
	if errors.As(err, &pe) {
		log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg(msg)
		return
	}
	log.Error().Err(err).Msg(msg)
}
