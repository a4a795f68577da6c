package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/normalize"
	embedsql "github.com/gyeh/readmitrisk/internal/sql"
)

// ErrMigrationChanged is returned when an embedded migration no longer
// matches the digest recorded when it was applied.
var ErrMigrationChanged = errors.New("migration changed since it was applied")

const ledgerDDL = `CREATE SCHEMA IF NOT EXISTS risk;
CREATE TABLE IF NOT EXISTS risk.schema_migrations (
    name       TEXT PRIMARY KEY,
    sha256     TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// ApplyMigrations runs the embedded SQL migrations in filename order. Each
// one is applied in its own transaction and recorded in risk.schema_migrations;
// already recorded migrations are skipped.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	entries, err := fs.ReadDir(embedsql.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	if _, err := pool.Exec(ctx, ledgerDDL); err != nil {
		return fmt.Errorf("create migration ledger: %w", err)
	}

	applied, skipped := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		data, err := fs.ReadFile(embedsql.Migrations, "migrations/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		digest, err := normalize.ReaderDigest(bytes.NewReader(data))
		if err != nil {
			return err
		}

		var recorded string
		err = pool.QueryRow(ctx, `SELECT sha256 FROM risk.schema_migrations WHERE name = $1`, name).Scan(&recorded)
		switch {
		case err == nil && recorded == digest.SHA256:
			skipped++
			continue
		case err == nil:
			return fmt.Errorf("%s: %w", name, ErrMigrationChanged)
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("check migration %s: %w", name, err)
		}

		log.Debug().Str("migration", name).Str("sha256", digest.SHA256).Msg("applying migration")
		if err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO risk.schema_migrations (name, sha256) VALUES ($1, $2)`, name, digest.SHA256)
			return err
		}); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		applied++
	}

	log.Info().Int("applied", applied).Int("skipped", skipped).Msg("migrations applied")
	return nil
}
