package load

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/db"
	"github.com/gyeh/readmitrisk/internal/model"
	"github.com/gyeh/readmitrisk/internal/source"
)

const channelSize = 1024

// copier is the subset of pgx.Tx and pgxpool.Pool used for COPY.
type copier interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// stream reads one source file with read and COPY-loads the records into
// risk.<table> via a channel-backed CopyFromSource.
func stream[T any, P interface {
	*T
	db.Copyable
}](ctx context.Context, c copier, log zerolog.Logger, fi FileInfo, table string, columns []string,
	read func(path string, log zerolog.Logger, emit func(T) error) (source.ReadStats, error),
) (model.LoadStats, error) {
	start := time.Now()
	stats := model.LoadStats{Kind: fi.Kind, FilePath: fi.Path, FileSHA256: fi.SHA256}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan P, channelSize)
	errCh := make(chan error, 1)
	var readStats source.ReadStats

	// Producer goroutine: read Parquet → normalize → push to channel
	go func() {
		defer close(ch)
		var err error
		readStats, err = read(fi.Path, log, func(rec T) error {
			select {
			case ch <- P(&rec):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		errCh <- err
	}()

	// Consumer: COPY from channel into the table
	rows, err := c.CopyFrom(ctx, pgx.Identifier{"risk", table}, columns, db.NewChannelSource(ch))
	if err != nil {
		cancel()
		<-errCh
		return stats, fmt.Errorf("copy %s: %w", table, err)
	}

	// Wait for producer to finish
	if prodErr := <-errCh; prodErr != nil {
		return stats, fmt.Errorf("read %s: %w", fi.Kind, prodErr)
	}

	stats.RowsRead = readStats.RowsRead
	stats.RowsRejected = readStats.RowsRejected
	stats.RowsLoaded = rows
	stats.Duration = time.Since(start)

	log.Info().
		Str("table", table).
		Int64("rows_read", stats.RowsRead).
		Int64("rows_loaded", stats.RowsLoaded).
		Int64("rows_rejected", stats.RowsRejected).
		Str("duration", stats.Duration.String()).
		Float64("rows_per_sec", float64(stats.RowsLoaded)/stats.Duration.Seconds()).
		Msg("copy complete")
	return stats, nil
}

// Stage copies all three source files through c.
func Stage(ctx context.Context, c copier, log zerolog.Logger, pf *PreflightResult) ([]model.LoadStats, error) {
	adm, err := stream[model.Admission](ctx, c, log, pf.Admissions, "admissions", model.AdmissionColumns(), source.ReadAdmissions)
	if err != nil {
		return nil, err
	}
	com, err := stream[model.Comorbidity](ctx, c, log, pf.Comorbidities, "comorbidities", model.ComorbidityColumns(), source.ReadComorbidities)
	if err != nil {
		return nil, err
	}
	pat, err := stream[model.Patient](ctx, c, log, pf.Patients, "patients", model.PatientColumns(), source.ReadPatients)
	if err != nil {
		return nil, err
	}
	return []model.LoadStats{adm, com, pat}, nil
}
