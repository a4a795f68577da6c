package load

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/model"
	"github.com/gyeh/readmitrisk/internal/normalize"
	"github.com/gyeh/readmitrisk/internal/parquetread"
	"github.com/gyeh/readmitrisk/internal/source"
)

// FileInfo describes one source file resolved during preflight.
type FileInfo struct {
	Kind model.SourceKind
	// Path is the path as given, stored as-is.
	Path string
	// SHA256 is the hex digest of the file contents.
	SHA256 string
	// Size is the file size in bytes from os.Stat.
	Size int64
	// NumRows is the row count reported by the Parquet footer.
	NumRows int64
}

// PreflightResult holds everything resolved before any rows are written.
type PreflightResult struct {
	Admissions    FileInfo
	Comorbidities FileInfo
	Patients      FileInfo
}

// All returns the file infos in load order.
func (p *PreflightResult) All() []FileInfo {
	return []FileInfo{p.Admissions, p.Comorbidities, p.Patients}
}

// Preflight hashes each file, checks its schema and reads its row count.
func Preflight(files source.Files, log zerolog.Logger) (*PreflightResult, error) {
	start := time.Now()

	adm, err := inspect[model.AdmissionRow](files.Admissions, model.SourceAdmissions)
	if err != nil {
		return nil, err
	}
	com, err := inspect[model.ComorbidityRow](files.Comorbidities, model.SourceComorbidities)
	if err != nil {
		return nil, err
	}
	pat, err := inspect[model.PatientRow](files.Patients, model.SourcePatients)
	if err != nil {
		return nil, err
	}

	res := &PreflightResult{Admissions: adm, Comorbidities: com, Patients: pat}
	for _, fi := range res.All() {
		log.Info().
			Str("source", string(fi.Kind)).
			Str("sha256", fi.SHA256).
			Int64("size", fi.Size).
			Int64("rows", fi.NumRows).
			Msg("source file ok")
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("preflight complete")
	return res, nil
}

func inspect[R any](path string, kind model.SourceKind) (FileInfo, error) {
	fi := FileInfo{Kind: kind, Path: path}

	stat, err := os.Stat(path)
	if err != nil {
		return fi, fmt.Errorf("%s: %w", kind, err)
	}
	fi.Size = stat.Size()

	digest, err := normalize.FileDigest(path)
	if err != nil {
		return fi, fmt.Errorf("%s hash: %w", kind, err)
	}
	fi.SHA256 = digest.SHA256

	r, err := parquetread.Open[R](path)
	if err != nil {
		return fi, fmt.Errorf("%s: %w", kind, err)
	}
	defer r.Close()

	if err := parquetread.ValidateSchema(r.Schema(), model.RequiredColumns[kind]); err != nil {
		return fi, fmt.Errorf("%s schema: %w", kind, err)
	}
	fi.NumRows = r.NumRows()
	return fi, nil
}
