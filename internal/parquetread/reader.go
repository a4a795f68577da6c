package parquetread

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// Reader wraps a parquet GenericReader for streaming source rows of type T.
type Reader[T any] struct {
	file   *os.File
	reader *parquet.GenericReader[T]
}

// Open opens a Parquet file and returns a streaming Reader.
func Open[T any](path string) (*Reader[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	r := parquet.NewGenericReader[T](pf)
	return &Reader[T]{file: f, reader: r}, nil
}

// NumRows returns the total number of rows in the Parquet file.
func (r *Reader[T]) NumRows() int64 {
	return r.reader.NumRows()
}

// Read reads up to len(rows) records into the provided slice.
// Returns the number of rows read and io.EOF when done.
func (r *Reader[T]) Read(rows []T) (int, error) {
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read parquet rows: %w", err)
	}
	return n, err
}

// Schema returns the Parquet schema for validation.
func (r *Reader[T]) Schema() *parquet.Schema {
	return r.reader.Schema()
}

// Close releases all resources.
func (r *Reader[T]) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// ReadAll opens path, validates its schema against cols, and calls fn for every
// row in file order. fn may return an error to abort.
func ReadAll[T any](path string, cols []string, batch int, fn func(rowNum int64, row *T) error) (int64, error) {
	r, err := Open[T](path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	if err := ValidateSchema(r.Schema(), cols); err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	buf := make([]T, batch)
	var rowNum int64
	for {
		n, readErr := r.Read(buf)
		for i := 0; i < n; i++ {
			rowNum++
			if err := fn(rowNum, &buf[i]); err != nil {
				return rowNum, err
			}
		}
		if readErr == io.EOF {
			return rowNum, nil
		}
		if readErr != nil {
			return rowNum, fmt.Errorf("read %s at row %d: %w", path, rowNum, readErr)
		}
	}
}

// WriteFile writes rows to a new Parquet file at path.
func WriteFile[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	w := parquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}
