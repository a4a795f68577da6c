package db

import (
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/readmitrisk/internal/model"
)

// Copyable is a row that knows its own COPY column values.
type Copyable interface {
	CopyValues() []any
}

// ChannelSource implements pgx.CopyFromSource by reading rows from a channel.
// This provides natural backpressure between a file reader and the COPY writer.
type ChannelSource[T Copyable] struct {
	ch      <-chan T
	current T
}

// NewChannelSource creates a CopyFromSource backed by a channel.
func NewChannelSource[T Copyable](ch <-chan T) *ChannelSource[T] {
	return &ChannelSource[T]{ch: ch}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *ChannelSource[T]) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	return true
}

// Values returns the current row's values in COPY column order.
func (s *ChannelSource[T]) Values() ([]any, error) {
	return s.current.CopyValues(), nil
}

// Err always returns nil; producers report their own errors out of band.
func (s *ChannelSource[T]) Err() error {
	return nil
}

// SliceSource returns a CopyFromSource over an in-memory slice.
func SliceSource[T Copyable](rows []T) pgx.CopyFromSource {
	return pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return rows[i].CopyValues(), nil
	})
}

// Compile-time check that ChannelSource satisfies the interface.
var _ pgx.CopyFromSource = (*ChannelSource[*model.ScoredRow])(nil)
