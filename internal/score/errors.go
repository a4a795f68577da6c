package score

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingSource is returned when a record source required by the join
// cannot be read at all.
var ErrMissingSource = errors.New("missing source data")

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// MissingIDsError is returned in strict mode when requested admissions have no
// admission record.
type MissingIDsError struct {
	IDs []int64
}

func (e *MissingIDsError) Error() string {
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%d admission id(s) not found: %s", len(e.IDs), strings.Join(parts, ","))
}
