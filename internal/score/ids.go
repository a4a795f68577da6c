package score

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidIDs is returned when an id list cannot be parsed.
var ErrInvalidIDs = errors.New("invalid admission ids")

// ParseIDs parses a comma-separated id list, optionally wrapped in brackets:
// "[1, 2]" and "1,2" are equivalent. Blank input yields no ids.
func ParseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return []int64{}, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIDs, strings.TrimSpace(p))
		}
		ids = append(ids, id)
	}
	return ids, CheckIDs(ids)
}

// CheckIDs rejects negative ids.
func CheckIDs(ids []int64) error {
	for _, id := range ids {
		if id < 0 {
			return fmt.Errorf("%w: %d is negative", ErrInvalidIDs, id)
		}
	}
	return nil
}
