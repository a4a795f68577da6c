package normalize

import (
	"strings"
	"time"
)

// Timestamp layouts seen in admission and patient exports.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000Z",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
}

// ParseTimestamp attempts to parse a timestamp string in multiple common formats.
// Results are always in UTC. Returns nil if the input is empty or unparseable.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
