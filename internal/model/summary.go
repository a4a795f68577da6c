package model

import "time"

// RunSummary captures metrics from a single scoring run.
type RunSummary struct {
	RunID          string
	ForestSHA256   string
	Trees          int
	IDsRequested   int
	RecordsJoined  int
	IDsDropped     int
	RowsSaved      int64
	DurationFetch  time.Duration
	DurationJoin   time.Duration
	DurationEncode time.Duration
	DurationScore  time.Duration
	DurationTotal  time.Duration
}

// LoadStats captures metrics for one source file of a load run.
type LoadStats struct {
	Kind         SourceKind
	FilePath     string
	FileSHA256   string
	RowsRead     int64
	RowsLoaded   int64
	RowsRejected int64
	Duration     time.Duration
}

// LoadSummary captures metrics from a single load run.
type LoadSummary struct {
	LoadID        string
	Truncated     bool
	Files         []LoadStats
	DurationTotal time.Duration
}

// RowsLoaded returns the total rows copied across all files.
func (s *LoadSummary) RowsLoaded() int64 {
	var n int64
	for _, f := range s.Files {
		n += f.RowsLoaded
	}
	return n
}

// RowsRejected returns the total rows rejected across all files.
func (s *LoadSummary) RowsRejected() int64 {
	var n int64
	for _, f := range s.Files {
		n += f.RowsRejected
	}
	return n
}
