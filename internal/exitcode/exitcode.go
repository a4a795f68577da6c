package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	SourceError     = 4
	ModelError      = 5
	ScoreError      = 6
	CopyError       = 7
	PartialSuccess  = 8
)
