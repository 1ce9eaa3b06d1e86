package model

import "time"

// RawPage is one fetched response body, kept for the optional archive.
type RawPage struct {
	ID        string
	RunID     string
	Pipeline  string
	SourceURL string
	Body      []byte
	FetchedAt time.Time
}

// Run describes a single pipeline invocation.
type Run struct {
	ID          string
	Pipeline    string
	StartedAt   time.Time
	FinishedAt  time.Time
	RecordCount int
	OutputPath  string
}
