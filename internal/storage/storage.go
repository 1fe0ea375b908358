// Package storage persists delivery report files so the pipeline can re-read
// them after the upload request has finished.
package storage

import "context"

// ReportStore stores raw delivery reports and makes them available as local
// files for parsing.
type ReportStore interface {
	// Put stores the file at localPath under key and returns the key.
	Put(ctx context.Context, key, localPath string) (string, error)
	// Fetch materializes the report behind key as a local file and returns
	// its path.
	Fetch(ctx context.Context, key string) (string, error)
}
