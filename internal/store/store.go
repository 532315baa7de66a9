package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document has the given ID.
var ErrNotFound = errors.New("document not found")

// Record is one stored transcription. Field names follow the document
// keys in the database, so a record round-trips unchanged.
type Record struct {
	ID          string `json:"id_documento"`
	Titulo      string `json:"titulo"`
	Texto       string `json:"texto"`
	Fecha       string `json:"fecha"`
	AudioFormat string `json:"audio_format,omitempty"`
	AudioSize   int64  `json:"audio_size,omitempty"`
}

// DatabaseStats is a point-in-time summary of the backing database.
type DatabaseStats struct {
	DocCount  int64
	DiskBytes int64
}

// Store persists transcription records. Documents are write-once: there
// are no update or delete operations.
type Store interface {
	// Save writes a new record and returns the generated document ID.
	Save(ctx context.Context, rec *Record) (string, error)
	// Get fetches one record by document ID. Returns ErrNotFound when
	// the ID does not exist.
	Get(ctx context.Context, id string) (*Record, error)
	// List returns up to limit records.
	List(ctx context.Context, limit int64) ([]Record, error)
	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error
}
