// Package filestore keeps unlocked PDFs for a bounded time.
//
// A Store maps an opaque identifier to a model.ProcessedFile. Entries are inserted once and removed
// wholesale, never updated in place. A Reaper periodically sweeps entries older than the
// retention window.
package filestore

import (
	"context"
	"errors"
	"time"

	"doctools/internal/model"
)

var (
	ErrNotFound    = errors.New("processed file not found")
	ErrDuplicateID = errors.New("processed file id already exists")
	ErrInvalidFile = errors.New("processed file requires an id")
)

// Store is safe for concurrent use by request handlers and the reaper.
type Store interface {
	// Save inserts f. It fails with ErrDuplicateID if the id is already present.
	Save(ctx context.Context, f *model.ProcessedFile) error
	// Get returns the entry for id or ErrNotFound. It has no side effects.
	Get(ctx context.Context, id string) (*model.ProcessedFile, error)
	// Has reports whether id is currently stored, without loading content.
	Has(ctx context.Context, id string) bool
	// Sweep removes every entry created strictly before cutoff and returns the removed ids.
	// A failure on one entry does not stop the removal of the others.
	Sweep(ctx context.Context, cutoff time.Time) ([]string, error)
	// Len is the number of entries currently stored.
	Len() int
}
