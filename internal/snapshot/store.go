// Package snapshot persists canvas snapshots. Every save appends a new
// version; loads return the latest one.
package snapshot

import (
	"context"
	"errors"

	"github.com/venkeey/viscanvas-sub000/internal/document"
)

var (
	ErrNotFound          = errors.New("snapshot not found")
	ErrInvalidDocumentID = errors.New("invalid document id")
)

// Store saves and loads versioned snapshots.
type Store interface {
	// Save stores snap as the next version of its document and fills in
	// its ID and Version.
	Save(ctx context.Context, snap *document.Snapshot) error
	// Latest returns the newest snapshot of a document, or ErrNotFound.
	Latest(ctx context.Context, documentID string) (*document.Snapshot, error)
	Close()
}
