package driver

import (
	"context"

	"github.com/mwantia/imagestore/data"
)

// ImageDriver is the capability every backing store implements: lifecycle
// plus CRUD and filtered search over image records. Any store may implement
// it; implementations are selected by explicit construction.
//
// Every operation translates backend faults into the data error taxonomy
// before returning. Backend-specific error types never cross this boundary.
type ImageDriver interface {
	// Returns the identifier name defined for this driver
	Name() string
	// Open is part of the lifecycle behaviour and gets called when opening this driver.
	Open(ctx context.Context) error
	// Close is part of the lifecycle behaviour and gets called when closing this driver.
	Close(ctx context.Context) error

	// Capabilities returns the set of capabilities supported by this driver.
	Capabilities() *Capabilities

	// Insert stores a new record under identifier. The store assigns the
	// creation time (when unset) and rejects duplicates with ErrImageExists.
	// The duplicate check is atomic to the store, not check-then-insert.
	Insert(ctx context.Context, identifier string, record *data.ImageRecord) error

	// Delete removes exactly one record. ErrImageNotFound when absent.
	Delete(ctx context.Context, identifier string) error

	// ReplaceMetadata atomically replaces the whole metadata map of a record.
	// Prior metadata is discarded, never merged.
	ReplaceMetadata(ctx context.Context, identifier string, metadata data.Metadata) error

	// GetMetadata returns the record's metadata map, empty but non-nil when
	// none was ever set.
	GetMetadata(ctx context.Context, identifier string) (data.Metadata, error)

	// ClearMetadata replaces the metadata map with an empty one. Failures are
	// re-signaled as ErrMetadataClear so callers can tell clears from sets.
	ClearMetadata(ctx context.Context, identifier string) error

	// Search returns the projected records matching query, ordered by
	// creation time descending and paginated per the query.
	Search(ctx context.Context, query *data.Query) ([]*data.ImageRecord, error)

	// Load returns the core fields of one record, without metadata.
	Load(ctx context.Context, identifier string) (*data.ImageRecord, error)
}
