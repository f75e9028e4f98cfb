package data

import (
	"time"

	"github.com/google/uuid"
)

// Metadata holds the free-form annotations attached to an image record.
// It is always replaced as a whole unit, never merged field by field.
type Metadata map[string]any

// ImageRecord describes a single stored image. The binary payload itself
// lives elsewhere; this is the metadata entry the store drivers persist.
type ImageRecord struct {
	// Store-internal surrogate key. Never serialized towards callers.
	ID string `json:"-" bson:"_id,omitempty"`

	// Caller-visible, globally unique identifier.
	Identifier string `json:"identifier" bson:"identifier"`

	Filename string `json:"filename" bson:"filename"`
	MimeType string `json:"mime" bson:"mime"`

	// Size in bytes
	Size int64 `json:"size" bson:"size"`

	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`

	// Assigned by the store at insert time and immutable afterwards.
	Created time.Time `json:"created" bson:"created"`

	Metadata Metadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// NewImageRecord creates a record with a fresh surrogate ID and an empty
// metadata map. Created is left zero and assigned by the driver at insert.
func NewImageRecord(identifier, filename, mime string, size int64, width, height int) *ImageRecord {
	return &ImageRecord{
		ID:         NewRecordID(),
		Identifier: identifier,
		Filename:   filename,
		MimeType:   mime,
		Size:       size,
		Width:      width,
		Height:     height,
		Metadata:   make(Metadata),
	}
}

// NewRecordID returns a fresh surrogate key for a record.
func NewRecordID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Project returns a listing copy of the record: core fields always, metadata
// only when requested, the surrogate key never.
func (r *ImageRecord) Project(withMetadata bool) *ImageRecord {
	out := &ImageRecord{
		Identifier: r.Identifier,
		Filename:   r.Filename,
		MimeType:   r.MimeType,
		Size:       r.Size,
		Width:      r.Width,
		Height:     r.Height,
		Created:    r.Created,
	}

	if withMetadata {
		out.Metadata = r.Metadata.Clone()
	}

	return out
}

// Clone returns a shallow copy of the metadata map. A nil receiver yields an
// empty, non-nil map so callers never observe nil metadata.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

// LastModified returns the most recent creation time within records.
// An empty slice yields the zero time, which keeps derived markers stable
// for an unchanged (even empty) result set.
func LastModified(records []*ImageRecord) time.Time {
	var last time.Time
	for _, r := range records {
		if r.Created.After(last) {
			last = r.Created
		}
	}

	return last
}
