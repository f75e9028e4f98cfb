package data

import "time"

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Query describes one listing request: pagination, an optional creation-time
// range and an optional structured metadata filter. It is a pure value object;
// building one performs no I/O, and drivers translate it into their native
// query shape.
type Query struct {
	// 1-based page index. Values below 1 behave like page 1.
	Page int

	// Maximum number of records returned.
	Limit int

	// Whether metadata is projected into listing results.
	ReturnMetadata bool

	// Optional creation-time bounds. From is exclusive lower (created > From),
	// To is exclusive upper (created < To). Zero values mean unbounded.
	From time.Time
	To   time.Time

	// Structured filter over the metadata map. Opaque to the query itself and
	// forwarded into the driver's combined filter unmodified.
	MetadataQuery Metadata
}

// NewQuery returns a query with default pagination and no filters.
func NewQuery() *Query {
	return &Query{
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}
}

// Offset returns the number of matching records skipped before the limit
// applies. Page 1 and below skip nothing.
func (q *Query) Offset() int {
	if q.Page <= 1 {
		return 0
	}

	return q.Limit * (q.Page - 1)
}

// HasMetadataQuery reports whether a metadata filter should be applied.
func (q *Query) HasMetadataQuery() bool {
	return len(q.MetadataQuery) > 0
}
