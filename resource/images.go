package resource

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mwantia/imagestore/data"
	"github.com/mwantia/imagestore/event"
)

// Images serves listing reads. It builds a query from the recognized request
// parameters, lets the attached store handler populate the response through
// the db.images.load topic and derives the ETag header from the result's
// freshness marker.
type Images struct {
	events *event.Dispatcher
}

func NewImages(events *event.Dispatcher) *Images {
	return &Images{
		events: events,
	}
}

// Get handles a listing read. Driver and query builder errors are not caught
// here; they unwind to the transport layer.
func (ir *Images) Get(ctx context.Context, e *event.Event) error {
	e.Query = ParseListParams(e.Request.Params)

	if err := ir.events.Trigger(ctx, event.TopicImagesLoad, e); err != nil {
		return err
	}

	e.Response.Headers.Set("ETag", etag(e.Response.LastModified))
	return nil
}

// Head handles the head-only variant: the full listing flow runs, then the
// body is discarded while headers (including ETag) stay intact.
func (ir *Images) Head(ctx context.Context, e *event.Event) error {
	if err := ir.Get(ctx, e); err != nil {
		return err
	}

	e.Response.ClearBody()
	return nil
}

// ParseListParams builds a Query from the recognized listing parameters:
// page, limit, metadata, from, to and query. Unrecognized or malformed values
// fall back to defaults; an undecodable query document is dropped silently so
// the listing proceeds unfiltered on that axis.
func ParseListParams(params url.Values) *data.Query {
	query := data.NewQuery()

	if page, err := strconv.Atoi(params.Get("page")); err == nil && page >= 1 {
		query.Page = page
	}
	if limit, err := strconv.Atoi(params.Get("limit")); err == nil && limit >= 1 {
		query.Limit = limit
	}
	if metadata, err := strconv.ParseBool(params.Get("metadata")); err == nil {
		query.ReturnMetadata = metadata
	}
	if from, err := strconv.ParseInt(params.Get("from"), 10, 64); err == nil {
		query.From = time.Unix(from, 0)
	}
	if to, err := strconv.ParseInt(params.Get("to"), 10, 64); err == nil {
		query.To = time.Unix(to, 0)
	}

	if raw := params.Get("query"); raw != "" {
		var filter data.Metadata
		if err := json.Unmarshal([]byte(raw), &filter); err == nil {
			query.MetadataQuery = filter
		}
	}

	return query
}

// etag derives the response ETag from the freshness marker the store handler
// set. The same marker always yields the same quoted hash.
func etag(lastModified time.Time) string {
	sum := md5.Sum([]byte(lastModified.UTC().Format(http.TimeFormat)))
	return `"` + hex.EncodeToString(sum[:]) + `"`
}
