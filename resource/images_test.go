package resource_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/mwantia/imagestore/data"
	"github.com/mwantia/imagestore/event"
	"github.com/mwantia/imagestore/resource"
)

func TestParseListParams(t *testing.T) {
	params := url.Values{}
	params.Set("page", "3")
	params.Set("limit", "50")
	params.Set("metadata", "1")
	params.Set("from", "1700000000")
	params.Set("to", "1700003600")
	params.Set("query", `{"tag":"cat"}`)

	query := resource.ParseListParams(params)

	if query.Page != 3 || query.Limit != 50 {
		t.Errorf("Expected page=3 limit=50, got page=%d limit=%d", query.Page, query.Limit)
	}
	if !query.ReturnMetadata {
		t.Error("Expected metadata projection enabled")
	}
	if !query.From.Equal(time.Unix(1700000000, 0)) || !query.To.Equal(time.Unix(1700003600, 0)) {
		t.Errorf("Expected time range parsed, got from=%v to=%v", query.From, query.To)
	}
	if query.MetadataQuery["tag"] != "cat" {
		t.Errorf("Expected metadata filter installed, got %v", query.MetadataQuery)
	}
}

func TestParseListParamsDefaults(t *testing.T) {
	query := resource.ParseListParams(url.Values{})

	if query.Page != data.DefaultPage || query.Limit != data.DefaultLimit {
		t.Errorf("Expected defaults, got page=%d limit=%d", query.Page, query.Limit)
	}
	if query.ReturnMetadata || query.HasMetadataQuery() {
		t.Error("Expected no metadata projection or filter by default")
	}
	if !query.From.IsZero() || !query.To.IsZero() {
		t.Error("Expected unbounded time range by default")
	}
}

func TestParseListParamsIgnoresGarbage(t *testing.T) {
	params := url.Values{}
	params.Set("page", "-2")
	params.Set("limit", "zero")
	params.Set("from", "yesterday")
	params.Set("query", "{not json")

	query := resource.ParseListParams(params)

	if query.Page != data.DefaultPage || query.Limit != data.DefaultLimit {
		t.Errorf("Expected invalid pagination ignored, got page=%d limit=%d", query.Page, query.Limit)
	}
	if !query.From.IsZero() {
		t.Errorf("Expected invalid from ignored, got %v", query.From)
	}
	// An undecodable filter is dropped, never an error
	if query.HasMetadataQuery() {
		t.Errorf("Expected undecodable filter dropped, got %v", query.MetadataQuery)
	}
}

func TestGetSetsETagAfterLoad(t *testing.T) {
	events := event.NewDispatcher()

	marker := time.Unix(1700000000, 0)
	events.Attach(event.TopicImagesLoad, func(ctx context.Context, e *event.Event) error {
		e.Response.Images = []*data.ImageRecord{{Identifier: "img-1", Created: marker}}
		e.Response.LastModified = marker
		return nil
	})

	images := resource.NewImages(events)

	first := event.NewEvent(nil)
	if err := images.Get(context.Background(), first); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	tag := first.Response.Headers.Get("ETag")
	if tag == "" || tag[0] != '"' || tag[len(tag)-1] != '"' {
		t.Fatalf("Expected quoted ETag, got %q", tag)
	}
	if len(first.Response.Images) != 1 {
		t.Fatalf("Expected body populated by the load handler, got %d records", len(first.Response.Images))
	}

	// Unchanged marker yields an identical ETag
	second := event.NewEvent(nil)
	if err := images.Get(context.Background(), second); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if second.Response.Headers.Get("ETag") != tag {
		t.Error("Expected identical ETag for unchanged result set")
	}

	// A different marker changes the ETag
	marker = marker.Add(time.Hour)
	third := event.NewEvent(nil)
	if err := images.Get(context.Background(), third); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if third.Response.Headers.Get("ETag") == tag {
		t.Error("Expected ETag to change with the freshness marker")
	}
}

func TestHeadClearsBodyKeepsHeaders(t *testing.T) {
	events := event.NewDispatcher()
	events.Attach(event.TopicImagesLoad, func(ctx context.Context, e *event.Event) error {
		e.Response.Images = []*data.ImageRecord{{Identifier: "img-1"}}
		e.Response.LastModified = time.Unix(1700000000, 0)
		return nil
	})

	images := resource.NewImages(events)

	e := event.NewEvent(nil)
	if err := images.Head(context.Background(), e); err != nil {
		t.Fatalf("Head failed: %v", err)
	}

	if len(e.Response.Images) != 0 {
		t.Errorf("Expected empty body for head request, got %d records", len(e.Response.Images))
	}
	if e.Response.Headers.Get("ETag") == "" {
		t.Error("Expected ETag header preserved for head request")
	}
}

func TestGetPropagatesHandlerError(t *testing.T) {
	events := event.NewDispatcher()
	boom := errors.New("store down")
	events.Attach(event.TopicImagesLoad, func(ctx context.Context, e *event.Event) error {
		return boom
	})

	images := resource.NewImages(events)

	e := event.NewEvent(nil)
	if err := images.Get(context.Background(), e); !errors.Is(err, boom) {
		t.Fatalf("Expected handler error propagated, got %v", err)
	}
	if e.Response.Headers.Get("ETag") != "" {
		t.Error("Expected no ETag after a failed trigger")
	}
}
