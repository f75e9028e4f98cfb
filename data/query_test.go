package data_test

import (
	"testing"
	"time"

	"github.com/mwantia/imagestore/data"
)

func TestNewQueryDefaults(t *testing.T) {
	q := data.NewQuery()

	if q.Page != data.DefaultPage {
		t.Errorf("Expected page %d, got %d", data.DefaultPage, q.Page)
	}
	if q.Limit != data.DefaultLimit {
		t.Errorf("Expected limit %d, got %d", data.DefaultLimit, q.Limit)
	}
	if q.ReturnMetadata {
		t.Error("Expected metadata projection disabled by default")
	}
	if !q.From.IsZero() || !q.To.IsZero() {
		t.Error("Expected unbounded time range by default")
	}
	if q.HasMetadataQuery() {
		t.Error("Expected no metadata filter by default")
	}
}

func TestQueryOffset(t *testing.T) {
	cases := []struct {
		page, limit, want int
	}{
		{1, 10, 0},
		{0, 10, 0},
		{-3, 10, 0},
		{2, 10, 10},
		{3, 10, 20},
		{5, 20, 80},
	}

	for _, c := range cases {
		q := data.Query{Page: c.page, Limit: c.limit}
		if got := q.Offset(); got != c.want {
			t.Errorf("Offset for page=%d limit=%d: expected %d, got %d", c.page, c.limit, got, c.want)
		}
	}
}

func TestRecordProjection(t *testing.T) {
	rec := data.NewImageRecord("img-1", "cat.png", "image/png", 2048, 640, 480)
	rec.Created = time.Unix(1700000000, 0)
	rec.Metadata = data.Metadata{"tag": "cat"}

	got := rec.Project(false)
	if got.ID != "" {
		t.Error("Projection must not expose the surrogate key")
	}
	if got.Metadata != nil {
		t.Error("Projection without metadata must leave the map unset")
	}
	if got.Identifier != "img-1" || got.Filename != "cat.png" || got.MimeType != "image/png" {
		t.Errorf("Core fields lost in projection: %+v", got)
	}
	if got.Size != 2048 || got.Width != 640 || got.Height != 480 {
		t.Errorf("Dimension fields lost in projection: %+v", got)
	}
	if !got.Created.Equal(rec.Created) {
		t.Errorf("Expected created %v, got %v", rec.Created, got.Created)
	}

	withMeta := rec.Project(true)
	if withMeta.Metadata["tag"] != "cat" {
		t.Errorf("Expected metadata projected, got %v", withMeta.Metadata)
	}

	// Projected metadata is a copy, not an alias
	withMeta.Metadata["tag"] = "dog"
	if rec.Metadata["tag"] != "cat" {
		t.Error("Projection must not alias the source metadata map")
	}
}

func TestLastModified(t *testing.T) {
	if !data.LastModified(nil).IsZero() {
		t.Error("Expected zero time for empty result set")
	}

	records := []*data.ImageRecord{
		{Created: time.Unix(100, 0)},
		{Created: time.Unix(300, 0)},
		{Created: time.Unix(200, 0)},
	}

	if got := data.LastModified(records); !got.Equal(time.Unix(300, 0)) {
		t.Errorf("Expected newest creation time, got %v", got)
	}
}
