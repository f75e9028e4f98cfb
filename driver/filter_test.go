package driver_test

import (
	"testing"
	"time"

	"github.com/mwantia/imagestore/data"
	"github.com/mwantia/imagestore/driver"
)

func TestEvalQueryTieBreak(t *testing.T) {
	at := time.Unix(1700000000, 0)

	records := []*data.ImageRecord{
		{Identifier: "img-a", Created: at},
		{Identifier: "img-c", Created: at},
		{Identifier: "img-b", Created: at},
	}

	query := data.NewQuery()
	query.Limit = 2

	page1 := driver.EvalQuery(records, query)
	query.Page = 2
	page2 := driver.EvalQuery(records, query)

	// Equal timestamps must still paginate without skips or repeats
	seen := make(map[string]bool)
	for _, rec := range append(page1, page2...) {
		if seen[rec.Identifier] {
			t.Errorf("Record %s returned twice across pages", rec.Identifier)
		}
		seen[rec.Identifier] = true
	}
	if len(seen) != 3 {
		t.Errorf("Expected all 3 records across pages, got %d", len(seen))
	}
}

func TestEvalQueryOffsetBeyondEnd(t *testing.T) {
	records := []*data.ImageRecord{
		{Identifier: "img-1", Created: time.Unix(100, 0)},
	}

	query := data.NewQuery()
	query.Page = 5
	query.Limit = 10

	if got := driver.EvalQuery(records, query); len(got) != 0 {
		t.Errorf("Expected empty page beyond the result set, got %d records", len(got))
	}
}

func TestEvalQueryNumericMetadata(t *testing.T) {
	records := []*data.ImageRecord{
		{Identifier: "img-1", Created: time.Unix(100, 0), Metadata: data.Metadata{"rank": 3}},
		{Identifier: "img-2", Created: time.Unix(200, 0), Metadata: data.Metadata{"rank": 4}},
	}

	// JSON-decoded filters carry float64 values; stored values may be ints
	query := data.NewQuery()
	query.MetadataQuery = data.Metadata{"rank": float64(3)}

	got := driver.EvalQuery(records, query)
	if len(got) != 1 || got[0].Identifier != "img-1" {
		t.Errorf("Expected numeric filter match across representations, got %v", identifiers(got))
	}
}

func identifiers(records []*data.ImageRecord) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Identifier)
	}
	return out
}
