package driver

import (
	"reflect"
	"sort"

	"github.com/mwantia/imagestore/data"
)

// EvalQuery is the query translation for stores without a native query
// language: filter, order by creation time descending, apply the page window
// and project each record. The input slice is not modified.
//
// Ties on creation time are broken by identifier so pagination never skips or
// repeats records across pages.
func EvalQuery(records []*data.ImageRecord, query *data.Query) []*data.ImageRecord {
	matched := make([]*data.ImageRecord, 0, len(records))
	for _, rec := range records {
		if Matches(rec, query) {
			matched = append(matched, rec)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Created.Equal(matched[j].Created) {
			return matched[i].Created.After(matched[j].Created)
		}
		return matched[i].Identifier > matched[j].Identifier
	})

	offset := query.Offset()
	if offset >= len(matched) {
		return []*data.ImageRecord{}
	}
	matched = matched[offset:]

	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	out := make([]*data.ImageRecord, 0, len(matched))
	for _, rec := range matched {
		out = append(out, rec.Project(query.ReturnMetadata))
	}

	return out
}

// Matches reports whether a record satisfies the query's time range and
// metadata filter. Both bounds are strict; the metadata filter is an equality
// conjunction over the filter document's keys.
func Matches(rec *data.ImageRecord, query *data.Query) bool {
	if !query.From.IsZero() && !rec.Created.After(query.From) {
		return false
	}
	if !query.To.IsZero() && !rec.Created.Before(query.To) {
		return false
	}

	for key, want := range query.MetadataQuery {
		got, ok := rec.Metadata[key]
		if !ok || !equalValues(got, want) {
			return false
		}
	}

	return true
}

// equalValues compares metadata values across storage representations.
// Numbers coming out of JSON decode as float64, so numeric values compare by
// magnitude; everything else compares structurally.
func equalValues(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}

	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}

	return 0, false
}
