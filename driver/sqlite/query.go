package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mwantia/imagestore/data"
)

func (sd *SQLiteDriver) Search(ctx context.Context, query *data.Query) ([]*data.ImageRecord, error) {
	stmt, args := sd.buildSearchQuery(query)

	rows, err := sd.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	records := make([]*data.ImageRecord, 0, query.Limit)
	for rows.Next() {
		var rec data.ImageRecord
		var created int64

		if query.ReturnMetadata {
			var metadataJSON sql.NullString
			if err := rows.Scan(&rec.Identifier, &rec.Filename, &rec.MimeType,
				&rec.Size, &rec.Width, &rec.Height, &created, &metadataJSON); err != nil {
				return nil, data.StoreUnavailable(err)
			}
			rec.Metadata = unmarshalMetadata(metadataJSON)
		} else {
			if err := rows.Scan(&rec.Identifier, &rec.Filename, &rec.MimeType,
				&rec.Size, &rec.Width, &rec.Height, &created); err != nil {
				return nil, data.StoreUnavailable(err)
			}
		}

		rec.Created = time.Unix(created, 0)
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, data.StoreUnavailable(err)
	}

	return records, nil
}

// buildSearchQuery translates a Query into its SQL shape: strict time bounds,
// JSON field-extraction equality terms for the metadata filter, newest-first
// ordering and LIMIT/OFFSET pagination. Filter keys and values both bind as
// parameters; no part of the filter document reaches the statement text.
func (sd *SQLiteDriver) buildSearchQuery(query *data.Query) (string, []any) {
	columns := "identifier, filename, mime, size, width, height, created"
	if query.ReturnMetadata {
		columns += ", metadata"
	}

	var where []string
	var args []any

	if !query.From.IsZero() {
		where = append(where, "created > ?")
		args = append(args, query.From.Unix())
	}
	if !query.To.IsZero() {
		where = append(where, "created < ?")
		args = append(args, query.To.Unix())
	}

	if query.HasMetadataQuery() {
		// Sort keys so the generated statement is deterministic
		keys := make([]string, 0, len(query.MetadataQuery))
		for key := range query.MetadataQuery {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		// The key comes from the user's filter document, so it binds as a
		// parameter like any value; a key unknown to a record extracts NULL
		// and the conjunction term fails for that record.
		for _, key := range keys {
			where = append(where, "metadata ->> ? = ?")
			args = append(args, key, jsonArg(query.MetadataQuery[key]))
		}
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s", columns, sd.table)
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY created DESC, identifier DESC LIMIT ? OFFSET ?"
	args = append(args, query.Limit, query.Offset())

	return stmt, args
}

// jsonArg binds a metadata filter value. Scalars bind directly; structured
// values compare against the minified JSON text the extraction produces.
func jsonArg(value any) any {
	switch value.(type) {
	case nil, string, bool, float64, float32, int, int32, int64:
		return value
	}

	bytes, err := json.Marshal(value)
	if err != nil {
		return nil
	}

	return string(bytes)
}
