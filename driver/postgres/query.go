package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mwantia/imagestore/data"
)

func (pd *PostgresDriver) Search(ctx context.Context, query *data.Query) ([]*data.ImageRecord, error) {
	stmt, args, err := pd.buildSearchQuery(query)
	if err != nil {
		return nil, data.StoreUnavailable(err)
	}

	conn, err := pd.pool.Acquire(ctx)
	if err != nil {
		return nil, data.StoreUnavailable(err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, stmt, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	records := make([]*data.ImageRecord, 0, query.Limit)
	for rows.Next() {
		var rec data.ImageRecord
		var created int64

		if query.ReturnMetadata {
			var metadataJSON []byte
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

// buildSearchQuery translates a Query into its SQL shape. The metadata filter
// document is forwarded whole as a JSONB containment term, so nested filter
// expressions are evaluated by PostgreSQL itself.
func (pd *PostgresDriver) buildSearchQuery(query *data.Query) (string, []any, error) {
	columns := "identifier, filename, mime, size, width, height, created"
	if query.ReturnMetadata {
		columns += ", metadata"
	}

	var where []string
	var args []any

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if !query.From.IsZero() {
		where = append(where, "created > "+arg(query.From.Unix()))
	}
	if !query.To.IsZero() {
		where = append(where, "created < "+arg(query.To.Unix()))
	}

	if query.HasMetadataQuery() {
		filterJSON, err := json.Marshal(query.MetadataQuery)
		if err != nil {
			return "", nil, err
		}
		where = append(where, "metadata @> "+arg(filterJSON))
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s", columns, pd.table)
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += fmt.Sprintf(" ORDER BY created DESC, identifier DESC LIMIT %s OFFSET %s",
		arg(query.Limit), arg(query.Offset()))

	return stmt, args, nil
}
