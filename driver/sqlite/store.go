package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mwantia/imagestore/data"
)

func (sd *SQLiteDriver) Insert(ctx context.Context, identifier string, record *data.ImageRecord) error {
	id := record.ID
	if id == "" {
		id = data.NewRecordID()
	}

	created := record.Created
	if created.IsZero() {
		created = time.Now()
	}

	metadataJSON, err := marshalMetadata(record.Metadata)
	if err != nil {
		return data.StoreUnavailable(err)
	}

	// The UNIQUE constraint on identifier makes the duplicate check atomic
	_, err = sd.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, identifier, filename, mime, size, width, height, created, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sd.table), id, identifier, record.Filename, record.MimeType,
		record.Size, record.Width, record.Height, created.Unix(), metadataJSON)

	return classify(err)
}

func (sd *SQLiteDriver) Delete(ctx context.Context, identifier string) error {
	res, err := sd.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE identifier = ?", sd.table), identifier)
	if err != nil {
		return classify(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return data.StoreUnavailable(err)
	}
	if affected == 0 {
		return data.ErrImageNotFound
	}

	return nil
}

func (sd *SQLiteDriver) ReplaceMetadata(ctx context.Context, identifier string, metadata data.Metadata) error {
	metadataJSON, err := marshalMetadata(metadata)
	if err != nil {
		return data.StoreUnavailable(err)
	}

	res, err := sd.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET metadata = ? WHERE identifier = ?", sd.table),
		metadataJSON, identifier)
	if err != nil {
		return classify(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return data.StoreUnavailable(err)
	}
	if affected == 0 {
		return data.ErrImageNotFound
	}

	return nil
}

func (sd *SQLiteDriver) GetMetadata(ctx context.Context, identifier string) (data.Metadata, error) {
	var metadataJSON sql.NullString

	err := sd.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT metadata FROM %s WHERE identifier = ?", sd.table),
		identifier).Scan(&metadataJSON)
	if err != nil {
		return nil, classify(err)
	}

	return unmarshalMetadata(metadataJSON), nil
}

func (sd *SQLiteDriver) ClearMetadata(ctx context.Context, identifier string) error {
	if err := sd.ReplaceMetadata(ctx, identifier, data.Metadata{}); err != nil {
		return data.MetadataClear(err)
	}

	return nil
}

func (sd *SQLiteDriver) Load(ctx context.Context, identifier string) (*data.ImageRecord, error) {
	var rec data.ImageRecord
	var created int64

	err := sd.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT identifier, filename, mime, size, width, height, created
		FROM %s WHERE identifier = ?
	`, sd.table), identifier).Scan(&rec.Identifier, &rec.Filename, &rec.MimeType,
		&rec.Size, &rec.Width, &rec.Height, &created)
	if err != nil {
		return nil, classify(err)
	}

	rec.Created = time.Unix(created, 0)
	return &rec, nil
}

// marshalMetadata serializes a metadata map to its JSON column value.
// Empty maps are stored as NULL, matching records that never had metadata.
func marshalMetadata(metadata data.Metadata) (sql.NullString, error) {
	if len(metadata) == 0 {
		return sql.NullString{}, nil
	}

	bytes, err := json.Marshal(metadata)
	if err != nil {
		return sql.NullString{}, err
	}

	return sql.NullString{String: string(bytes), Valid: true}, nil
}

func unmarshalMetadata(metadataJSON sql.NullString) data.Metadata {
	metadata := make(data.Metadata)
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &metadata); err != nil {
			return make(data.Metadata)
		}
	}

	return metadata
}
