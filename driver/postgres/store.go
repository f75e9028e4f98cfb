package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mwantia/imagestore/data"
)

func (pd *PostgresDriver) Insert(ctx context.Context, identifier string, record *data.ImageRecord) error {
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

	conn, err := pd.pool.Acquire(ctx)
	if err != nil {
		return data.StoreUnavailable(err)
	}
	defer conn.Release()

	// The UNIQUE constraint on identifier makes the duplicate check atomic
	_, err = conn.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, identifier, filename, mime, size, width, height, created, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, pd.table), id, identifier, record.Filename, record.MimeType,
		record.Size, record.Width, record.Height, created.Unix(), metadataJSON)

	return classify(err)
}

func (pd *PostgresDriver) Delete(ctx context.Context, identifier string) error {
	conn, err := pd.pool.Acquire(ctx)
	if err != nil {
		return data.StoreUnavailable(err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE identifier = $1", pd.table), identifier)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrImageNotFound
	}

	return nil
}

func (pd *PostgresDriver) ReplaceMetadata(ctx context.Context, identifier string, metadata data.Metadata) error {
	metadataJSON, err := marshalMetadata(metadata)
	if err != nil {
		return data.StoreUnavailable(err)
	}

	conn, err := pd.pool.Acquire(ctx)
	if err != nil {
		return data.StoreUnavailable(err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx,
		fmt.Sprintf("UPDATE %s SET metadata = $1 WHERE identifier = $2", pd.table),
		metadataJSON, identifier)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrImageNotFound
	}

	return nil
}

func (pd *PostgresDriver) GetMetadata(ctx context.Context, identifier string) (data.Metadata, error) {
	conn, err := pd.pool.Acquire(ctx)
	if err != nil {
		return nil, data.StoreUnavailable(err)
	}
	defer conn.Release()

	var metadataJSON []byte
	err = conn.QueryRow(ctx,
		fmt.Sprintf("SELECT metadata FROM %s WHERE identifier = $1", pd.table),
		identifier).Scan(&metadataJSON)
	if err != nil {
		return nil, classify(err)
	}

	return unmarshalMetadata(metadataJSON), nil
}

func (pd *PostgresDriver) ClearMetadata(ctx context.Context, identifier string) error {
	if err := pd.ReplaceMetadata(ctx, identifier, data.Metadata{}); err != nil {
		return data.MetadataClear(err)
	}

	return nil
}

func (pd *PostgresDriver) Load(ctx context.Context, identifier string) (*data.ImageRecord, error) {
	conn, err := pd.pool.Acquire(ctx)
	if err != nil {
		return nil, data.StoreUnavailable(err)
	}
	defer conn.Release()

	var rec data.ImageRecord
	var created int64

	err = conn.QueryRow(ctx, fmt.Sprintf(`
		SELECT identifier, filename, mime, size, width, height, created
		FROM %s WHERE identifier = $1
	`, pd.table), identifier).Scan(&rec.Identifier, &rec.Filename, &rec.MimeType,
		&rec.Size, &rec.Width, &rec.Height, &created)
	if err != nil {
		return nil, classify(err)
	}

	rec.Created = time.Unix(created, 0)
	return &rec, nil
}

// marshalMetadata serializes a metadata map to its JSONB column value.
// Empty maps are stored as NULL, matching records that never had metadata.
func marshalMetadata(metadata data.Metadata) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}

	return json.Marshal(metadata)
}

func unmarshalMetadata(metadataJSON []byte) data.Metadata {
	metadata := make(data.Metadata)
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			return make(data.Metadata)
		}
	}

	return metadata
}
