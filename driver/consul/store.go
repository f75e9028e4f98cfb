package consul

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/imagestore/data"
	"github.com/mwantia/imagestore/driver"
)

// storedRecord is the KV value layout. The identifier doubles as the key, so
// no separate surrogate is persisted.
type storedRecord struct {
	Identifier string        `json:"identifier"`
	Filename   string        `json:"filename"`
	MimeType   string        `json:"mime"`
	Size       int64         `json:"size"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Created    int64         `json:"created"`
	Metadata   data.Metadata `json:"metadata,omitempty"`
}

func (cd *ConsulDriver) Insert(ctx context.Context, identifier string, record *data.ImageRecord) error {
	created := record.Created
	if created.IsZero() {
		created = time.Now()
	}

	value, err := json.Marshal(&storedRecord{
		Identifier: identifier,
		Filename:   record.Filename,
		MimeType:   record.MimeType,
		Size:       record.Size,
		Width:      record.Width,
		Height:     record.Height,
		Created:    created.Unix(),
		Metadata:   record.Metadata,
	})
	if err != nil {
		return data.StoreUnavailable(err)
	}

	// ModifyIndex 0 turns the write into an atomic create: the CAS fails
	// when the key already exists.
	ok, _, err := cd.kv.CAS(&api.KVPair{
		Key:         cd.key(identifier),
		Value:       value,
		ModifyIndex: 0,
	}, nil)
	if err != nil {
		return data.StoreUnavailable(err)
	}
	if !ok {
		return data.ErrImageExists
	}

	return nil
}

func (cd *ConsulDriver) Delete(ctx context.Context, identifier string) error {
	pair, _, err := cd.kv.Get(cd.key(identifier), nil)
	if err != nil {
		return data.StoreUnavailable(err)
	}
	if pair == nil {
		return data.ErrImageNotFound
	}

	if _, err := cd.kv.Delete(cd.key(identifier), nil); err != nil {
		return data.StoreUnavailable(err)
	}

	return nil
}

func (cd *ConsulDriver) ReplaceMetadata(ctx context.Context, identifier string, metadata data.Metadata) error {
	stored, err := cd.get(identifier)
	if err != nil {
		return err
	}

	stored.Metadata = metadata.Clone()

	value, err := json.Marshal(stored)
	if err != nil {
		return data.StoreUnavailable(err)
	}

	if _, err := cd.kv.Put(&api.KVPair{Key: cd.key(identifier), Value: value}, nil); err != nil {
		return data.StoreUnavailable(err)
	}

	return nil
}

func (cd *ConsulDriver) GetMetadata(ctx context.Context, identifier string) (data.Metadata, error) {
	stored, err := cd.get(identifier)
	if err != nil {
		return nil, err
	}

	return stored.Metadata.Clone(), nil
}

func (cd *ConsulDriver) ClearMetadata(ctx context.Context, identifier string) error {
	if err := cd.ReplaceMetadata(ctx, identifier, data.Metadata{}); err != nil {
		return data.MetadataClear(err)
	}

	return nil
}

func (cd *ConsulDriver) Search(ctx context.Context, query *data.Query) ([]*data.ImageRecord, error) {
	pairs, _, err := cd.kv.List(cd.config.Prefix, nil)
	if err != nil {
		return nil, data.StoreUnavailable(err)
	}

	records := make([]*data.ImageRecord, 0, len(pairs))
	for _, pair := range pairs {
		var stored storedRecord
		if err := json.Unmarshal(pair.Value, &stored); err != nil {
			continue
		}
		records = append(records, stored.toRecord())
	}

	return driver.EvalQuery(records, query), nil
}

func (cd *ConsulDriver) Load(ctx context.Context, identifier string) (*data.ImageRecord, error) {
	stored, err := cd.get(identifier)
	if err != nil {
		return nil, err
	}

	return stored.toRecord().Project(false), nil
}

func (cd *ConsulDriver) get(identifier string) (*storedRecord, error) {
	pair, _, err := cd.kv.Get(cd.key(identifier), nil)
	if err != nil {
		return nil, data.StoreUnavailable(err)
	}
	if pair == nil {
		return nil, data.ErrImageNotFound
	}

	var stored storedRecord
	if err := json.Unmarshal(pair.Value, &stored); err != nil {
		return nil, data.StoreUnavailable(err)
	}

	return &stored, nil
}

func (sr *storedRecord) toRecord() *data.ImageRecord {
	return &data.ImageRecord{
		Identifier: sr.Identifier,
		Filename:   sr.Filename,
		MimeType:   sr.MimeType,
		Size:       sr.Size,
		Width:      sr.Width,
		Height:     sr.Height,
		Created:    time.Unix(sr.Created, 0),
		Metadata:   sr.Metadata,
	}
}
