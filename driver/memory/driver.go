package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mwantia/imagestore/data"
	"github.com/mwantia/imagestore/driver"
	"github.com/tidwall/btree"
)

// MemoryDriver keeps image records in process memory. The mutex makes the
// duplicate check and insert one atomic step, so concurrent inserts for the
// same identifier cannot both succeed.
type MemoryDriver struct {
	mu sync.RWMutex

	keys    *btree.Map[string, string]
	records map[string]*data.ImageRecord
}

func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		keys:    btree.NewMap[string, string](0),
		records: make(map[string]*data.ImageRecord),
	}
}

// Returns the identifier name defined for this driver
func (*MemoryDriver) Name() string {
	return "memory"
}

// Open is part of the lifecycle behaviour and gets called when opening this driver.
func (md *MemoryDriver) Open(ctx context.Context) error {
	// No initialization needed - driver is ready to use
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this driver.
func (md *MemoryDriver) Close(ctx context.Context) error {
	md.mu.Lock()
	defer md.mu.Unlock()

	md.keys.Clear()
	for k := range md.records {
		delete(md.records, k)
	}

	return nil
}

// Capabilities returns the set of capabilities supported by this driver.
func (md *MemoryDriver) Capabilities() *driver.Capabilities {
	return &driver.Capabilities{
		Capabilities: []driver.Capability{
			driver.CapabilityAtomicInsert,
		},
	}
}

func (md *MemoryDriver) Insert(ctx context.Context, identifier string, record *data.ImageRecord) error {
	md.mu.Lock()
	defer md.mu.Unlock()

	if _, exists := md.keys.Get(identifier); exists {
		return data.ErrImageExists
	}

	stored := cloneRecord(record)
	stored.Identifier = identifier
	if stored.ID == "" {
		stored.ID = data.NewRecordID()
	}
	if stored.Created.IsZero() {
		stored.Created = time.Now()
	}

	md.records[stored.ID] = stored
	md.keys.Set(identifier, stored.ID)
	return nil
}

func (md *MemoryDriver) Delete(ctx context.Context, identifier string) error {
	md.mu.Lock()
	defer md.mu.Unlock()

	id, exists := md.keys.Get(identifier)
	if !exists {
		return data.ErrImageNotFound
	}

	delete(md.records, id)
	md.keys.Delete(identifier)
	return nil
}

func (md *MemoryDriver) ReplaceMetadata(ctx context.Context, identifier string, metadata data.Metadata) error {
	md.mu.Lock()
	defer md.mu.Unlock()

	id, exists := md.keys.Get(identifier)
	if !exists {
		return data.ErrImageNotFound
	}

	md.records[id].Metadata = metadata.Clone()
	return nil
}

func (md *MemoryDriver) GetMetadata(ctx context.Context, identifier string) (data.Metadata, error) {
	md.mu.RLock()
	defer md.mu.RUnlock()

	id, exists := md.keys.Get(identifier)
	if !exists {
		return nil, data.ErrImageNotFound
	}

	return md.records[id].Metadata.Clone(), nil
}

func (md *MemoryDriver) ClearMetadata(ctx context.Context, identifier string) error {
	if err := md.ReplaceMetadata(ctx, identifier, data.Metadata{}); err != nil {
		return data.MetadataClear(err)
	}

	return nil
}

func (md *MemoryDriver) Search(ctx context.Context, query *data.Query) ([]*data.ImageRecord, error) {
	md.mu.RLock()
	defer md.mu.RUnlock()

	records := make([]*data.ImageRecord, 0, len(md.records))
	for _, rec := range md.records {
		records = append(records, rec)
	}

	return driver.EvalQuery(records, query), nil
}

func (md *MemoryDriver) Load(ctx context.Context, identifier string) (*data.ImageRecord, error) {
	md.mu.RLock()
	defer md.mu.RUnlock()

	id, exists := md.keys.Get(identifier)
	if !exists {
		return nil, data.ErrImageNotFound
	}

	return md.records[id].Project(false), nil
}

func cloneRecord(r *data.ImageRecord) *data.ImageRecord {
	out := *r
	out.Metadata = r.Metadata.Clone()
	return &out
}
