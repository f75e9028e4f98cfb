package mongo

import (
	"context"
	"errors"

	"github.com/mwantia/imagestore/data"
	"github.com/mwantia/imagestore/driver"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Config contains configuration options for the MongoDB driver
type Config struct {
	// Connection URI (default: "mongodb://localhost:27017")
	URI string

	// Database name (default: "imagestore")
	Database string

	// Collection name for image records (default: "images")
	Collection string
}

// MongoDriver persists image records as documents in a MongoDB collection.
// Metadata filters are forwarded as dot-notation terms, so the store
// evaluates structured filter expressions (including operator documents)
// itself. A unique index on identifier rejects concurrent duplicate inserts
// atomically instead of a check-then-insert sequence.
type MongoDriver struct {
	client *mongo.Client
	images *mongo.Collection

	config *Config
}

// NewMongoDriver creates a new MongoDB-backed image driver. The connection is
// established lazily; Open verifies it and ensures the unique index.
func NewMongoDriver(config *Config) (*MongoDriver, error) {
	if config == nil {
		config = &Config{}
	}

	// Set defaults
	if config.URI == "" {
		config.URI = "mongodb://localhost:27017"
	}
	if config.Database == "" {
		config.Database = "imagestore"
	}
	if config.Collection == "" {
		config.Collection = "images"
	}

	clientOpts := options.Client().
		ApplyURI(config.URI).
		SetBSONOptions(&options.BSONOptions{
			// Nested metadata documents decode as maps, not bson.D
			DefaultDocumentM: true,
		})

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, data.StoreUnavailable(err)
	}

	return &MongoDriver{
		client: client,
		images: client.Database(config.Database).Collection(config.Collection),
		config: config,
	}, nil
}

// Returns the identifier name defined for this driver
func (*MongoDriver) Name() string {
	return "mongo"
}

// Open is part of the lifecycle behaviour and gets called when opening this driver.
func (md *MongoDriver) Open(ctx context.Context) error {
	if err := md.client.Ping(ctx, nil); err != nil {
		return data.StoreUnavailable(err)
	}

	// Identifier uniqueness is enforced by the store itself
	_, err := md.images.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "identifier", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return data.StoreUnavailable(err)
	}

	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this driver.
func (md *MongoDriver) Close(ctx context.Context) error {
	if err := md.client.Disconnect(ctx); err != nil {
		return data.StoreUnavailable(err)
	}

	return nil
}

// Capabilities returns the set of capabilities supported by this driver.
func (md *MongoDriver) Capabilities() *driver.Capabilities {
	return driver.AllCapabilities()
}

// classify translates MongoDB faults into the driver error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return data.ErrImageNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return data.ErrImageExists
	}

	return data.StoreUnavailable(err)
}
