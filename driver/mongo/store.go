package mongo

import (
	"context"
	"time"

	"github.com/mwantia/imagestore/data"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (md *MongoDriver) Insert(ctx context.Context, identifier string, record *data.ImageRecord) error {
	doc := *record
	doc.Identifier = identifier
	if doc.ID == "" {
		doc.ID = data.NewRecordID()
	}
	if doc.Created.IsZero() {
		doc.Created = time.Now()
	}

	// Duplicate identifiers are rejected by the unique index
	_, err := md.images.InsertOne(ctx, &doc)
	return classify(err)
}

func (md *MongoDriver) Delete(ctx context.Context, identifier string) error {
	res, err := md.images.DeleteOne(ctx, bson.M{"identifier": identifier})
	if err != nil {
		return classify(err)
	}
	if res.DeletedCount == 0 {
		return data.ErrImageNotFound
	}

	return nil
}

func (md *MongoDriver) ReplaceMetadata(ctx context.Context, identifier string, metadata data.Metadata) error {
	update := bson.M{"$set": bson.M{"metadata": metadata.Clone()}}

	res, err := md.images.UpdateOne(ctx, bson.M{"identifier": identifier}, update)
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return data.ErrImageNotFound
	}

	return nil
}

func (md *MongoDriver) GetMetadata(ctx context.Context, identifier string) (data.Metadata, error) {
	opts := options.FindOne().SetProjection(bson.M{"metadata": 1})

	var doc struct {
		Metadata data.Metadata `bson:"metadata"`
	}
	err := md.images.FindOne(ctx, bson.M{"identifier": identifier}, opts).Decode(&doc)
	if err != nil {
		return nil, classify(err)
	}

	if doc.Metadata == nil {
		return make(data.Metadata), nil
	}

	return doc.Metadata, nil
}

func (md *MongoDriver) ClearMetadata(ctx context.Context, identifier string) error {
	if err := md.ReplaceMetadata(ctx, identifier, data.Metadata{}); err != nil {
		return data.MetadataClear(err)
	}

	return nil
}

func (md *MongoDriver) Load(ctx context.Context, identifier string) (*data.ImageRecord, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 0, "metadata": 0})

	var rec data.ImageRecord
	err := md.images.FindOne(ctx, bson.M{"identifier": identifier}, opts).Decode(&rec)
	if err != nil {
		return nil, classify(err)
	}

	return &rec, nil
}
