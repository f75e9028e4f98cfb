package mongo

import (
	"context"

	"github.com/mwantia/imagestore/data"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (md *MongoDriver) Search(ctx context.Context, query *data.Query) ([]*data.ImageRecord, error) {
	projection := bson.M{"_id": 0}
	if !query.ReturnMetadata {
		projection["metadata"] = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created", Value: -1}, {Key: "identifier", Value: -1}}).
		SetSkip(int64(query.Offset())).
		SetLimit(int64(query.Limit)).
		SetProjection(projection)

	cursor, err := md.images.Find(ctx, buildSearchFilter(query), opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	records := make([]*data.ImageRecord, 0, query.Limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, data.StoreUnavailable(err)
	}

	return records, nil
}

// buildSearchFilter translates a Query into its MongoDB filter shape: strict
// creation-time bounds plus the metadata filter document forwarded as
// dot-notation terms, so operator expressions pass through to the store
// uninterpreted.
func buildSearchFilter(query *data.Query) bson.M {
	filter := bson.M{}

	created := bson.M{}
	if !query.From.IsZero() {
		created["$gt"] = query.From
	}
	if !query.To.IsZero() {
		created["$lt"] = query.To
	}
	if len(created) > 0 {
		filter["created"] = created
	}

	for key, value := range query.MetadataQuery {
		filter["metadata."+key] = value
	}

	return filter
}
