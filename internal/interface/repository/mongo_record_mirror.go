package repository

import (
	"context"
	"fmt"
	"time"

	"travel-records-service/internal/domain/entity"
	"travel-records-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRecordMirror keeps a copy of the record set in a MongoDB collection
type MongoRecordMirror struct {
	collection *mongo.Collection
}

// NewMongoRecordMirror creates a new mirror over the records collection
func NewMongoRecordMirror(ctx context.Context, db *mongo.Database) (repository.RecordMirror, error) {
	collection := db.Collection("records")

	// Create index on type for per-kind queries
	typeIndex := mongo.IndexModel{
		Keys: bson.M{"Type": 1},
	}
	if _, err := collection.Indexes().CreateOne(ctx, typeIndex); err != nil {
		return nil, fmt.Errorf("failed to create records index: %w", err)
	}

	return &MongoRecordMirror{
		collection: collection,
	}, nil
}

// Name identifies the mirror in logs
func (r *MongoRecordMirror) Name() string {
	return "mongo"
}

// Sync upserts every record by ID and removes documents no longer in the set
func (r *MongoRecordMirror) Sync(ctx context.Context, records []entity.Record) error {
	now := time.Now()
	ids := make([]int, 0, len(records))
	models := make([]mongo.WriteModel, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.RecordID())
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": rec.RecordID()}).
			SetReplacement(recordDocument(rec, now)).
			SetUpsert(true))
	}

	if len(models) > 0 {
		if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("failed to upsert records: %w", err)
		}
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}}); err != nil {
		return fmt.Errorf("failed to prune records: %w", err)
	}
	return nil
}

// recordDocument stores the internal fields with the record ID as _id
func recordDocument(rec entity.Record, syncedAt time.Time) bson.M {
	doc := bson.M{}
	for key, value := range rec.Fields() {
		if key == "ID" {
			continue
		}
		doc[key] = value
	}
	doc["_id"] = rec.RecordID()
	doc["syncedAt"] = syncedAt
	return doc
}
