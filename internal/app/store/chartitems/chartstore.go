package chartstore

import (
	"context"

	"github.com/dalemusser/bolola/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.ChartItemsCollection)}
}

// Upsert replaces the chart item with ci.Alias by ci, inserting it when
// absent. Only the stored _id survives a replace; every other field comes
// from ci. Returns the stored record.
func (s *Store) Upsert(ctx context.Context, ci models.ChartItem) (models.ChartItem, error) {
	ci.ID = primitive.NilObjectID
	var out models.ChartItem
	err := s.c.FindOneAndReplace(ctx,
		bson.M{"alias": ci.Alias},
		ci,
		options.FindOneAndReplace().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.ChartItem{}, err
	}
	return out, nil
}

// UpsertMany upserts each item in order and stops at the first failure.
// Chart items whose alias is not in items are left as they are.
func (s *Store) UpsertMany(ctx context.Context, items []models.ChartItem) (int, error) {
	for i, ci := range items {
		if _, err := s.Upsert(ctx, ci); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// List returns all chart items by ascending ordering; ties keep insertion order.
func (s *Store) List(ctx context.Context) ([]models.ChartItem, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{
		{Key: "ordering", Value: 1},
		{Key: "_id", Value: 1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ChartItem{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
