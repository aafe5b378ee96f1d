// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"

	"github.com/dalemusser/bolola/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.GroupsCollection)}
}

// ByCategory returns the groups whose categoryAlias matches, by ascending
// ordering.
func (s *Store) ByCategory(ctx context.Context, categoryAlias string) ([]models.Group, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"categoryAlias": categoryAlias},
		options.Find().SetSort(bson.D{{Key: "ordering", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Group{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
