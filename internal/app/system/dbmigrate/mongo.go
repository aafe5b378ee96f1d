package dbmigrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/bolola/internal/app/system/indexes"
	"github.com/dalemusser/bolola/internal/app/system/validators"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDial connects to t.URI and returns an Endpoint over t.Database.
func MongoDial(ctx context.Context, t Target) (Endpoint, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(t.URI))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", t.Database, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping %s: %w", t.Database, err)
	}
	return &mongoEndpoint{client: client, db: client.Database(t.Database)}, nil
}

type mongoEndpoint struct {
	client *mongo.Client
	db     *mongo.Database
}

func (e *mongoEndpoint) Collection(name string) Collection {
	return mongoCollection{c: e.db.Collection(name)}
}

func (e *mongoEndpoint) EnsureSchema(ctx context.Context) error {
	return errors.Join(
		validators.EnsureAll(ctx, e.db),
		indexes.EnsureAll(ctx, e.db),
	)
}

func (e *mongoEndpoint) Close(ctx context.Context) error {
	return e.client.Disconnect(ctx)
}

type mongoCollection struct {
	c *mongo.Collection
}

func (m mongoCollection) FindAll(ctx context.Context) ([]bson.M, error) {
	cur, err := m.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []bson.M{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m mongoCollection) Count(ctx context.Context) (int64, error) {
	return m.c.CountDocuments(ctx, bson.M{})
}

func (m mongoCollection) DeleteAll(ctx context.Context) (int64, error) {
	res, err := m.c.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m mongoCollection) InsertMany(ctx context.Context, docs []any) error {
	_, err := m.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}
