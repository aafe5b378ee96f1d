package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/bolola/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert into %s: %v", coll, err)
	}
}

// CreateUser inserts an active, non-admin user with no favorites.
func (f *Fixtures) CreateUser(ctx context.Context, uid, email string) models.User {
	f.t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	u := models.User{
		ID:          primitive.NewObjectID(),
		FirebaseUID: uid,
		Name:        "Test " + uid,
		Email:       email,
		IsActive:    true,
		Favorites:   []string{},
		LastLoginAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, models.UsersCollection, u)
	return u
}

// CreateAdmin inserts a user with isAdmin set.
func (f *Fixtures) CreateAdmin(ctx context.Context, uid, email string) models.User {
	f.t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	u := models.User{
		ID:          primitive.NewObjectID(),
		FirebaseUID: uid,
		Name:        "Admin " + uid,
		Email:       email,
		IsAdmin:     true,
		IsActive:    true,
		Favorites:   []string{},
		LastLoginAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, models.UsersCollection, u)
	return u
}

// CreateCategory inserts a category.
func (f *Fixtures) CreateCategory(ctx context.Context, alias string, ordering int) models.Category {
	f.t.Helper()
	c := models.Category{
		ID:         primitive.NewObjectID(),
		Alias:      alias,
		Name:       "Category " + alias,
		Ordering:   ordering,
		GroupNames: []string{},
	}
	f.insert(ctx, models.CategoriesCollection, c)
	return c
}

// CreateGroup inserts a group under categoryAlias.
func (f *Fixtures) CreateGroup(ctx context.Context, alias, categoryAlias string, ordering int) models.Group {
	f.t.Helper()
	g := models.Group{
		ID:            primitive.NewObjectID(),
		Alias:         alias,
		Name:          "Group " + alias,
		Ordering:      ordering,
		CategoryAlias: categoryAlias,
	}
	f.insert(ctx, models.GroupsCollection, g)
	return g
}

// CreateItem inserts an item under groupAlias/categoryAlias.
func (f *Fixtures) CreateItem(ctx context.Context, alias, groupAlias, categoryAlias string, ordering int) models.Item {
	f.t.Helper()
	it := models.Item{
		ID:              primitive.NewObjectID(),
		Alias:           alias,
		Name:            "Item " + alias,
		Ordering:        ordering,
		AudioURL:        "/media/" + categoryAlias + "/" + groupAlias + "/audios/" + alias + ".mp3",
		Keywords:        []string{},
		RelatedKeywords: []string{},
		GroupAlias:      groupAlias,
		CategoryAlias:   categoryAlias,
	}
	f.insert(ctx, models.ItemsCollection, it)
	return it
}

// CreateChartItem inserts a chart item.
func (f *Fixtures) CreateChartItem(ctx context.Context, alias string, ordering int) models.ChartItem {
	f.t.Helper()
	ci := models.ChartItem{
		ID:              primitive.NewObjectID(),
		Alias:           alias,
		Name:            "Chart " + alias,
		Ordering:        ordering,
		Keywords:        []string{},
		RelatedKeywords: []string{},
	}
	f.insert(ctx, models.ChartItemsCollection, ci)
	return ci
}
