package indexes_test

import (
	"testing"

	"github.com/dalemusser/bolola/internal/app/system/indexes"
	"github.com/dalemusser/bolola/internal/domain/models"
	"github.com/dalemusser/bolola/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		collection string
		expected   []string
	}{
		{models.UsersCollection, []string{"uniq_users_firebaseuid", "uniq_users_email", "idx_users_created", "idx_users_email_admin"}},
		{models.CategoriesCollection, []string{"uniq_categories_alias", "idx_categories_ordering__id"}},
		{models.GroupsCollection, []string{"uniq_groups_alias", "idx_groups_category_ordering__id"}},
		{models.ItemsCollection, []string{"uniq_items_alias", "idx_items_group_ordering__id"}},
		{models.ChartItemsCollection, []string{"uniq_chartitems_alias", "idx_chartitems_ordering__id"}},
	}

	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			cur, err := db.Collection(tt.collection).Indexes().List(ctx)
			if err != nil {
				t.Fatalf("List indexes failed: %v", err)
			}
			defer cur.Close(ctx)

			indexNames := make(map[string]bool)
			for cur.Next(ctx) {
				var idx bson.M
				if err := cur.Decode(&idx); err != nil {
					continue
				}
				if name, ok := idx["name"].(string); ok {
					indexNames[name] = true
				}
			}

			for _, name := range tt.expected {
				if !indexNames[name] {
					t.Errorf("expected index %q to exist on %s collection", name, tt.collection)
				}
			}
		})
	}
}

func TestEnsureAll_EnforcesAliasUniqueness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	coll := db.Collection(models.ItemsCollection)
	doc := bson.M{"alias": "song-1", "name": "Song", "groupAlias": "g", "categoryAlias": "c"}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err := coll.InsertOne(ctx, bson.M{"alias": "song-1", "name": "Other", "groupAlias": "g", "categoryAlias": "c"})
	if !mongo.IsDuplicateKeyError(err) {
		t.Errorf("second insert error = %v, want duplicate key", err)
	}
}

func TestEnsureAll_RecreatesRenamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection(models.ChartItemsCollection)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ordering", Value: 1}, {Key: "_id", Value: 1}},
	}); err != nil {
		t.Fatalf("seed index failed: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	specs, err := coll.Indexes().ListSpecifications(ctx)
	if err != nil {
		t.Fatalf("ListSpecifications failed: %v", err)
	}
	found := false
	for _, s := range specs {
		if s.Name == "idx_chartitems_ordering__id" {
			found = true
		}
		if s.Name == "ordering_1__id_1" {
			t.Errorf("auto-named index should have been replaced")
		}
	}
	if !found {
		t.Errorf("expected idx_chartitems_ordering__id after reconcile")
	}
}
