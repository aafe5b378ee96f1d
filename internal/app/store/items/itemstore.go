package itemstore

import (
	"context"
	"errors"

	"github.com/dalemusser/bolola/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no item has the given alias.
var ErrNotFound = errors.New("item not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.ItemsCollection)}
}

var byOrdering = bson.D{{Key: "ordering", Value: 1}, {Key: "_id", Value: 1}}

// ByGroup returns the items whose groupAlias matches, by ascending ordering.
func (s *Store) ByGroup(ctx context.Context, groupAlias string) ([]models.Item, error) {
	return s.find(ctx, bson.M{"groupAlias": groupAlias})
}

// ByAliases returns the items whose alias is in aliases. Aliases without a
// matching item are skipped.
func (s *Store) ByAliases(ctx context.Context, aliases []string) ([]models.Item, error) {
	if len(aliases) == 0 {
		return []models.Item{}, nil
	}
	return s.find(ctx, bson.M{"alias": bson.M{"$in": aliases}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Item, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(byOrdering))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Item{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether an item with alias exists.
func (s *Store) Exists(ctx context.Context, alias string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"alias": alias}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Patch holds the media fields that can be edited. Nil fields are left
// untouched.
type Patch struct {
	Name            *string
	Ordering        *int
	ShareCount      *int
	AudioURL        *string
	VideoURL        *string
	SourceURL       *string
	ImageURL        *string
	IsFavorite      *bool
	Keywords        *[]string
	RelatedKeywords *[]string
	GroupAlias      *string
	CategoryAlias   *string
}

func (p Patch) set() bson.M {
	set := bson.M{}
	for key, v := range map[string]*string{
		"name":          p.Name,
		"audioUrl":      p.AudioURL,
		"videoUrl":      p.VideoURL,
		"sourceUrl":     p.SourceURL,
		"imageUrl":      p.ImageURL,
		"groupAlias":    p.GroupAlias,
		"categoryAlias": p.CategoryAlias,
	} {
		if v != nil {
			set[key] = *v
		}
	}
	if p.Ordering != nil {
		set["ordering"] = *p.Ordering
	}
	if p.ShareCount != nil {
		set["shareCount"] = *p.ShareCount
	}
	if p.IsFavorite != nil {
		set["isFavorite"] = *p.IsFavorite
	}
	if p.Keywords != nil {
		set["keywords"] = *p.Keywords
	}
	if p.RelatedKeywords != nil {
		set["relatedKeywords"] = *p.RelatedKeywords
	}
	return set
}

// Update applies p to the item with alias and returns the updated item.
// It never inserts.
func (s *Store) Update(ctx context.Context, alias string, p Patch) (*models.Item, error) {
	set := p.set()
	var it models.Item
	var err error
	if len(set) == 0 {
		err = s.c.FindOne(ctx, bson.M{"alias": alias}).Decode(&it)
	} else {
		err = s.c.FindOneAndUpdate(ctx,
			bson.M{"alias": alias},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&it)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}
