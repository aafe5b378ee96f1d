// Package catalogtree composes the nested category → group → item tree
// served by GET /categories.
package catalogtree

import (
	"context"

	categorystore "github.com/dalemusser/bolola/internal/app/store/categories"
	groupstore "github.com/dalemusser/bolola/internal/app/store/groups"
	itemstore "github.com/dalemusser/bolola/internal/app/store/items"
	"github.com/dalemusser/bolola/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many categories are expanded at once.
const DefaultConcurrency = 8

// Source is the read side the tree is built from. Every list must already
// be sorted by ascending ordering.
type Source interface {
	Categories(ctx context.Context) ([]models.Category, error)
	GroupsByCategory(ctx context.Context, categoryAlias string) ([]models.Group, error)
	ItemsByGroup(ctx context.Context, groupAlias string) ([]models.Item, error)
}

// Category is one node of the tree.
type Category struct {
	Name       string   `json:"name"`
	Alias      string   `json:"alias"`
	Ordering   int      `json:"ordering"`
	GroupNames []string `json:"groupNames"`
	Groups     []Group  `json:"groups"`
}

// Group is a category's child node.
type Group struct {
	Name          string `json:"name"`
	Count         int    `json:"count"`
	IconURL       string `json:"iconUrl,omitempty"`
	Alias         string `json:"alias"`
	CategoryAlias string `json:"categoryAlias"`
	Ordering      int    `json:"ordering"`
	IsNewGroup    int    `json:"isNewGroup"`
	Items         []Item `json:"items"`
}

// Item is a leaf of the tree. It carries the catalog fields of models.Item
// without the storage id.
type Item struct {
	Name            string   `json:"name"`
	Alias           string   `json:"alias"`
	Ordering        int      `json:"ordering"`
	ShareCount      int      `json:"shareCount"`
	AudioURL        string   `json:"audioUrl,omitempty"`
	VideoURL        string   `json:"videoUrl,omitempty"`
	ImageURL        string   `json:"imageUrl,omitempty"`
	SourceURL       string   `json:"sourceUrl,omitempty"`
	GroupAlias      string   `json:"groupAlias"`
	CategoryAlias   string   `json:"categoryAlias"`
	IsFavorite      bool     `json:"isFavorite"`
	Keywords        []string `json:"keywords"`
	RelatedKeywords []string `json:"relatedKeywords"`
}

// Build reads the whole catalog from src. Categories are expanded with at
// most concurrency lookups in flight (DefaultConcurrency when <= 0). Output
// order is category order regardless of completion order. The first lookup
// failure cancels the rest and is returned; no partial tree is produced.
func Build(ctx context.Context, src Source, concurrency int) ([]Category, error) {
	cats, err := src.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	out := make([]Category, len(cats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, c := range cats {
		g.Go(func() error {
			groups, err := buildGroups(gctx, src, c.Alias)
			if err != nil {
				return err
			}
			out[i] = Category{
				Name:       c.Name,
				Alias:      c.Alias,
				Ordering:   c.Ordering,
				GroupNames: nonNil(c.GroupNames),
				Groups:     groups,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func buildGroups(ctx context.Context, src Source, categoryAlias string) ([]Group, error) {
	groups, err := src.GroupsByCategory(ctx, categoryAlias)
	if err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(groups))
	for _, gr := range groups {
		items, err := src.ItemsByGroup(ctx, gr.Alias)
		if err != nil {
			return nil, err
		}
		out = append(out, Group{
			Name:          gr.Name,
			Count:         gr.Count,
			IconURL:       gr.IconURL,
			Alias:         gr.Alias,
			CategoryAlias: gr.CategoryAlias,
			Ordering:      gr.Ordering,
			IsNewGroup:    gr.IsNewGroup,
			Items:         toItems(items),
		})
	}
	return out, nil
}

func toItems(items []models.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, Item{
			Name:            it.Name,
			Alias:           it.Alias,
			Ordering:        it.Ordering,
			ShareCount:      it.ShareCount,
			AudioURL:        it.AudioURL,
			VideoURL:        it.VideoURL,
			ImageURL:        it.ImageURL,
			SourceURL:       it.SourceURL,
			GroupAlias:      it.GroupAlias,
			CategoryAlias:   it.CategoryAlias,
			IsFavorite:      it.IsFavorite,
			Keywords:        nonNil(it.Keywords),
			RelatedKeywords: nonNil(it.RelatedKeywords),
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// MongoSource reads the tree from the catalog collections.
type MongoSource struct {
	categories *categorystore.Store
	groups     *groupstore.Store
	items      *itemstore.Store
}

// NewMongoSource returns a Source backed by db.
func NewMongoSource(db *mongo.Database) *MongoSource {
	return &MongoSource{
		categories: categorystore.New(db),
		groups:     groupstore.New(db),
		items:      itemstore.New(db),
	}
}

func (m *MongoSource) Categories(ctx context.Context) ([]models.Category, error) {
	return m.categories.List(ctx)
}

func (m *MongoSource) GroupsByCategory(ctx context.Context, categoryAlias string) ([]models.Group, error) {
	return m.groups.ByCategory(ctx, categoryAlias)
}

func (m *MongoSource) ItemsByGroup(ctx context.Context, groupAlias string) ([]models.Item, error) {
	return m.items.ByGroup(ctx, groupAlias)
}
