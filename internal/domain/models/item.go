// internal/domain/models/item.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Item is a single statement (audio and/or video clip) inside a Group.
type Item struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Alias           string             `bson:"alias" json:"alias"`
	Name            string             `bson:"name" json:"name"`
	Ordering        int                `bson:"ordering" json:"ordering"`
	ShareCount      int                `bson:"shareCount" json:"shareCount"`
	AudioURL        string             `bson:"audioUrl,omitempty" json:"audioUrl,omitempty"`
	VideoURL        string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	SourceURL       string             `bson:"sourceUrl,omitempty" json:"sourceUrl,omitempty"`
	ImageURL        string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	IsFavorite      bool               `bson:"isFavorite" json:"isFavorite"`
	Keywords        []string           `bson:"keywords" json:"keywords"`
	RelatedKeywords []string           `bson:"relatedKeywords" json:"relatedKeywords"`
	GroupAlias      string             `bson:"groupAlias" json:"groupAlias"`
	CategoryAlias   string             `bson:"categoryAlias" json:"categoryAlias"`
}

// ChartItem is a ranked copy of an Item on the top chart. Unlike Item it
// does not have to belong to a group or category.
type ChartItem struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Alias           string             `bson:"alias" json:"alias"`
	Name            string             `bson:"name" json:"name"`
	Ordering        int                `bson:"ordering" json:"ordering"`
	ShareCount      int                `bson:"shareCount" json:"shareCount"`
	AudioURL        string             `bson:"audioUrl,omitempty" json:"audioUrl,omitempty"`
	VideoURL        string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	SourceURL       string             `bson:"sourceUrl,omitempty" json:"sourceUrl,omitempty"`
	ImageURL        string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	IsFavorite      bool               `bson:"isFavorite" json:"isFavorite"`
	Keywords        []string           `bson:"keywords" json:"keywords"`
	RelatedKeywords []string           `bson:"relatedKeywords" json:"relatedKeywords"`
	GroupAlias      string             `bson:"groupAlias,omitempty" json:"groupAlias,omitempty"`
	CategoryAlias   string             `bson:"categoryAlias,omitempty" json:"categoryAlias,omitempty"`
}
