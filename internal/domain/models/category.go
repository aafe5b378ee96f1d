// internal/domain/models/category.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category is the top level of the catalog tree. Groups point at it
// through Group.CategoryAlias.
type Category struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Alias      string             `bson:"alias" json:"alias"`
	Name       string             `bson:"name" json:"name"`
	Ordering   int                `bson:"ordering" json:"ordering"`
	GroupNames []string           `bson:"groupNames" json:"groupNames"`
}
