// internal/domain/models/group.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Group belongs to exactly one Category by alias and owns Items by alias.
//
// IsNewGroup is numeric (0/1) in stored documents, not a bool.
type Group struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Alias         string             `bson:"alias" json:"alias"`
	Name          string             `bson:"name" json:"name"`
	Count         int                `bson:"count" json:"count"`
	IconURL       string             `bson:"iconUrl,omitempty" json:"iconUrl,omitempty"`
	Ordering      int                `bson:"ordering" json:"ordering"`
	IsNewGroup    int                `bson:"isNewGroup" json:"isNewGroup"`
	CategoryAlias string             `bson:"categoryAlias" json:"categoryAlias"`
}
