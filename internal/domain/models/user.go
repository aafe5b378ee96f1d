// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an app user identified by their Firebase UID.
//
// NOTE:
//   - Favorites holds Item aliases by value. There is no referential check;
//     aliases whose Item was removed are dropped when favorites are resolved.
//   - LastLoginAt doubles as the last-activity timestamp (favorites updates
//     and profile reads touch it).
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	FirebaseUID string             `bson:"firebaseUid" json:"firebaseUid"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	PhotoURL    string             `bson:"photoUrl" json:"photoUrl"`
	IsAdmin     bool               `bson:"isAdmin" json:"isAdmin"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Favorites   []string           `bson:"favorites" json:"favorites"`
	LastLoginAt time.Time          `bson:"lastLoginAt" json:"lastLoginAt"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
