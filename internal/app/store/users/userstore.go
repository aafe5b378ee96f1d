package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/bolola/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user has the given Firebase UID.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when the Firebase UID or email is already taken.
	ErrDuplicateUser = errors.New("user with this email or Firebase UID already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.UsersCollection)}
}

// GetByUID loads a user by Firebase UID.
func (s *Store) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"firebaseUid": uid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. ID, timestamps and lastLoginAt are always set
// here; a nil Favorites becomes an empty set.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	u.LastLoginAt = now
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUser
		}
		return models.User{}, err
	}
	return u, nil
}

// Touch sets lastLoginAt to now and returns the updated user.
func (s *Store) Touch(ctx context.Context, uid string) (*models.User, error) {
	return s.findAndUpdate(ctx, uid, bson.M{"$set": bson.M{"lastLoginAt": time.Now().UTC()}})
}

// Update holds the profile fields that can be changed. Nil fields are left
// untouched.
type Update struct {
	Name     *string
	Email    *string
	PhotoURL *string
	IsAdmin  *bool
	IsActive *bool
}

// Update applies the non-nil fields of upd and refreshes lastLoginAt.
func (s *Store) Update(ctx context.Context, uid string, upd Update) (*models.User, error) {
	now := time.Now().UTC()
	set := bson.M{"lastLoginAt": now, "updatedAt": now}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.PhotoURL != nil {
		set["photoUrl"] = *upd.PhotoURL
	}
	if upd.IsAdmin != nil {
		set["isAdmin"] = *upd.IsAdmin
	}
	if upd.IsActive != nil {
		set["isActive"] = *upd.IsActive
	}
	u, err := s.findAndUpdate(ctx, uid, bson.M{"$set": set})
	if err != nil && wafflemongo.IsDup(err) {
		return nil, ErrDuplicateUser
	}
	return u, err
}

// AddFavorite adds alias to the user's favorites set. Adding an alias that
// is already present leaves a single occurrence.
func (s *Store) AddFavorite(ctx context.Context, uid, alias string) (*models.User, error) {
	now := time.Now().UTC()
	return s.findAndUpdate(ctx, uid, bson.M{
		"$addToSet": bson.M{"favorites": alias},
		"$set":      bson.M{"lastLoginAt": now, "updatedAt": now},
	})
}

// RemoveFavorite removes alias from the user's favorites. Removing an alias
// that was never added is not an error.
func (s *Store) RemoveFavorite(ctx context.Context, uid, alias string) (*models.User, error) {
	now := time.Now().UTC()
	return s.findAndUpdate(ctx, uid, bson.M{
		"$pull": bson.M{"favorites": alias},
		"$set":  bson.M{"lastLoginAt": now, "updatedAt": now},
	})
}

func (s *Store) findAndUpdate(ctx context.Context, uid string, update bson.M) (*models.User, error) {
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"firebaseUid": uid},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns every user, newest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsAdminEmail reports whether an admin user with this exact email exists.
func (s *Store) IsAdminEmail(ctx context.Context, email string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"email": email, "isAdmin": true}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
