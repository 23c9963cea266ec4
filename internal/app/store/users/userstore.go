// Package userstore provides storage for user accounts and their capture
// preferences.
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/tabtrail/internal/app/system/normalize"
	"github.com/dalemusser/tabtrail/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for user accounts.
const CollectionName = "users"

// ErrDuplicateEmail is returned when attempting to create a user with an
// email that already exists.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

// Store provides access to the users collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new user store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Create inserts a new user after normalizing the email. The caller supplies
// an already-hashed password. New accounts get DefaultPreferences unless the
// input carries explicit preferences.
func (s *Store) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()
	email = normalize.Email(email)

	u := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: passwordHash,
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case/diacritic-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	folded := text.Fold(normalize.Email(email))
	if err := s.c.FindOne(ctx, bson.M{"email_ci": folded}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// PreferencesUpdate holds the preference fields that can be changed.
// Nil fields are left untouched.
type PreferencesUpdate struct {
	CaptureEnabled  *bool
	RetentionDays   *int
	ShowBreadcrumbs *bool
}

// UpdatePreferences applies a partial preference update and returns the
// updated user. Returns mongo.ErrNoDocuments if the user is absent.
func (s *Store) UpdatePreferences(ctx context.Context, id primitive.ObjectID, update PreferencesUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.CaptureEnabled != nil {
		set["preferences.capture_enabled"] = *update.CaptureEnabled
	}
	if update.RetentionDays != nil {
		set["preferences.retention_days"] = *update.RetentionDays
	}
	if update.ShowBreadcrumbs != nil {
		set["preferences.show_breadcrumbs"] = *update.ShowBreadcrumbs
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// RetentionUser is the projection the retention sweep iterates over.
type RetentionUser struct {
	ID          primitive.ObjectID `bson:"_id"`
	Preferences struct {
		RetentionDays int `bson:"retention_days"`
	} `bson:"preferences"`
}

// ListWithRetention returns the ids and retention settings of all users whose
// retention pruning is enabled (retention_days > 0).
func (s *Store) ListWithRetention(ctx context.Context) ([]RetentionUser, error) {
	proj := options.Find().SetProjection(bson.M{"_id": 1, "preferences.retention_days": 1})
	cur, err := s.c.Find(ctx, bson.M{"preferences.retention_days": bson.M{"$gt": 0}}, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []RetentionUser
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
