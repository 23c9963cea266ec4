// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/dalemusser/tabtrail/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each
// request, so a deleted account invalidates its outstanding tokens
// immediately and preference changes take effect on the next call.
type Fetcher struct {
	users  *mongo.Collection
	logger *zap.Logger
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		users:  db.Collection(CollectionName),
		logger: logger,
	}
}

// FetchUser retrieves a user by id and returns nil if the user is not found
// or if any error occurs. This implements auth.UserFetcher.
func (f *Fetcher) FetchUser(ctx context.Context, id primitive.ObjectID) *models.User {
	var u models.User
	if err := f.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err != mongo.ErrNoDocuments {
			f.logger.Warn("user fetch failed", zap.String("user_id", id.Hex()), zap.Error(err))
		}
		return nil
	}
	return &u
}
