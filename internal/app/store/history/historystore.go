// Package historystore provides storage for captured visit records.
//
// Every query and mutation is scoped to a single owner: each filter this
// package builds includes the user_id, and a zero ObjectID is rejected
// outright so a bug upstream can never match every user's documents.
package historystore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/tabtrail/internal/app/store/storeutil"
	"github.com/dalemusser/tabtrail/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the MongoDB collection for visit records.
const CollectionName = "history_items"

// ErrMissingUser is returned when a caller passes a zero user id.
var ErrMissingUser = errors.New("history query requires a user id")

// Store provides access to the history_items collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new history store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Filter narrows List/Count/DeleteMatching to a subset of a user's items.
// Zero values mean "no constraint".
type Filter struct {
	Domain string    // exact match on the stored domain
	Search string    // case-insensitive substring match on title or url
	Before time.Time // only items with timestamp strictly before this instant
}

func (s *Store) ownerFilter(userID primitive.ObjectID, f Filter) (bson.M, error) {
	if userID.IsZero() {
		return nil, ErrMissingUser
	}
	q := bson.M{"user_id": userID}
	if f.Domain != "" {
		q["domain"] = f.Domain
	}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		q["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"url": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if !f.Before.IsZero() {
		q["timestamp"] = bson.M{"$lt": f.Before}
	}
	return q, nil
}

// Create inserts a visit record. The caller has already derived the domain
// and obtained the image URL; Timestamp defaults to now if unset.
func (s *Store) Create(ctx context.Context, item *models.HistoryItem) error {
	if item.UserID.IsZero() {
		return ErrMissingUser
	}
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, item)
	return err
}

// sortFields is the whitelist of fields List will sort on. Anything else
// falls back to timestamp.
var sortFields = map[string]bool{
	"timestamp": true,
	"title":     true,
	"url":       true,
	"domain":    true,
}

// Sort describes the List ordering. Field must be whitelisted; any
// unrecognized field or order yields timestamp descending.
type Sort struct {
	Field     string
	Ascending bool
}

func (srt Sort) key() bson.D {
	field := srt.Field
	if !sortFields[field] {
		field = "timestamp"
	}
	dir := -1
	if srt.Ascending {
		dir = 1
	}
	// Tie-break on _id so pages are stable under equal sort keys.
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

// List returns one page of a user's items matching the filter.
// Page is 1-based; limit <= 0 falls back to the storeutil default.
func (s *Store) List(ctx context.Context, userID primitive.ObjectID, f Filter, srt Sort, limit, page int64) ([]models.HistoryItem, error) {
	q, err := s.ownerFilter(userID, f)
	if err != nil {
		return nil, err
	}

	opts := storeutil.Paginate(limit, page).SetSort(srt.key())

	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []models.HistoryItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Count returns the number of a user's items matching the filter.
func (s *Store) Count(ctx context.Context, userID primitive.ObjectID, f Filter) (int64, error) {
	q, err := s.ownerFilter(userID, f)
	if err != nil {
		return 0, err
	}
	return s.c.CountDocuments(ctx, q)
}

// DomainCounts aggregates a user's items by domain, most visited first.
// Domains tied on count sort alphabetically so the order is stable.
func (s *Store) DomainCounts(ctx context.Context, userID primitive.ObjectID) ([]models.DomainCount, error) {
	if userID.IsZero() {
		return nil, ErrMissingUser
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$domain",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":    0,
			"domain": "$_id",
			"count":  1,
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := []models.DomainCount{}
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// DeleteOne removes a single item if it belongs to the user. Returns
// mongo.ErrNoDocuments when nothing matched, so a caller cannot tell a
// foreign item apart from a missing one.
func (s *Store) DeleteOne(ctx context.Context, userID, itemID primitive.ObjectID) error {
	if userID.IsZero() {
		return ErrMissingUser
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": itemID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteMatching removes all of a user's items matching the filter and
// returns the number deleted. An empty filter clears the user's history.
func (s *Store) DeleteMatching(ctx context.Context, userID primitive.ObjectID, f Filter) (int64, error) {
	q, err := s.ownerFilter(userID, f)
	if err != nil {
		return 0, err
	}
	res, err := s.c.DeleteMany(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteOlderThan removes a user's items whose timestamp is older than the
// given number of days. days <= 0 is a no-op so a disabled retention
// setting never deletes anything.
func (s *Store) DeleteOlderThan(ctx context.Context, userID primitive.ObjectID, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	return s.DeleteMatching(ctx, userID, Filter{Before: cutoff})
}
