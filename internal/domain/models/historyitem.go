// internal/domain/models/historyitem.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryItem is one captured visit: a screenshot of a tab plus the page
// metadata recorded when the user switched to it.
//
// Items are immutable after creation; the only lifecycle transition is
// deletion (by id+owner, by filter, or by retention cleanup). Domain is
// derived from the URL's hostname at creation time and is always consistent
// with it.
type HistoryItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	URL       string             `bson:"url" json:"url"`
	Title     string             `bson:"title" json:"title"`
	ImageURL  string             `bson:"image_url" json:"imageUrl"`
	Favicon   string             `bson:"favicon,omitempty" json:"favicon,omitempty"`
	Domain    string             `bson:"domain" json:"domain"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// DomainCount is one row of the per-user domain aggregation.
type DomainCount struct {
	Domain string `bson:"domain" json:"domain"`
	Count  int64  `bson:"count" json:"count"`
}
