// Package historyapi provides the visit-history API: screenshot capture,
// paginated browsing with search and domain filters, per-domain counts, and
// deletion (single, bulk, and retention-based).
//
// Endpoints (mounted at /api/history):
//   - POST   /api/history/screenshot - Record a captured tab (protected)
//   - GET    /api/history            - List history with pagination (protected)
//   - GET    /api/history/domains    - Per-domain visit counts (protected)
//   - DELETE /api/history/{id}       - Delete one item (protected)
//   - DELETE /api/history            - Clear history, optionally filtered (protected)
//
// All visit records are stored in the history_items collection.
package historyapi

import (
	"context"
	"math"
	"time"

	historystore "github.com/dalemusser/tabtrail/internal/app/store/history"
	"github.com/dalemusser/tabtrail/internal/app/system/apierr"
	"github.com/dalemusser/tabtrail/internal/app/system/imagehost"
	"github.com/dalemusser/tabtrail/internal/app/system/inputval"
	"github.com/dalemusser/tabtrail/internal/app/system/normalize"
	"github.com/dalemusser/tabtrail/internal/app/system/timeouts"
	"github.com/dalemusser/tabtrail/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service orchestrates the capture and query flows on top of the history
// store and the image host.
type Service struct {
	history  *historystore.Store
	uploader imagehost.Uploader
	logger   *zap.Logger
	pageSize int64
}

// NewService creates a history service. pageSize <= 0 falls back to 50.
func NewService(history *historystore.Store, uploader imagehost.Uploader, pageSize int64, logger *zap.Logger) *Service {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Service{
		history:  history,
		uploader: uploader,
		logger:   logger,
		pageSize: pageSize,
	}
}

// AddInput is a capture request from the extension.
type AddInput struct {
	URL         string
	Title       string
	ImageBase64 string
	Favicon     string
}

// AddItem records one tab visit: validates the input, uploads the screenshot,
// derives the domain, and persists the item. When the user has capture
// disabled it returns disabled=true and touches nothing.
//
// A successful add with a retention window configured triggers a
// fire-and-forget prune of that user's expired items; its errors are logged,
// never surfaced, and the add response never waits for it.
func (s *Service) AddItem(ctx context.Context, user *models.User, in AddInput) (item *models.HistoryItem, disabled bool, err error) {
	if !inputval.IsValidHTTPURL(in.URL) {
		return nil, false, apierr.BadRequest("A valid http(s) url is required")
	}
	title := normalize.Title(in.Title)
	if title == "" {
		return nil, false, apierr.BadRequest("Title is required")
	}
	if !inputval.IsValidBase64(in.ImageBase64) {
		return nil, false, apierr.BadRequest("imageData must be base64-encoded")
	}

	if !user.Preferences.CaptureEnabled {
		return nil, true, nil
	}

	imageURL, err := s.uploader.Upload(ctx, in.ImageBase64)
	if err != nil {
		return nil, false, apierr.UploadFailed(err)
	}

	domain, err := inputval.DomainFromURL(in.URL)
	if err != nil || domain == "" {
		return nil, false, apierr.BadRequest("A valid http(s) url is required")
	}

	rec := &models.HistoryItem{
		UserID:    user.ID,
		URL:       in.URL,
		Title:     title,
		ImageURL:  imageURL,
		Favicon:   in.Favicon,
		Domain:    domain,
		Timestamp: time.Now().UTC(),
	}
	if err := s.history.Create(ctx, rec); err != nil {
		s.logger.Error("failed to persist history item",
			zap.String("user_id", user.ID.Hex()),
			zap.String("domain", domain),
			zap.Error(err))
		return nil, false, apierr.Internal(err)
	}

	s.logger.Debug("history item recorded",
		zap.String("user_id", user.ID.Hex()),
		zap.String("id", rec.ID.Hex()),
		zap.String("domain", domain))

	if user.Preferences.RetentionDays > 0 {
		go s.pruneExpired(user.ID, user.Preferences.RetentionDays)
	}

	return rec, false, nil
}

// pruneExpired removes a user's items past their retention window.
// Runs asynchronously after each capture.
func (s *Service) pruneExpired(userID primitive.ObjectID, days int) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Cleanup())
	defer cancel()

	deleted, err := s.history.DeleteOlderThan(ctx, userID, days)
	if err != nil {
		s.logger.Warn("retention cleanup failed",
			zap.String("user_id", userID.Hex()),
			zap.Int("retention_days", days),
			zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("retention cleanup removed expired items",
			zap.String("user_id", userID.Hex()),
			zap.Int64("deleted", deleted))
	}
}

// RemoveExpired prunes a user's items older than the given retention window
// and returns the number removed. The scheduled sweep uses this directly.
func (s *Service) RemoveExpired(ctx context.Context, userID primitive.ObjectID, days int) (int64, error) {
	return s.history.DeleteOlderThan(ctx, userID, days)
}

// ListQuery narrows and orders a history listing. Zero values mean defaults:
// no filters, timestamp descending, page 1, configured page size.
type ListQuery struct {
	Domain    string
	Search    string
	SortBy    string
	SortOrder string // "asc" ascending, anything else descending
	Limit     int64
	Page      int64
}

// Pagination describes one page of results.
type Pagination struct {
	Total       int64 `json:"total"`
	Limit       int64 `json:"limit"`
	Page        int64 `json:"page"`
	TotalPages  int64 `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Page is the GetHistory result.
type Page struct {
	Items      []models.HistoryItem `json:"items"`
	Pagination Pagination           `json:"pagination"`
}

// GetHistory returns one page of the user's history. Out-of-range paging
// values fall back to defaults rather than erroring; a page past the end
// yields an empty item list with correct totals.
func (s *Service) GetHistory(ctx context.Context, userID primitive.ObjectID, q ListQuery) (*Page, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	filter := historystore.Filter{Domain: q.Domain, Search: q.Search}
	srt := historystore.Sort{Field: q.SortBy, Ascending: q.SortOrder == "asc"}

	total, err := s.history.Count(ctx, userID, filter)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	items, err := s.history.List(ctx, userID, filter, srt, limit, page)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	totalPages := int64(math.Ceil(float64(total) / float64(limit)))
	return &Page{
		Items: items,
		Pagination: Pagination{
			Total:       total,
			Limit:       limit,
			Page:        page,
			TotalPages:  totalPages,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}

// GetDomains returns the user's per-domain visit counts, most visited first.
func (s *Service) GetDomains(ctx context.Context, userID primitive.ObjectID) ([]models.DomainCount, error) {
	counts, err := s.history.DomainCounts(ctx, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return counts, nil
}

// DeleteItem removes one item by id. A malformed id, a missing item, and an
// item owned by someone else all yield the same NotFound, so nothing about
// other users' history leaks.
func (s *Service) DeleteItem(ctx context.Context, userID primitive.ObjectID, itemID string) error {
	oid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return apierr.NotFound("History item not found")
	}
	if err := s.history.DeleteOne(ctx, userID, oid); err != nil {
		if err == mongo.ErrNoDocuments {
			return apierr.NotFound("History item not found")
		}
		return apierr.Internal(err)
	}
	return nil
}

// ClearQuery narrows a bulk delete. Zero values clear everything.
type ClearQuery struct {
	Domain string
	Before time.Time
}

// ClearHistory bulk-deletes the user's items matching the query and returns
// the count removed. Matching nothing is success with count zero.
func (s *Service) ClearHistory(ctx context.Context, userID primitive.ObjectID, q ClearQuery) (int64, error) {
	deleted, err := s.history.DeleteMatching(ctx, userID, historystore.Filter{
		Domain: q.Domain,
		Before: q.Before,
	})
	if err != nil {
		return 0, apierr.Internal(err)
	}
	return deleted, nil
}
