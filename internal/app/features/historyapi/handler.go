// internal/app/features/historyapi/handler.go
package historyapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/tabtrail/internal/app/system/apierr"
	"github.com/dalemusser/tabtrail/internal/app/system/auth"
	"github.com/dalemusser/tabtrail/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler maps HTTP requests onto the history service.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new history API handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// ScreenshotHandler handles POST /api/history/screenshot.
//
// Request body:
//
//	{
//	    "url": "https://example.com/page",
//	    "title": "Example Page",
//	    "imageData": "<base64 png>",
//	    "favicon": "https://example.com/favicon.ico"  // optional
//	}
//
// Responds 201 with the stored item, or 201 with a notice body when the
// user has capture disabled (no item is created in that case).
func (h *Handler) ScreenshotHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var in struct {
		URL       string `json:"url"`
		Title     string `json:"title"`
		ImageData string `json:"imageData"`
		Favicon   string `json:"favicon"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.Fail(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	item, disabled, err := h.svc.AddItem(r.Context(), user, AddInput{
		URL:         in.URL,
		Title:       in.Title,
		ImageBase64: in.ImageData,
		Favicon:     in.Favicon,
	})
	if err != nil {
		apierr.Write(w, err)
		return
	}
	if disabled {
		jsonutil.Created(w, map[string]string{"message": "Screenshot capture is disabled"})
		return
	}

	jsonutil.Created(w, item)
}

// ListHandler handles GET /api/history.
//
// Query parameters: page, limit, domain, search, sortBy, sortOrder.
// Invalid page/limit values silently fall back to defaults.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	qs := r.URL.Query()

	q := ListQuery{
		Domain:    qs.Get("domain"),
		Search:    qs.Get("search"),
		SortBy:    qs.Get("sortBy"),
		SortOrder: qs.Get("sortOrder"),
		Page:      parseInt64(qs.Get("page")),
		Limit:     parseInt64(qs.Get("limit")),
	}

	page, err := h.svc.GetHistory(r.Context(), user.ID, q)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	jsonutil.OK(w, page)
}

// DomainsHandler handles GET /api/history/domains.
func (h *Handler) DomainsHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	counts, err := h.svc.GetDomains(r.Context(), user.ID)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	jsonutil.OK(w, counts)
}

// DeleteHandler handles DELETE /api/history/{id}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	itemID := chi.URLParam(r, "id")

	if err := h.svc.DeleteItem(r.Context(), user.ID, itemID); err != nil {
		apierr.Write(w, err)
		return
	}
	jsonutil.OK(w, map[string]string{"message": "History item deleted"})
}

// ClearHandler handles DELETE /api/history.
//
// Optional query parameters narrow the delete: domain (exact), before
// (RFC 3339 timestamp). With neither, the user's entire history is cleared.
func (h *Handler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	qs := r.URL.Query()

	q := ClearQuery{Domain: qs.Get("domain")}
	if raw := qs.Get("before"); raw != "" {
		before, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			jsonutil.Fail(w, http.StatusBadRequest, "before must be an RFC 3339 timestamp")
			return
		}
		q.Before = before
	}

	deleted, err := h.svc.ClearHistory(r.Context(), user.ID, q)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	jsonutil.OK(w, map[string]int64{"deletedCount": deleted})
}

// parseInt64 parses a positive query integer; anything else returns 0 so the
// service applies its default.
func parseInt64(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
