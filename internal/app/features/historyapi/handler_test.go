package historyapi

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	historystore "github.com/dalemusser/tabtrail/internal/app/store/history"
	"github.com/dalemusser/tabtrail/internal/domain/models"
	"github.com/dalemusser/tabtrail/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeUploader satisfies imagehost.Uploader without network calls.
type fakeUploader struct {
	url   string
	err   error
	calls int
}

func (f *fakeUploader) Upload(ctx context.Context, imageBase64 string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func testImageData() string {
	return base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
}

type successEnvelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func newTestHandler(t *testing.T, uploader *fakeUploader) (*Handler, *historystore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := historystore.New(db)
	svc := NewService(store, uploader, 50, zap.NewNop())
	return NewHandler(svc, zap.NewNop()), store
}

func TestHandler_ScreenshotHandler(t *testing.T) {
	uploader := &fakeUploader{url: "https://img.example/shot.png"}
	h, store := newTestHandler(t, uploader)
	user := testutil.NewUser()

	t.Run("successful capture", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/screenshot", map[string]string{
			"url":       "https://News.Example.com/story",
			"title":     "Story",
			"imageData": testImageData(),
		})
		rec := httptest.NewRecorder()

		h.ScreenshotHandler(rec, testutil.WithUser(req, user))

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var resp struct {
			Success bool               `json:"success"`
			Data    models.HistoryItem `json:"data"`
		}
		testutil.DecodeJSON(t, rec, &resp)
		if !resp.Success {
			t.Error("success should be true")
		}
		if resp.Data.Domain != "news.example.com" {
			t.Errorf("domain = %q, want lowercase hostname", resp.Data.Domain)
		}
		if resp.Data.ImageURL != uploader.url {
			t.Errorf("imageUrl = %q, want %q", resp.Data.ImageURL, uploader.url)
		}
		if resp.Data.ID.IsZero() {
			t.Error("id should be set")
		}

		ctx, cancel := testutil.TestContext()
		defer cancel()
		if n, _ := store.Count(ctx, user.ID, historystore.Filter{}); n != 1 {
			t.Errorf("stored items = %d, want 1", n)
		}
	})

	t.Run("capture disabled returns notice and stores nothing", func(t *testing.T) {
		disabledUser := testutil.NewUser()
		disabledUser.Preferences.CaptureEnabled = false
		before := uploader.calls

		req := testutil.NewJSONRequest(t, http.MethodPost, "/screenshot", map[string]string{
			"url":       "https://a.example/p",
			"title":     "Page",
			"imageData": testImageData(),
		})
		rec := httptest.NewRecorder()

		h.ScreenshotHandler(rec, testutil.WithUser(req, disabledUser))

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
		}
		var resp successEnvelope
		testutil.DecodeJSON(t, rec, &resp)
		if resp.Data["message"] != "Screenshot capture is disabled" {
			t.Errorf("message = %v", resp.Data["message"])
		}
		if uploader.calls != before {
			t.Error("nothing should be uploaded when capture is disabled")
		}

		ctx, cancel := testutil.TestContext()
		defer cancel()
		if n, _ := store.Count(ctx, disabledUser.ID, historystore.Filter{}); n != 0 {
			t.Errorf("stored items = %d, want 0", n)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/screenshot", map[string]string{
			"url":       "ftp://a.example/p",
			"title":     "Page",
			"imageData": testImageData(),
		})
		rec := httptest.NewRecorder()

		h.ScreenshotHandler(rec, testutil.WithUser(req, user))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/screenshot", map[string]string{
			"url":       "https://a.example/p",
			"title":     "   ",
			"imageData": testImageData(),
		})
		rec := httptest.NewRecorder()

		h.ScreenshotHandler(rec, testutil.WithUser(req, user))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("invalid base64", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/screenshot", map[string]string{
			"url":       "https://a.example/p",
			"title":     "Page",
			"imageData": "not!!base64",
		})
		rec := httptest.NewRecorder()

		h.ScreenshotHandler(rec, testutil.WithUser(req, user))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestHandler_ScreenshotHandler_UploadFailure(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("host unreachable")}
	h, store := newTestHandler(t, uploader)
	user := testutil.NewUser()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/screenshot", map[string]string{
		"url":       "https://a.example/p",
		"title":     "Page",
		"imageData": testImageData(),
	})
	rec := httptest.NewRecorder()

	h.ScreenshotHandler(rec, testutil.WithUser(req, user))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var resp errorEnvelope
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Success {
		t.Error("success should be false")
	}
	if resp.Message != "Image upload failed" {
		t.Errorf("message = %q", resp.Message)
	}

	// A failed upload must not leave a partial record behind.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if n, _ := store.Count(ctx, user.ID, historystore.Filter{}); n != 0 {
		t.Errorf("stored items = %d, want 0", n)
	}
}

func TestHandler_ListHandler(t *testing.T) {
	uploader := &fakeUploader{url: "https://img.example/s.png"}
	h, store := newTestHandler(t, uploader)
	user := testutil.NewUser()
	now := time.Now().UTC()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	for i := 0; i < 5; i++ {
		item := &models.HistoryItem{
			UserID:    user.ID,
			URL:       "https://a.example/p",
			Title:     "Page",
			ImageURL:  "https://img.example/s.png",
			Domain:    "a.example",
			Timestamp: now.Add(time.Duration(-i) * time.Minute),
		}
		if err := store.Create(ctx, item); err != nil {
			t.Fatalf("seed Create() error: %v", err)
		}
	}

	t.Run("pagination envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=2", nil)
		rec := httptest.NewRecorder()

		h.ListHandler(rec, testutil.WithUser(req, user))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp struct {
			Success bool `json:"success"`
			Data    Page `json:"data"`
		}
		testutil.DecodeJSON(t, rec, &resp)
		p := resp.Data.Pagination
		if p.Total != 5 || p.Limit != 2 || p.Page != 2 || p.TotalPages != 3 {
			t.Errorf("pagination = %+v", p)
		}
		if !p.HasNextPage || !p.HasPrevPage {
			t.Errorf("hasNext/hasPrev = %v/%v, want true/true", p.HasNextPage, p.HasPrevPage)
		}
		if len(resp.Data.Items) != 2 {
			t.Errorf("items = %d, want 2", len(resp.Data.Items))
		}
	})

	t.Run("invalid paging params fall back to defaults", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?page=abc&limit=-3", nil)
		rec := httptest.NewRecorder()

		h.ListHandler(rec, testutil.WithUser(req, user))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp struct {
			Success bool `json:"success"`
			Data    Page `json:"data"`
		}
		testutil.DecodeJSON(t, rec, &resp)
		if resp.Data.Pagination.Page != 1 || resp.Data.Pagination.Limit != 50 {
			t.Errorf("pagination defaults = %+v", resp.Data.Pagination)
		}
	})

	t.Run("empty history yields empty items array", func(t *testing.T) {
		fresh := testutil.NewUser()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		h.ListHandler(rec, testutil.WithUser(req, fresh))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp struct {
			Success bool `json:"success"`
			Data    Page `json:"data"`
		}
		testutil.DecodeJSON(t, rec, &resp)
		if resp.Data.Items == nil {
			t.Error("items should be an empty array, not null")
		}
		if resp.Data.Pagination.Total != 0 {
			t.Errorf("total = %d, want 0", resp.Data.Pagination.Total)
		}
	})
}

func TestHandler_DomainsHandler(t *testing.T) {
	uploader := &fakeUploader{url: "https://img.example/s.png"}
	h, store := newTestHandler(t, uploader)
	user := testutil.NewUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	for _, domain := range []string{"a.example", "a.example", "b.example"} {
		item := &models.HistoryItem{
			UserID:    user.ID,
			URL:       "https://" + domain + "/p",
			Title:     "Page",
			ImageURL:  "https://img.example/s.png",
			Domain:    domain,
			Timestamp: time.Now().UTC(),
		}
		if err := store.Create(ctx, item); err != nil {
			t.Fatalf("seed Create() error: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/domains", nil)
	rec := httptest.NewRecorder()

	h.DomainsHandler(rec, testutil.WithUser(req, user))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Success bool                 `json:"success"`
		Data    []models.DomainCount `json:"data"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp.Data) != 2 {
		t.Fatalf("domains = %d, want 2", len(resp.Data))
	}
	if resp.Data[0].Domain != "a.example" || resp.Data[0].Count != 2 {
		t.Errorf("top domain = %+v", resp.Data[0])
	}
}

func TestHandler_DeleteHandler(t *testing.T) {
	uploader := &fakeUploader{url: "https://img.example/s.png"}
	h, store := newTestHandler(t, uploader)
	user := testutil.NewUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	item := &models.HistoryItem{
		UserID:    user.ID,
		URL:       "https://a.example/p",
		Title:     "Page",
		ImageURL:  "https://img.example/s.png",
		Domain:    "a.example",
		Timestamp: time.Now().UTC(),
	}
	if err := store.Create(ctx, item); err != nil {
		t.Fatalf("seed Create() error: %v", err)
	}

	deleteVia := func(id string, u *models.User) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Delete("/{id}", h.DeleteHandler)
		req := httptest.NewRequest(http.MethodDelete, "/"+id, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, testutil.WithUser(req, u))
		return rec
	}

	t.Run("malformed id", func(t *testing.T) {
		rec := deleteVia("not-a-hex-id", user)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("other user's item looks missing", func(t *testing.T) {
		rec := deleteVia(item.ID.Hex(), testutil.NewUser())
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("owner delete succeeds", func(t *testing.T) {
		rec := deleteVia(item.ID.Hex(), user)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})

	t.Run("missing after delete", func(t *testing.T) {
		rec := deleteVia(primitive.NewObjectID().Hex(), user)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestHandler_ClearHandler(t *testing.T) {
	uploader := &fakeUploader{url: "https://img.example/s.png"}
	h, store := newTestHandler(t, uploader)
	user := testutil.NewUser()
	now := time.Now().UTC()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	seed := []struct {
		domain string
		ts     time.Time
	}{
		{"a.example", now.Add(-48 * time.Hour)},
		{"a.example", now},
		{"b.example", now},
	}
	for _, sd := range seed {
		item := &models.HistoryItem{
			UserID:    user.ID,
			URL:       "https://" + sd.domain + "/p",
			Title:     "Page",
			ImageURL:  "https://img.example/s.png",
			Domain:    sd.domain,
			Timestamp: sd.ts,
		}
		if err := store.Create(ctx, item); err != nil {
			t.Fatalf("seed Create() error: %v", err)
		}
	}

	t.Run("bad before timestamp", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/?before=yesterday", nil)
		rec := httptest.NewRecorder()

		h.ClearHandler(rec, testutil.WithUser(req, user))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("filtered clear", func(t *testing.T) {
		cutoff := now.Add(-1 * time.Hour).Format(time.RFC3339)
		req := httptest.NewRequest(http.MethodDelete, "/?domain=a.example&before="+cutoff, nil)
		rec := httptest.NewRecorder()

		h.ClearHandler(rec, testutil.WithUser(req, user))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp struct {
			Success bool             `json:"success"`
			Data    map[string]int64 `json:"data"`
		}
		testutil.DecodeJSON(t, rec, &resp)
		if resp.Data["deletedCount"] != 1 {
			t.Errorf("deletedCount = %d, want 1", resp.Data["deletedCount"])
		}
	})

	t.Run("unfiltered clear removes the rest", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		rec := httptest.NewRecorder()

		h.ClearHandler(rec, testutil.WithUser(req, user))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp struct {
			Success bool             `json:"success"`
			Data    map[string]int64 `json:"data"`
		}
		testutil.DecodeJSON(t, rec, &resp)
		if resp.Data["deletedCount"] != 2 {
			t.Errorf("deletedCount = %d, want 2", resp.Data["deletedCount"])
		}
	})
}
