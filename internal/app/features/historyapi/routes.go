package historyapi

import (
	"net/http"

	"github.com/dalemusser/tabtrail/internal/app/system/apicors"
	"github.com/dalemusser/tabtrail/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a router with the history API endpoints.
//
// When mounted at /api/history:
//   - POST   /api/history/screenshot
//   - GET    /api/history
//   - GET    /api/history/domains
//   - DELETE /api/history/{id}
//   - DELETE /api/history
//
// Authentication is via JWT bearer token; CORS is permissive (allows any
// origin) since no cookies are involved.
func Routes(h *Handler, tokens *auth.Tokens, fetcher auth.UserFetcher, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(auth.RequireUser(tokens, fetcher, logger))

	r.Post("/screenshot", h.ScreenshotHandler)
	r.Get("/", h.ListHandler)
	r.Get("/domains", h.DomainsHandler)
	r.Delete("/{id}", h.DeleteHandler)
	r.Delete("/", h.ClearHandler)

	return r
}
