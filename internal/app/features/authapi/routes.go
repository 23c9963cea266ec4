package authapi

import (
	"net/http"

	"github.com/dalemusser/tabtrail/internal/app/system/apicors"
	"github.com/dalemusser/tabtrail/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a router with the account API endpoints.
//
// When mounted at /api/auth:
//   - POST /api/auth/signup      (public)
//   - POST /api/auth/login       (public)
//   - GET  /api/auth/me          (bearer)
//   - PUT  /api/auth/preferences (bearer)
func Routes(h *Handler, tokens *auth.Tokens, fetcher auth.UserFetcher, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())

	r.Post("/signup", h.SignupHandler)
	r.Post("/login", h.LoginHandler)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser(tokens, fetcher, logger))
		pr.Get("/me", h.MeHandler)
		pr.Put("/preferences", h.PreferencesHandler)
	})

	return r
}
