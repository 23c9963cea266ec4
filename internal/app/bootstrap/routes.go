// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	authapifeature "github.com/dalemusser/tabtrail/internal/app/features/authapi"
	healthfeature "github.com/dalemusser/tabtrail/internal/app/features/health"
	historyapifeature "github.com/dalemusser/tabtrail/internal/app/features/historyapi"
	"github.com/dalemusser/tabtrail/internal/app/store/ratelimit"
	historystore "github.com/dalemusser/tabtrail/internal/app/store/history"
	userstore "github.com/dalemusser/tabtrail/internal/app/store/users"
	"github.com/dalemusser/tabtrail/internal/app/system/auth"
	"github.com/dalemusser/tabtrail/internal/app/system/jsonutil"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the MongoDB client and image host client bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// The whole surface is a stateless bearer-token JSON API: no sessions, no
// CSRF, permissive CORS on the /api subrouters.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Stores
	users := userstore.New(deps.MongoDatabase)
	history := historystore.New(deps.MongoDatabase)

	var limiter *ratelimit.Store
	if appCfg.RateLimitEnabled {
		limiter = ratelimit.New(
			deps.MongoDatabase,
			appCfg.RateLimitLoginAttempts,
			appCfg.RateLimitLoginWindow,
			appCfg.RateLimitLoginLockout,
		)
	}

	// Token issuer and the per-request user fetcher the auth middleware uses.
	// Fetching fresh user data each request means deleted accounts and
	// preference changes take effect immediately.
	tokens := auth.NewTokens(appCfg.JWTSecret, appCfg.JWTExpiresIn)
	fetcher := userstore.NewFetcher(deps.MongoDatabase, logger)

	// Services and handlers
	historySvc := historyapifeature.NewService(history, deps.ImageHost, appCfg.HistoryPageSize, logger)
	historyHandler := historyapifeature.NewHandler(historySvc, logger)
	authHandler := authapifeature.NewHandler(users, tokens, limiter, logger)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// ─────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────

	// Account API: signup/login are public, me/preferences require a bearer token.
	r.Mount("/api/auth", authapifeature.Routes(authHandler, tokens, fetcher, logger))

	// History API: all routes require a bearer token.
	r.Mount("/api/history", historyapifeature.Routes(historyHandler, tokens, fetcher, logger))

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Everything else is JSON 404, matching the API's error envelope.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.Fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r, nil
}
