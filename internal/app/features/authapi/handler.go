// Package authapi provides the account API: signup, login, current-user
// lookup, and preference updates.
//
// Endpoints (mounted at /api/auth):
//   - POST /api/auth/signup      - Create an account, returns a bearer token
//   - POST /api/auth/login       - Exchange credentials for a bearer token
//   - GET  /api/auth/me          - Current account (protected)
//   - PUT  /api/auth/preferences - Update capture preferences (protected)
package authapi

import (
	"errors"
	"net/http"

	"github.com/dalemusser/tabtrail/internal/app/store/ratelimit"
	userstore "github.com/dalemusser/tabtrail/internal/app/store/users"
	"github.com/dalemusser/tabtrail/internal/app/system/apierr"
	"github.com/dalemusser/tabtrail/internal/app/system/auth"
	"github.com/dalemusser/tabtrail/internal/app/system/authutil"
	"github.com/dalemusser/tabtrail/internal/app/system/inputval"
	"github.com/dalemusser/tabtrail/internal/app/system/jsonutil"
	"github.com/dalemusser/tabtrail/internal/app/system/normalize"
	"github.com/dalemusser/tabtrail/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles account requests.
type Handler struct {
	users   *userstore.Store
	tokens  *auth.Tokens
	limiter *ratelimit.Store // nil disables login rate limiting
	logger  *zap.Logger
}

// NewHandler creates a new auth API handler. limiter may be nil when login
// rate limiting is disabled by config.
func NewHandler(users *userstore.Store, tokens *auth.Tokens, limiter *ratelimit.Store, logger *zap.Logger) *Handler {
	return &Handler{
		users:   users,
		tokens:  tokens,
		limiter: limiter,
		logger:  logger,
	}
}

// credentials is the shared signup/login request body.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse pairs a bearer token with the account it belongs to.
type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// SignupHandler handles POST /api/auth/signup.
//
// Responds 201 with a token and the new account, 400 for an invalid email or
// a weak password, 409 when the email is already registered.
func (h *Handler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.Fail(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	email := normalize.Email(in.Email)
	if !inputval.IsValidEmail(email) {
		jsonutil.Fail(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		jsonutil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.logger.Error("password hashing failed", zap.Error(err))
		apierr.Write(w, apierr.Internal(err))
		return
	}

	user, err := h.users.Create(r.Context(), email, hash)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			jsonutil.Fail(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		h.logger.Error("signup failed", zap.Error(err))
		apierr.Write(w, apierr.Internal(err))
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		apierr.Write(w, apierr.Internal(err))
		return
	}

	h.logger.Info("account created", zap.String("user_id", user.ID.Hex()))
	jsonutil.Created(w, sessionResponse{Token: token, User: user})
}

// LoginHandler handles POST /api/auth/login.
//
// Responds 200 with a token, 401 for bad credentials (without revealing
// whether the email exists), 429 when the email is locked out.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.Fail(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	email := normalize.Email(in.Email)
	if email == "" || in.Password == "" {
		jsonutil.Fail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if h.limiter != nil {
		allowed, _, _ := h.limiter.CheckAllowed(r.Context(), email)
		if !allowed {
			h.logger.Warn("login locked out", zap.String("email", email))
			jsonutil.Fail(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
			return
		}
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.recordFailure(r, email)
			jsonutil.Fail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("login lookup failed", zap.Error(err))
		apierr.Write(w, apierr.Internal(err))
		return
	}

	if !authutil.CheckPassword(in.Password, user.PasswordHash) {
		h.recordFailure(r, email)
		jsonutil.Fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if h.limiter != nil {
		if err := h.limiter.ClearOnSuccess(r.Context(), email); err != nil {
			h.logger.Warn("rate limit clear failed", zap.Error(err))
		}
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		apierr.Write(w, apierr.Internal(err))
		return
	}

	h.logger.Info("login", zap.String("user_id", user.ID.Hex()))
	jsonutil.OK(w, sessionResponse{Token: token, User: user})
}

func (h *Handler) recordFailure(r *http.Request, email string) {
	if h.limiter == nil {
		return
	}
	if lockedOut, _ := h.limiter.RecordFailure(r.Context(), email); lockedOut {
		h.logger.Warn("login lockout triggered", zap.String("email", email))
	}
}

// MeHandler handles GET /api/auth/me.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	jsonutil.OK(w, user)
}

// PreferencesHandler handles PUT /api/auth/preferences.
//
// Request body (all fields optional, omitted fields unchanged):
//
//	{
//	    "captureEnabled": false,
//	    "retentionDays": 90,
//	    "showBreadcrumbs": true
//	}
//
// Responds 200 with the updated account, 400 when retentionDays is outside
// [1, 365].
func (h *Handler) PreferencesHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var in struct {
		CaptureEnabled  *bool `json:"captureEnabled"`
		RetentionDays   *int  `json:"retentionDays"`
		ShowBreadcrumbs *bool `json:"showBreadcrumbs"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.Fail(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if in.RetentionDays != nil && !models.ValidRetentionDays(*in.RetentionDays) {
		jsonutil.Fail(w, http.StatusBadRequest, "retentionDays must be between 1 and 365")
		return
	}

	updated, err := h.users.UpdatePreferences(r.Context(), user.ID, userstore.PreferencesUpdate{
		CaptureEnabled:  in.CaptureEnabled,
		RetentionDays:   in.RetentionDays,
		ShowBreadcrumbs: in.ShowBreadcrumbs,
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Fail(w, http.StatusUnauthorized, "User no longer exists")
			return
		}
		h.logger.Error("preferences update failed",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err))
		apierr.Write(w, apierr.Internal(err))
		return
	}

	h.logger.Debug("preferences updated", zap.String("user_id", user.ID.Hex()))
	jsonutil.OK(w, updated)
}
