// Package auth issues and verifies the JWT bearer tokens the extension uses
// to authenticate against the API, and provides the middleware that resolves
// a token to a live user record on each request.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claims is the JWT payload carried by API tokens.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens mints and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	expiry time.Duration
}

// NewTokens creates a token issuer with the given signing secret and lifetime.
func NewTokens(secret string, expiry time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), expiry: expiry}
}

// Issue mints a signed token for the given user.
func (t *Tokens) Issue(userID primitive.ObjectID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// ErrInvalidToken is returned for malformed, mis-signed, or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Verify parses and validates a token, returning the user id it names.
func (t *Tokens) Verify(tokenString string) (primitive.ObjectID, *Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return primitive.NilObjectID, nil, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, nil, ErrInvalidToken
	}
	return userID, claims, nil
}
