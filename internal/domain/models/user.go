// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Retention bounds for Preferences.RetentionDays.
const (
	MinRetentionDays = 1
	MaxRetentionDays = 365

	DefaultRetentionDays = 30
)

// Preferences holds per-user capture and retention settings.
//
// CaptureEnabled gates whether new screenshot uploads are persisted at all;
// RetentionDays drives pruning of history items older than now-RetentionDays.
type Preferences struct {
	CaptureEnabled  bool `bson:"capture_enabled" json:"captureEnabled"`
	RetentionDays   int  `bson:"retention_days" json:"retentionDays"`
	ShowBreadcrumbs bool `bson:"show_breadcrumbs" json:"showBreadcrumbs"`
}

// DefaultPreferences returns the preferences assigned to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{
		CaptureEnabled:  true,
		RetentionDays:   DefaultRetentionDays,
		ShowBreadcrumbs: true,
	}
}

// User represents an account of the capture service.
//
// Email fields:
//   - Email: contact/login address (stored lowercase)
//   - EmailCI: case/diacritic-insensitive version for matching (folded)
type User struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email   string             `bson:"email" json:"email"`
	EmailCI string             `bson:"email_ci" json:"-"` // lowercase, diacritics-stripped

	PasswordHash string `bson:"password_hash" json:"-"` // bcrypt hash (never in JSON)

	Preferences Preferences `bson:"preferences" json:"preferences"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ValidRetentionDays reports whether d is within the allowed retention range.
func ValidRetentionDays(d int) bool {
	return d >= MinRetentionDays && d <= MaxRetentionDays
}
