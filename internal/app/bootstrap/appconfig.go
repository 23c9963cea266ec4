// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, CORS, and request size limits. AppConfig is
// everything specific to this application. The struct is built once in
// LoadConfig and passed into constructors; nothing reads configuration
// ambiently after startup.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// JWT bearer token configuration
	JWTSecret    string        // Signing secret for HS256 tokens (must be strong in production)
	JWTExpiresIn time.Duration // Token lifetime (default: 720h)

	// Image host configuration (external screenshot storage)
	ImageHostAPIURL  string        // Upload endpoint (freeimage.host API shape)
	ImageHostAPIKey  string        // API key sent with each upload
	ImageHostTimeout time.Duration // Per-upload timeout (default: 10s)

	// History configuration
	HistoryPageSize        int64         // Default page size for history listings (default: 50)
	RetentionSweepInterval time.Duration // How often the retention sweep runs (default: 12h)

	// Rate limiting configuration
	RateLimitEnabled       bool          // Enable rate limiting for login attempts (default: true)
	RateLimitLoginAttempts int           // Max failed login attempts before lockout (default: 5)
	RateLimitLoginWindow   time.Duration // Time window for counting failed attempts (default: 15m)
	RateLimitLoginLockout  time.Duration // Lockout duration after exceeding limit (default: 15m)
}
