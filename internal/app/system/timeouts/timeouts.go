// Package timeouts centralizes the context timeouts used for database calls
// so the values stay consistent across stores and middleware.
package timeouts

import "time"

// Short is for single-document lookups on an indexed path.
func Short() time.Duration { return 5 * time.Second }

// Standard is for typical list/aggregate queries.
func Standard() time.Duration { return 15 * time.Second }

// Cleanup bounds background deletion passes.
func Cleanup() time.Duration { return 30 * time.Second }
