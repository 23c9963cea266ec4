// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address for storage and comparison.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Title trims surrounding whitespace from a page title.
func Title(s string) string {
	return strings.TrimSpace(s)
}
