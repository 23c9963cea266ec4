// Package inputval provides input validation for the JSON API: URL, email,
// and base64 payload checks, plus domain derivation from page URLs.
package inputval

import (
	"encoding/base64"
	"net/mail"
	"net/url"
	"strings"
)

// IsValidHTTPURL reports whether s is an absolute URL with an http or https
// scheme and a non-empty host.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// DomainFromURL returns the hostname component of rawURL, normalized the way
// the URL parser normalizes hosts (lowercase, no port). Deriving twice from
// the same URL always yields the same string.
func DomainFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return strings.ToLower(u.Hostname()), nil
}

// IsValidEmail reports whether s parses as a bare RFC 5322 address.
func IsValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject display-name forms like "Name <a@b.com>"; only the address itself.
	return addr.Address == s
}

// IsValidBase64 reports whether s is non-empty standard base64.
func IsValidBase64(s string) bool {
	if s == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}
