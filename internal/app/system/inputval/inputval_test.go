package inputval

import "testing"

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"https", "https://example.com/page", true},
		{"http", "http://example.com", true},
		{"with port", "https://example.com:8443/x", true},
		{"with query", "https://example.com/search?q=go", true},
		{"ftp scheme", "ftp://example.com/file", false},
		{"chrome scheme", "chrome://settings", false},
		{"javascript scheme", "javascript:alert(1)", false},
		{"data url", "data:text/html,hi", false},
		{"relative path", "/just/a/path", false},
		{"scheme only", "https://", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidHTTPURL(tt.url); got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestDomainFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain host", "https://example.com/page", "example.com"},
		{"mixed case host", "https://News.Example.COM/story", "news.example.com"},
		{"strips port", "https://example.com:8443/x", "example.com"},
		{"subdomain", "https://mail.google.com/u/0", "mail.google.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DomainFromURL(tt.url)
			if err != nil {
				t.Fatalf("DomainFromURL(%q) error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("DomainFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}

	t.Run("stable across calls", func(t *testing.T) {
		a, _ := DomainFromURL("https://Example.com/a")
		b, _ := DomainFromURL("https://Example.com/a")
		if a != b {
			t.Errorf("DomainFromURL not stable: %q != %q", a, b)
		}
	})
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user+tag@example.co.uk", true},
		{"not-an-email", false},
		{"@example.com", false},
		{"user@", false},
		{"Name <user@example.com>", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidBase64(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want bool
	}{
		{"simple", "aGVsbG8=", true},
		{"unpadded multiple of 4", "dGVzdA==", true},
		{"not base64", "not!!base64", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidBase64(tt.s); got != tt.want {
				t.Errorf("IsValidBase64(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}
