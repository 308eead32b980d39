package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxTemplateIDLen bounds template ids accepted on the command line.
const MaxTemplateIDLen = 64

// IsValidIdentifierChar reports whether ch may appear in an identifier
// (alphanumeric, hyphen, or underscore).
func IsValidIdentifierChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '_'
}

// ValidateTemplateID checks that id is safe to interpolate into an API
// path segment.
func ValidateTemplateID(id string) error {
	if id == "" {
		return fmt.Errorf("template id cannot be empty")
	}
	if len(id) > MaxTemplateIDLen {
		return fmt.Errorf("template id exceeds %d characters", MaxTemplateIDLen)
	}
	for _, ch := range id {
		if !IsValidIdentifierChar(ch) {
			return fmt.Errorf("template id %q contains invalid character %q", id, ch)
		}
	}
	return nil
}

// NormalizeHost turns the host a user types at login ("10.0.0.5:8000",
// "https://api.example.com/") into a base URL without a trailing slash.
// A missing scheme defaults to http.
func NormalizeHost(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("host cannot be empty")
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", host, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid host %q: missing host name", host)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}
