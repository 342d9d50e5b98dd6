// Package conventions defines the fixed names and URL rules shared by the
// page server and its upstream counter API.
package conventions

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultOrigin is the upstream origin used when API_ORIGIN is unset.
	DefaultOrigin = "http://127.0.0.1"

	// LegacyOrigin is the port-explicit origin older deployments were
	// configured with. It is accepted as-is; origins are never rewritten.
	LegacyOrigin = "http://127.0.0.1:80"

	// CounterPath is the upstream endpoint returning {"counter": <number>}.
	CounterPath = "/api/counter"

	// PagePath is the only route served.
	PagePath = "/"
)

// NormalizeOrigin validates an origin and trims trailing slashes. An empty
// origin resolves to DefaultOrigin.
//
// Examples:
//
//	""                          → "http://127.0.0.1"
//	"http://api.internal:9090/" → "http://api.internal:9090"
//	"http://127.0.0.1:80"       → "http://127.0.0.1:80"
func NormalizeOrigin(origin string) (string, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return DefaultOrigin, nil
	}
	origin = strings.TrimRight(origin, "/")

	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid origin %q: scheme must be http or https", origin)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid origin %q: missing host", origin)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("invalid origin %q: query and fragment are not allowed", origin)
	}
	return origin, nil
}

// CounterURL returns the full upstream counter URL for an origin.
func CounterURL(origin string) (string, error) {
	o, err := NormalizeOrigin(origin)
	if err != nil {
		return "", err
	}
	return o + CounterPath, nil
}

// IsPlainTextClient reports whether a User-Agent should be answered with
// plain text instead of HTML. Clients that send no User-Agent and curl get
// plain text; browsers get HTML.
func IsPlainTextClient(userAgent string) bool {
	return userAgent == "" || strings.HasPrefix(userAgent, "curl")
}
