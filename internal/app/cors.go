package app

import (
	"net/url"
	"strings"
)

// extractOriginHost reduces an Origin header value to its "host[:port]"
// part so allow-list patterns never have to mention the scheme.
func extractOriginHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchOriginPattern reports whether host matches pattern. Besides exact
// matches, "*.example.com" admits any subdomain and "localhost:*" admits
// any port, which covers admin dashboards running on dev servers.
func matchOriginPattern(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, strings.TrimPrefix(pattern, "*"))
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, strings.TrimSuffix(pattern, "*"))
	}
	return false
}
