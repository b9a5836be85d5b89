package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is returned when no valid client IP can be determined. Callers
// treat it as an indeterminate identity rather than an empty string, so
// downstream keys and logs are never silently blank.
const Unknown = "unknown"

// trustedHeaders lists proxy headers in trust order. CDN-injected headers
// come first because they are set by infrastructure the application
// operator controls, generic proxy headers after.
var trustedHeaders = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP extracts the real client IP address from the request, checking proxy
// headers in trust order before falling back to the raw connection address.
// Returns Unknown when no candidate parses as a valid IP.
func GetIP(r *http.Request) string {
	if r == nil {
		return Unknown
	}

	for _, header := range trustedHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		// X-Forwarded-For may carry "client, proxy1, proxy2"; the leftmost
		// entry is the original client.
		if header == "X-Forwarded-For" {
			value, _, _ = strings.Cut(value, ",")
		}

		if ip := normalize(value); ip != "" {
			return ip
		}
	}

	// RemoteAddr is host:port for TCP connections, but may be a bare
	// address in tests or non-TCP transports.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		if ip := normalize(host); ip != "" {
			return ip
		}
	}
	if ip := normalize(r.RemoteAddr); ip != "" {
		return ip
	}

	return Unknown
}

// normalize parses and canonicalizes an IP candidate. Returns "" for
// anything invalid, including the unspecified addresses 0.0.0.0 and ::.
func normalize(value string) string {
	ip := net.ParseIP(strings.TrimSpace(value))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
