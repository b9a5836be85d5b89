// Package clientip extracts real client IP addresses from HTTP requests.
//
// This package handles various proxy headers in priority order to determine
// the actual client IP address, which is essential for rate limiting and
// security logging in web applications behind proxies, load balancers, or
// CDNs.
//
// # Header Priority
//
// The package checks headers in this specific order:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (most common proxy header, leftmost entry wins)
//  4. X-Real-IP (nginx and other proxies)
//  5. RemoteAddr (direct connection)
//
// This priority order ensures that the most reliable sources are checked
// first.
//
// # Usage
//
//	func handleRequest(w http.ResponseWriter, r *http.Request) {
//		ip := clientip.GetIP(r)
//		if ip == clientip.Unknown {
//			// identity could not be determined; rate limiting policy decides
//			// whether to fail open or closed
//		}
//	}
//
// # Validation and Security
//
// All IP addresses are validated and normalized:
//   - Invalid IP strings are rejected
//   - IPv6 addresses are properly handled
//   - Unspecified addresses (0.0.0.0, ::) are rejected
//   - All IPs are normalized using Go's net.IP.String() method
//
// When no candidate is valid the function returns the Unknown sentinel
// rather than an empty string, so keys built from the result are never
// silently blank.
package clientip
