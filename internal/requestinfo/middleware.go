// internal/requestinfo/middleware.go
//
// HTTP middleware that attaches *RequestInfo to every request.
//
/*
Context
--------
Sits after chi's RequestID middleware and before the request logger.  For
every request it:

  1. Copies the request ID chi generated (or the inbound X-Request-Id).
  2. Extracts the left-most client IP from X-Forwarded-For or X-Real-IP,
     falling back to `r.RemoteAddr`.
  3. Parses the User-Agent header and, when a GeoLite2 DB is open, looks up
     the IP.
  4. Stores the result under an unexported context key so the request log
     and the intake pipeline can read it without reparsing.

Notes
-----
  • Read-only lookups, safe under concurrency.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Enrich attaches a *RequestInfo to the request context.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ctx := NewContext(r.Context(), &RequestInfo{
			RequestID: middleware.GetReqID(r.Context()),
			ClientIP:  ip,
			UA:        parseUA(r.UserAgent()),
			Geo:       lookupGeo(ip),
			Timestamp: time.Now().UTC(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// proxyHeaders are consulted in order before RemoteAddr.
var proxyHeaders = []string{"X-Forwarded-For", "X-Real-Ip"}

// clientIP returns the first parseable address found in proxyHeaders (for a
// list header, the left-most valid entry), else the host part of RemoteAddr.
func clientIP(r *http.Request) net.IP {
	for _, h := range proxyHeaders {
		if ip := firstIP(r.Header.Get(h)); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return nil
	}
	return net.ParseIP(host)
}

func firstIP(list string) net.IP {
	for rest := list; rest != ""; {
		var part string
		part, rest, _ = strings.Cut(rest, ",")
		if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
			return ip
		}
	}
	return nil
}
