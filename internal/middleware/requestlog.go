// internal/middleware/requestlog.go
//
// Structured access log and per-route request counter.
//
// One INFO line per request once the handler returns: method, route pattern,
// status, bytes, duration, and whatever requestinfo.Enrich attached.  The
// raw query string and request body are never logged.

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/newsletter/internal/metrics"
	"github.com/yanizio/newsletter/internal/requestinfo"
)

// RequestLog logs each request to log and counts it in
// metrics.HTTPRequestsTotal.
func RequestLog(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			metrics.HTTPRequestsTotal.
				WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if info := requestinfo.FromContext(r.Context()); info != nil {
				fields = append(fields,
					zap.String("request_id", info.RequestID),
					zap.Stringer("client_ip", info.ClientIP),
					zap.String("browser", info.UA.Browser),
					zap.Bool("bot", info.UA.IsBot),
				)
				if info.Geo.CountryISO != "" {
					fields = append(fields, zap.String("country", info.Geo.CountryISO))
				}
			}
			log.Info("request", fields...)
		})
	}
}

// routePattern keeps metric cardinality bounded by using chi's matched
// pattern instead of the raw path.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
