// Package requestinfo derives per-request metadata (request ID, client IP,
// user-agent fingerprint, optional geolocation, arrival time) for log lines
// and spans.  Values are plain data and safe to log.
//
// UA parsing uses github.com/avct/uasurfer.  Geolocation uses a MaxMind
// GeoLite2-City database through github.com/oschwald/geoip2-golang and is
// off until InitGeo succeeds.
package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// UA is the subset of the parsed User-Agent that ends up in logs.
type UA struct {
	Browser string // "Chrome", "Firefox", "Safari", ...
	OS      string // "MacOSX", "Windows", "Android", ...
	Device  string // "Computer", "Phone", "Tablet", ...
	IsBot   bool
}

// Geo is empty unless a GeoLite2 database is loaded and the IP matched.
type Geo struct {
	CountryISO string
	City       string
}

// RequestInfo is what Enrich stores in the request context.
type RequestInfo struct {
	RequestID string
	ClientIP  net.IP
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying info.
func NewContext(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the stored *RequestInfo, or nil when Enrich did not
// run for this request.
func FromContext(ctx context.Context) *RequestInfo {
	info, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return info
}

// geo guards the process-wide MaxMind reader.  Lookups take the read lock.
var geo struct {
	sync.RWMutex
	r *geoip2.Reader
}

// InitGeo opens the GeoLite2-City database at path.  Call once at startup.
func InitGeo(path string) error {
	r, err := geoip2.Open(path)
	if err != nil {
		return fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	geo.Lock()
	old := geo.r
	geo.r = r
	geo.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// CloseGeo releases the database opened by InitGeo.
func CloseGeo() {
	geo.Lock()
	defer geo.Unlock()
	if geo.r != nil {
		_ = geo.r.Close()
		geo.r = nil
	}
}

func lookupGeo(ip net.IP) Geo {
	if ip == nil {
		return Geo{}
	}
	geo.RLock()
	defer geo.RUnlock()
	if geo.r == nil {
		return Geo{}
	}
	city, err := geo.r.City(ip)
	if err != nil {
		return Geo{}
	}
	return Geo{CountryISO: city.Country.IsoCode, City: city.City.Names["en"]}
}

// parseUA strips uasurfer's enum prefixes ("BrowserChrome" → "Chrome").
func parseUA(header string) UA {
	if header == "" {
		return UA{}
	}
	ua := uasurfer.Parse(header)
	return UA{
		Browser: strings.TrimPrefix(ua.Browser.Name.String(), "Browser"),
		OS:      strings.TrimPrefix(ua.OS.Name.String(), "OS"),
		Device:  strings.TrimPrefix(ua.DeviceType.String(), "Device"),
		IsBot:   ua.IsBot(),
	}
}
