package enricher

import (
	"net"
	"strings"

	"github.com/mssola/useragent"
	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
)

// Enricher fills in device and location details that the recorder could
// not capture, from the raw user agent string and the client IP.
type Enricher struct {
	geoIP *geoip2.Reader
}

func NewEnricher(geoIPPath string) *Enricher {
	// Try to load GeoIP database
	var geoIP *geoip2.Reader
	if geoIPPath != "" {
		var err error
		geoIP, err = geoip2.Open(geoIPPath)
		if err != nil {
			log.Warn().Err(err).Str("path", geoIPPath).Msg("GeoIP database unavailable, location fallback disabled")
			geoIP = nil
		}
	}

	return &Enricher{
		geoIP: geoIP,
	}
}

// Device is what a user agent string reveals about the client.
type Device struct {
	OS         string
	OSVersion  string
	Browser    string
	Version    string
	Mobile     bool
	Bot        bool
	DeviceType string
}

// Location is a GeoIP lookup result.
type Location struct {
	City      string
	State     string
	Country   string
	Latitude  float64
	Longitude float64
	Timezone  string
}

// ParseUserAgent extracts browser, OS and device class from a raw user agent.
func (e *Enricher) ParseUserAgent(raw string) Device {
	if raw == "" {
		return Device{}
	}

	ua := useragent.New(raw)
	d := Device{
		Mobile: ua.Mobile(),
		Bot:    ua.Bot(),
	}
	d.Browser, d.Version = ua.Browser()

	osInfo := ua.OSInfo()
	d.OS = osInfo.Name
	d.OSVersion = osInfo.Version
	if d.OS == "" {
		d.OS = ua.OS()
	}

	d.DeviceType = getDeviceType(ua)
	return d
}

// Locate resolves an IP address to a location. It reports false when no
// database is loaded or the address is unknown.
func (e *Enricher) Locate(ip string) (Location, bool) {
	if e == nil || e.geoIP == nil || ip == "" {
		return Location{}, false
	}

	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return Location{}, false
	}

	record, err := e.geoIP.City(parsed)
	if err != nil {
		log.Debug().Err(err).Str("ip", ip).Msg("GeoIP lookup failed")
		return Location{}, false
	}

	loc := Location{
		City:      record.City.Names["en"],
		Country:   record.Country.Names["en"],
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
		Timezone:  record.Location.TimeZone,
	}
	if loc.Country == "" {
		loc.Country = record.Country.IsoCode
	}
	if len(record.Subdivisions) > 0 {
		loc.State = record.Subdivisions[0].Names["en"]
	}

	if loc.City == "" && loc.Country == "" {
		return Location{}, false
	}
	return loc, true
}

func getDeviceType(ua *useragent.UserAgent) string {
	if ua.Mobile() {
		return "mobile"
	}
	if ua.Bot() {
		return "bot"
	}
	return "desktop"
}

func (e *Enricher) Close() {
	if e.geoIP != nil {
		e.geoIP.Close()
	}
}
