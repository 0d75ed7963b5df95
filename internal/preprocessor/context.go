package preprocessor

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosight/gosight/summarizer/internal/enricher"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// Enricher supplies device and location details missing from context events.
type Enricher interface {
	ParseUserAgent(raw string) enricher.Device
	Locate(ip string) (enricher.Location, bool)
}

const placeholderBrand = "Not?A_Brand"

// contextProcessor merges the asynchronously captured session context
// (geolocation and user agent) into the metadata.
type contextProcessor struct {
	enricher Enricher
}

func (p contextProcessor) process(e rrweb.Event, r *run) {
	c, err := rrweb.DecodeData[rrweb.Context](e)
	if err != nil || c.SessionID == "" || c.URL == "" || c.Datetime == "" || c.UserAgent == nil || c.Geo == nil {
		log.Debug().Int64("timestamp", e.Timestamp).Msg("Skipping incomplete session context")
		return
	}

	r.countEvent(e.Type, 0)

	s := r.session
	s.Metadata.SessionID = c.SessionID
	s.Metadata.Location = p.location(c.Geo)

	device := s.Metadata.Device
	if device == nil {
		device = &Device{}
		s.Metadata.Device = device
	}
	device.OS = c.UserAgent.Platform
	if device.OS == "" && p.enricher != nil {
		device.OS = p.enricher.ParseUserAgent(c.UserAgent.Raw).OS
	}
	device.Browser = browserName(c.UserAgent)
	device.Mobile = c.UserAgent.Mobile

	s.Metadata.URL = c.URL

	label := detailedLabel(e.Type, 0, "")
	if c.Error != nil {
		r.addSignificant(e.Timestamp, label,
			"Context error: "+c.Error.Message,
			"Full user geolocation details not available for this session",
		)
		r.addError(e.Timestamp, ErrorNetwork, c.Error.Message)
		return
	}

	parts := locationParts(s.Metadata.Location)
	parts = append(parts, formatDevice(device))
	r.addSignificant(e.Timestamp, label, "Session context captured: "+strings.Join(parts, ", "), "")
}

func (p contextProcessor) location(geo *rrweb.Geo) *Location {
	loc := &Location{
		City:     string(geo.City),
		State:    string(geo.State),
		Country:  string(geo.Country),
		Timezone: geo.Timezone,
	}
	if v, ok := geo.Latitude.(float64); ok {
		loc.Latitude = &v
	}
	if v, ok := geo.Longitude.(float64); ok {
		loc.Longitude = &v
	}

	if loc.City != "" || loc.State != "" || loc.Country != "" || p.enricher == nil {
		return loc
	}

	// The client lookup failed; try the server side database.
	found, ok := p.enricher.Locate(geo.IP)
	if !ok {
		return loc
	}
	loc.City, loc.State, loc.Country = found.City, found.State, found.Country
	if loc.Timezone == "" {
		loc.Timezone = found.Timezone
	}
	if loc.Latitude == nil && loc.Longitude == nil {
		loc.Latitude, loc.Longitude = &found.Latitude, &found.Longitude
	}
	return loc
}

// browserName picks the first real brand, formatted "brand version". Without
// client hints the raw user agent string is used.
func browserName(ua *rrweb.UserAgent) string {
	if len(ua.Brands) == 0 {
		if ua.Raw != "" {
			return ua.Raw
		}
		return "Unknown Browser"
	}
	for _, b := range ua.Brands {
		if b.Brand != placeholderBrand {
			return b.Brand + " " + b.Version
		}
	}
	return "Unknown Browser"
}

func locationParts(loc *Location) []string {
	if loc == nil {
		return nil
	}
	var parts []string
	if loc.City != "" {
		parts = append(parts, "City: "+loc.City)
	}
	if loc.State != "" {
		parts = append(parts, "State: "+loc.State)
	}
	if loc.Country != "" {
		parts = append(parts, "Country: "+loc.Country)
	}
	return parts
}

func formatDevice(d *Device) string {
	out := d.Browser + " on " + d.OS
	if d.Mobile {
		out += " (mobile)"
	}
	return out
}
