package preprocessor

import (
	"github.com/goccy/go-json"

	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// ProcessedSession is the structured summary of one recording.
type ProcessedSession struct {
	Metadata  Metadata      `json:"metadata"`
	Events    EventSummary  `json:"events"`
	Technical TechnicalData `json:"technical"`
	DOM       DOMData       `json:"dom"`
}

type Metadata struct {
	SessionID string    `json:"sessionId"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Duration  string    `json:"duration"`
	Location  *Location `json:"location,omitempty"`
	Device    *Device   `json:"device,omitempty"`
	URL       string    `json:"url,omitempty"`
	Summary   string    `json:"summary,omitempty"`
}

type Location struct {
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Timezone  string   `json:"timezone,omitempty"`
}

type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Device struct {
	OS       string    `json:"os"`
	Browser  string    `json:"browser"`
	Mobile   bool      `json:"mobile"`
	Viewport *Viewport `json:"viewport,omitempty"`
}

type EventSummary struct {
	Total       int                `json:"total"`
	ByType      map[string]int     `json:"byType"`
	BySource    map[string]int     `json:"bySource"`
	Significant []SignificantEvent `json:"significant"`
}

// SignificantEvent is a human-readable record of one noteworthy moment.
type SignificantEvent struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Details   string `json:"details"`
	When      string `json:"when"`
	Impact    string `json:"impact,omitempty"`
}

// ErrorKind classifies technical errors.
type ErrorKind string

const (
	ErrorConsole    ErrorKind = "console"
	ErrorNetwork    ErrorKind = "network"
	ErrorJavaScript ErrorKind = "javascript"
)

type TechnicalError struct {
	Timestamp string    `json:"timestamp"`
	Type      ErrorKind `json:"type"`
	Message   string    `json:"message"`
}

type Performance struct {
	DOMUpdates      int `json:"domUpdates"`
	NetworkRequests int `json:"networkRequests"`
}

type NetworkSummary struct {
	Requests            int             `json:"requests"`
	Failures            int             `json:"failures"`
	AverageResponseTime *float64        `json:"averageResponseTime,omitempty"`
	Endpoints           []EndpointStats `json:"endpoints,omitempty"`
}

// EndpointStats are the request totals of one URL path.
type EndpointStats struct {
	Path                string   `json:"path"`
	Requests            int      `json:"requests"`
	Failures            int      `json:"failures"`
	AverageResponseTime *float64 `json:"averageResponseTime,omitempty"`
}

type TechnicalData struct {
	Errors      []TechnicalError `json:"errors"`
	Performance Performance      `json:"performance"`
	Network     NetworkSummary   `json:"network"`
}

type DOMData struct {
	FullSnapshot         *rrweb.Node           `json:"fullSnapshot"`
	IncrementalSnapshots []IncrementalSnapshot `json:"incrementalSnapshots"`
}

// IncrementalSnapshot is one semantic change record.
type IncrementalSnapshot struct {
	Timestamp string       `json:"timestamp"`
	Source    string       `json:"source"`
	Data      SemanticData `json:"data"`

	// Recording clock, used for chunk time ranges.
	TimestampMs int64 `json:"-"`
}

func newProcessedSession() *ProcessedSession {
	return &ProcessedSession{
		Events: EventSummary{
			ByType:      map[string]int{},
			BySource:    map[string]int{},
			Significant: []SignificantEvent{},
		},
		Technical: TechnicalData{
			Errors: []TechnicalError{},
		},
		DOM: DOMData{
			FullSnapshot:         rrweb.EmptyDocument(),
			IncrementalSnapshots: []IncrementalSnapshot{},
		},
	}
}

// JSON serializes the session. Map keys are emitted in sorted order so the
// output is stable for identical input.
func (s *ProcessedSession) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// Base returns a shallow copy of s with an empty incremental snapshot list.
func (s *ProcessedSession) Base() *ProcessedSession {
	base := *s
	base.DOM.IncrementalSnapshots = []IncrementalSnapshot{}
	return &base
}
