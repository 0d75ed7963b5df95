package rrweb

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Event is one entry of a recording stream. Data is kept raw and decoded
// on demand into the payload matching Type (and Source for type 3).
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// DecodeEvents parses a JSON array of recording events.
func DecodeEvents(b []byte) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(b, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

// LoadFile reads a recording from a JSON file. Both a bare event array and
// an object with an "events" field are accepted.
func LoadFile(path string) ([]Event, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}

	var wrapped struct {
		Events []Event `json:"events"`
	}
	if len(b) > 0 && b[0] == '{' {
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode recording: %w", err)
		}
		return wrapped.Events, nil
	}
	return DecodeEvents(b)
}

// Text decodes a JSON value that is usually a string but may also arrive as
// a locale-keyed object ({"en": "..."}) or an error-like object
// ({"message": "..."}). Other values are kept as their raw JSON text.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err == nil {
		for _, key := range []string{"en", "message"} {
			if v, ok := obj[key].(string); ok {
				*t = Text(v)
				return nil
			}
		}
	}

	*t = Text(b)
	return nil
}

// Meta is the payload of a type 4 event.
type Meta struct {
	Href   string  `json:"href"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Offset is the initial scroll offset of a full snapshot.
type Offset struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// FullSnapshot is the payload of a type 2 event.
type FullSnapshot struct {
	Node          *RawNode `json:"node"`
	InitialOffset *Offset  `json:"initialOffset"`
}

// ConsolePlugin is the plugin identifier of console capture events.
const ConsolePlugin = "rrweb/console@1"

// Console is the payload of a type 6 event.
type Console struct {
	Plugin  string `json:"plugin"`
	Payload struct {
		Level   string    `json:"level"`
		Trace   []string  `json:"trace"`
		Payload *[]string `json:"payload"`
	} `json:"payload"`
}

// Network kinds carried in Network.Type.
const (
	NetworkFetch     = "FETCH"
	NetworkXHR       = "XHR"
	NetworkWebSocket = "WebSocket"
)

// Network is the payload of a type 50 event.
type Network struct {
	Type    string   `json:"type"`
	URL     string   `json:"url"`
	Method  string   `json:"method"`
	Status  *int     `json:"status"`
	Latency *float64 `json:"latency"`
	Error   Text     `json:"error"`

	// WebSocket lifecycle: "open", "message", "close" or "error".
	Event  string `json:"event"`
	Code   *int   `json:"code"`
	Reason string `json:"reason"`
}

// Brand is one entry of the client hints brand list.
type Brand struct {
	Brand   string `json:"brand"`
	Version string `json:"version"`
}

// UserAgent is the user agent block of a session context event.
type UserAgent struct {
	Raw      string  `json:"raw"`
	Mobile   bool    `json:"mobile"`
	Platform string  `json:"platform"`
	Brands   []Brand `json:"brands"`
}

// Geo is the geolocation block of a session context event. Latitude and
// longitude are only trusted when they arrive as JSON numbers.
type Geo struct {
	IP        string `json:"ip"`
	City      Text   `json:"city"`
	State     Text   `json:"state"`
	Country   Text   `json:"country"`
	Latitude  any    `json:"latitude"`
	Longitude any    `json:"longitude"`
	Timezone  string `json:"timezone"`
}

// ContextError reports a failed geolocation lookup on the client.
type ContextError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Context is the payload of a type 51 event.
type Context struct {
	SessionID string        `json:"sessionID"`
	URL       string        `json:"url"`
	Datetime  string        `json:"datetime"`
	UserAgent *UserAgent    `json:"userAgent"`
	Geo       *Geo          `json:"geo"`
	Error     *ContextError `json:"error"`
}

// ErrNoData is returned when an event has no payload at all.
var ErrNoData = errors.New("event has no data")

// DecodeData unmarshals the payload of e into v.
func DecodeData[T any](e Event) (*T, error) {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil, ErrNoData
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", e.Type.String(), err)
	}
	return &v, nil
}

func (t EventType) String() string {
	if n, ok := eventTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}
