package insights

import (
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// Insight types
const (
	TypeRageClick   = "rage_click"
	TypeDeadClick   = "dead_click"
	TypeMouseShake  = "mouse_shake"
	TypeErrorClick  = "error_click"
	TypeUTurn       = "u_turn"
	TypeSlowRequest = "slow_request"
)

// ExtensionFrustration is the label extension shared by frustration signals.
const ExtensionFrustration = "User Frustration"

// Insight is a synthetic marker produced by a detector. It is anchored at a
// timestamp and never copies the raw events it was derived from.
type Insight struct {
	Type      string
	Timestamp int64
	EventType rrweb.EventType
	Source    rrweb.Source
	Details   string
	Impact    string
	Extension string

	// Label overrides the label derived from EventType, Source and Extension.
	Label string
}

// PageView is a page entered during the session.
type PageView struct {
	Href      string
	Timestamp int64
}

// Env is what the analyzer knows about the session beyond the events it scans.
type Env struct {
	// Tags maps node ids to lower-case tag names.
	Tags map[int]string
	// EntryPage is the page view of the leading Meta event, if any.
	EntryPage *PageView
}

func (e Env) tagOf(id int, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return e.Tags[id]
}

type click struct {
	Timestamp int64
	ID        int
	Tag       string
}

type moveBatch struct {
	Timestamp int64
	Positions []rrweb.Position
}

type consoleEntry struct {
	Timestamp int64
	Level     string
}

type request struct {
	Timestamp int64
	Method    string
	URL       string
	Latency   float64
}
