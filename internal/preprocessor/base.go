package preprocessor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

const isoLayout = "2006-01-02T15:04:05.000Z"

// formatTimestamp renders a recording timestamp as an ISO-8601 UTC string.
func formatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(isoLayout)
}

// run is the state of one Process call, shared by its processors.
type run struct {
	session *ProcessedSession
	startMs int64
	endMs   int64

	// node id -> lower-case tag name, from snapshots and mutations
	tags    map[int]string
	// entry page from the leading Meta event
	entry   *rrweb.Meta
	entryTs int64
}

func newRun(startMs, endMs int64) *run {
	s := newProcessedSession()
	s.Metadata.StartTime = formatTimestamp(startMs)
	s.Metadata.EndTime = formatTimestamp(endMs)
	s.Metadata.Duration = fmt.Sprintf("%d seconds", (endMs-startMs)/1000)

	return &run{
		session: s,
		startMs: startMs,
		endMs:   endMs,
		tags:    make(map[int]string),
	}
}

// countEvent adds one event to the totals. source is only used for type 3.
func (r *run) countEvent(t rrweb.EventType, source rrweb.Source) {
	name, ok := t.Name()
	if !ok {
		return
	}
	r.session.Events.Total++
	r.session.Events.ByType[name]++

	if t == rrweb.EventIncrementalSnapshot {
		if sourceName, ok := source.Name(); ok {
			r.session.Events.BySource[sourceName]++
		}
	}
}

// when renders the elapsed time of ts relative to the session start.
func (r *run) when(ts int64) string {
	elapsed := math.Round(float64(ts-r.startMs) / 1000)
	return fmt.Sprintf("%d seconds into the session", int64(elapsed))
}

func (r *run) addSignificant(ts int64, label, details, impact string) {
	r.session.Events.Significant = append(r.session.Events.Significant, SignificantEvent{
		Timestamp: formatTimestamp(ts),
		Type:      label,
		Details:   details,
		When:      r.when(ts),
		Impact:    impact,
	})
}

func (r *run) addError(ts int64, kind ErrorKind, message string) {
	r.session.Technical.Errors = append(r.session.Technical.Errors, TechnicalError{
		Timestamp: formatTimestamp(ts),
		Type:      kind,
		Message:   message,
	})
}

// detailedLabel derives the significant event type label. Extensions only
// change labels of incremental events.
func detailedLabel(t rrweb.EventType, source rrweb.Source, extension string) string {
	if t == rrweb.EventIncrementalSnapshot {
		name, ok := source.Name()
		if !ok {
			name = "Unknown Source"
		}
		if extension != "" {
			return source.Label() + ": " + extension
		}
		return name
	}

	if name, ok := t.Name(); ok {
		return name
	}
	return "Unknown Event"
}

// registerTags records the tag name of every element in the subtree.
func (r *run) registerTags(n *rrweb.Node) {
	n.Walk(func(node *rrweb.Node) {
		if node.Type == rrweb.NodeElement && node.ID != nil && node.TagName != "" {
			r.tags[*node.ID] = strings.ToLower(node.TagName)
		}
	})
}
