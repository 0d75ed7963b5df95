// Package preprocessor turns a recorded rrweb event stream into a
// ProcessedSession: counts, significant events, technical errors and a
// semantic view of the DOM changes.
package preprocessor

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/insights"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// ErrNoEvents is returned by Process for an empty event list.
var ErrNoEvents = errors.New("no events provided for processing")

// Options carries what the caller already knows about the session.
type Options struct {
	// SessionID seeds metadata.sessionId. A context event overrides it.
	SessionID string
	// Enricher fills device and location gaps. May be nil.
	Enricher Enricher
}

// Preprocessor is safe for concurrent use. Every Process call builds its own
// processor set, so no totals are shared between sessions.
type Preprocessor struct {
	analyzer *insights.Analyzer
}

// New creates a preprocessor whose behavior analysis follows cfg.
func New(cfg config.InsightsConfig) *Preprocessor {
	return &Preprocessor{analyzer: insights.NewAnalyzer(cfg)}
}

// Process builds the ProcessedSession of events. The first event is read as
// the Meta event and the second as the full snapshot, by position.
func (p *Preprocessor) Process(events []rrweb.Event, opts Options) (*ProcessedSession, error) {
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	start, end := events[0].Timestamp, events[0].Timestamp
	for _, e := range events[1:] {
		if e.Timestamp < start {
			start = e.Timestamp
		}
		if e.Timestamp > end {
			end = e.Timestamp
		}
	}

	r := newRun(start, end)
	r.session.Metadata.SessionID = opts.SessionID

	meta := metaProcessor{}
	snapshot := fullSnapshotProcessor{}
	incremental := incrementalProcessor{}
	sessionContext := contextProcessor{enricher: opts.Enricher}
	console := consoleProcessor{}
	network := newNetworkProcessor()

	meta.process(events[0], r)
	if len(events) > 1 {
		snapshot.process(events[1], r)
	}

	var rest []rrweb.Event
	if len(events) > 2 {
		rest = events[2:]
	}

	for _, e := range rest {
		var proc processor
		switch e.Type {
		case rrweb.EventMeta:
			proc = meta
		case rrweb.EventFullSnapshot:
			proc = snapshot
		case rrweb.EventIncrementalSnapshot:
			proc = incremental
		case rrweb.EventConsole:
			proc = console
		case rrweb.EventNetwork:
			proc = network
		case rrweb.EventSessionContext:
			proc = sessionContext
		default:
			continue
		}
		proc.process(e, r)
	}

	env := insights.Env{Tags: r.tags}
	if r.entry != nil {
		env.EntryPage = &insights.PageView{Href: r.entry.Href, Timestamp: r.entryTs}
	}
	found := p.analyzer.Analyze(rest, env)
	for _, in := range found {
		label := in.Label
		if label == "" {
			label = detailedLabel(in.EventType, in.Source, in.Extension)
		}
		r.addSignificant(in.Timestamp, label, in.Details, in.Impact)
	}

	log.Debug().
		Str("session_id", r.session.Metadata.SessionID).
		Int("events", len(events)).
		Int("significant", len(r.session.Events.Significant)).
		Int("insights", len(found)).
		Msg("Session processed")

	return r.session, nil
}
