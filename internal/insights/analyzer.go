package insights

import (
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// Analyzer runs every enabled detector over one session's events.
type Analyzer struct {
	rageClick   *RageClickDetector
	deadClick   *DeadClickDetector
	mouseShake  *MouseShakeDetector
	errorClick  *ErrorClickDetector
	uTurn       *UTurnDetector
	slowRequest *SlowRequestDetector
}

// NewAnalyzer creates an analyzer with the detectors enabled in cfg.
func NewAnalyzer(cfg config.InsightsConfig) *Analyzer {
	a := &Analyzer{}

	// Initialize detectors based on config
	if cfg.RageClick.Enabled {
		a.rageClick = NewRageClickDetector(cfg.RageClick)
	}
	if cfg.DeadClick.Enabled {
		a.deadClick = NewDeadClickDetector(cfg.DeadClick)
	}
	if cfg.MouseShake.Enabled {
		a.mouseShake = NewMouseShakeDetector(cfg.MouseShake)
	}
	if cfg.ErrorClick.Enabled {
		a.errorClick = NewErrorClickDetector(cfg.ErrorClick)
	}
	if cfg.UTurn.Enabled {
		a.uTurn = NewUTurnDetector(cfg.UTurn)
	}
	if cfg.SlowRequest.Enabled {
		a.slowRequest = NewSlowRequestDetector(cfg.SlowRequest)
	}

	return a
}

// timeline holds the event subsets the detectors scan, each sorted by time.
type timeline struct {
	clicks    []click
	focusBlur []int64
	mutations []int64
	moves     []moveBatch
	pages     []PageView
	console   []consoleEntry
	requests  []request
}

// Analyze scans events and returns the detected insights in detector order:
// rage clicks, dead clicks, mouse shaking, error clicks, u-turns, slow requests.
// The analyzer keeps no state between calls.
func (a *Analyzer) Analyze(events []rrweb.Event, env Env) []*Insight {
	tl := buildTimeline(events, env)

	var out []*Insight

	var rageMarked map[int64]bool
	if a.rageClick != nil {
		var rage []*Insight
		rage, rageMarked = a.rageClick.Detect(tl.clicks)
		out = append(out, rage...)
	}
	if a.deadClick != nil {
		out = append(out, a.deadClick.Detect(tl.clicks, tl.mutations, tl.focusBlur, rageMarked)...)
	}
	if a.mouseShake != nil {
		out = append(out, a.mouseShake.Detect(tl.moves)...)
	}
	if a.errorClick != nil {
		out = append(out, a.errorClick.Detect(tl.clicks, tl.console)...)
	}
	if a.uTurn != nil {
		out = append(out, a.uTurn.Detect(tl.pages)...)
	}
	if a.slowRequest != nil {
		out = append(out, a.slowRequest.Detect(tl.requests)...)
	}

	return out
}

func buildTimeline(events []rrweb.Event, env Env) *timeline {
	tl := &timeline{}
	if env.EntryPage != nil && env.EntryPage.Href != "" {
		tl.pages = append(tl.pages, *env.EntryPage)
	}

	for _, e := range events {
		switch e.Type {
		case rrweb.EventIncrementalSnapshot:
			tl.addIncremental(e, env)

		case rrweb.EventMeta:
			meta, err := rrweb.DecodeData[rrweb.Meta](e)
			if err != nil || meta.Href == "" {
				continue
			}
			tl.pages = append(tl.pages, PageView{Href: meta.Href, Timestamp: e.Timestamp})

		case rrweb.EventConsole:
			c, err := rrweb.DecodeData[rrweb.Console](e)
			if err != nil || c.Plugin != rrweb.ConsolePlugin || c.Payload.Level == "" {
				continue
			}
			tl.console = append(tl.console, consoleEntry{
				Timestamp: e.Timestamp,
				Level:     strings.ToLower(c.Payload.Level),
			})

		case rrweb.EventNetwork:
			n, err := rrweb.DecodeData[rrweb.Network](e)
			if err != nil || n.Latency == nil {
				continue
			}
			if n.Type != rrweb.NetworkFetch && n.Type != rrweb.NetworkXHR {
				continue
			}
			tl.requests = append(tl.requests, request{
				Timestamp: e.Timestamp,
				Method:    n.Method,
				URL:       n.URL,
				Latency:   *n.Latency,
			})
		}
	}

	sort.SliceStable(tl.clicks, func(i, j int) bool { return tl.clicks[i].Timestamp < tl.clicks[j].Timestamp })
	sort.SliceStable(tl.moves, func(i, j int) bool { return tl.moves[i].Timestamp < tl.moves[j].Timestamp })
	sort.SliceStable(tl.pages, func(i, j int) bool { return tl.pages[i].Timestamp < tl.pages[j].Timestamp })
	sortTimes(tl.mutations)
	sortTimes(tl.focusBlur)

	return tl
}

func (tl *timeline) addIncremental(e rrweb.Event, env Env) {
	data, err := rrweb.DecodeIncremental(e.Data)
	if err != nil {
		if !errors.Is(err, rrweb.ErrUnknownSource) {
			log.Debug().Err(err).Int64("timestamp", e.Timestamp).Msg("Skipping malformed incremental event")
		}
		return
	}

	switch d := data.(type) {
	case *rrweb.MutationData:
		tl.mutations = append(tl.mutations, e.Timestamp)
	case *rrweb.MouseMoveData:
		tl.moves = append(tl.moves, moveBatch{Timestamp: e.Timestamp, Positions: d.Positions})
	case *rrweb.MouseInteractionData:
		switch d.Type {
		case rrweb.Click:
			tl.clicks = append(tl.clicks, click{
				Timestamp: e.Timestamp,
				ID:        d.ID,
				Tag:       strings.ToLower(env.tagOf(d.ID, d.Tag)),
			})
		case rrweb.Focus, rrweb.Blur:
			tl.focusBlur = append(tl.focusBlur, e.Timestamp)
		}
	}
}

func sortTimes(ts []int64) {
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
}

// anyIn reports whether sorted ts has a value in (from, to].
func anyIn(ts []int64, from, to int64) bool {
	i := sort.Search(len(ts), func(i int) bool { return ts[i] > from })
	return i < len(ts) && ts[i] <= to
}
