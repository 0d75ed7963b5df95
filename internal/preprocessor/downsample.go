package preprocessor

import (
	"math"

	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

const (
	downsampleMinGapMs    = 50
	downsampleMinMovePx   = 5
	downsampleMinScrollPx = 20
	downsampleMinResizePx = 20

	// Moves further apart than this are candidates for thinning.
	stableMoveGapMs = 100
	// A turn sharper than this counts as a direction change.
	stableTurnRad = math.Pi / 4
	// Paths with fewer direction changes per position than this are linear.
	stableTurnRatio = 0.33
)

// Downsampler drops redundant incremental events before processing: stable
// mouse moves, small scrolls and small viewport resizes. Erratic movement,
// drags, interactions and every non-incremental event are kept, so the
// behavior analysis still sees what it needs.
type Downsampler struct{}

func NewDownsampler() *Downsampler {
	return &Downsampler{}
}

// Downsample returns the kept events in their original order. Each event is
// compared with the event immediately before it in the input.
func (d *Downsampler) Downsample(events []rrweb.Event) []rrweb.Event {
	out := make([]rrweb.Event, 0, len(events))

	var prev *decodedEvent
	for i := range events {
		cur := decode(events[i])
		if cur.keep(prev) {
			out = append(out, events[i])
		}
		prev = cur
	}
	return out
}

type decodedEvent struct {
	rrweb.Event
	inc rrweb.Incremental
}

func decode(e rrweb.Event) *decodedEvent {
	de := &decodedEvent{Event: e}
	if e.Type == rrweb.EventIncrementalSnapshot {
		// Undecodable payloads are kept untouched and left to the processors.
		de.inc, _ = rrweb.DecodeIncremental(e.Data)
	}
	return de
}

func (cur *decodedEvent) keep(prev *decodedEvent) bool {
	if cur.inc == nil {
		return true
	}

	var sameSource bool
	if prev != nil && prev.inc != nil {
		sameSource = prev.inc.Source() == cur.inc.Source()
	}
	gap := int64(math.MaxInt64)
	if prev != nil {
		gap = cur.Timestamp - prev.Timestamp
	}

	switch c := cur.inc.(type) {
	case *rrweb.MouseMoveData:
		if !sameSource {
			return true
		}
		p := prev.inc.(*rrweb.MouseMoveData)
		if !isStableMove(gap, p.Positions, c.Positions) {
			return true
		}
		if gap < downsampleMinGapMs {
			return false
		}
		if len(c.Positions) == 0 || len(p.Positions) == 0 {
			return true
		}
		a, b := p.Positions[len(p.Positions)-1], c.Positions[len(c.Positions)-1]
		return math.Hypot(b.X-a.X, b.Y-a.Y) >= downsampleMinMovePx

	case *rrweb.ScrollData:
		if !sameSource {
			return true
		}
		if gap < downsampleMinGapMs {
			return false
		}
		p := prev.inc.(*rrweb.ScrollData)
		return math.Abs(c.Y-p.Y) >= downsampleMinScrollPx

	case *rrweb.ViewportResizeData:
		if !sameSource {
			return true
		}
		if gap < downsampleMinGapMs {
			return false
		}
		p := prev.inc.(*rrweb.ViewportResizeData)
		return absInt(c.Width-p.Width) > downsampleMinResizePx || absInt(c.Height-p.Height) > downsampleMinResizePx
	}
	return true
}

// isStableMove reports whether two consecutive move batches form a slow,
// roughly linear path.
func isStableMove(gap int64, prev, cur []rrweb.Position) bool {
	if gap <= stableMoveGapMs {
		return false
	}

	path := make([]rrweb.Position, 0, len(prev)+len(cur))
	path = append(path, prev...)
	path = append(path, cur...)
	if len(path) < 3 {
		return true
	}

	turns := 0
	for i := 2; i < len(path); i++ {
		a, b, c := path[i-2], path[i-1], path[i]
		change := math.Abs(math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(b.Y-a.Y, b.X-a.X))
		if change > math.Pi {
			change = 2*math.Pi - change
		}
		if change > stableTurnRad {
			turns++
		}
	}
	return float64(turns)/float64(len(path)) < stableTurnRatio
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
