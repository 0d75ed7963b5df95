package insights

import (
	"math"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// MouseShakeDetector detects erratic back-and-forth mouse movement
type MouseShakeDetector struct {
	minPositions  int
	timeoutMs     int64
	sharpAngleDeg float64
	minSharpTurns int
}

// NewMouseShakeDetector creates a new mouse shake detector
func NewMouseShakeDetector(cfg config.MouseShakeConfig) *MouseShakeDetector {
	return &MouseShakeDetector{
		minPositions:  cfg.MinPositions,
		timeoutMs:     cfg.TimeoutMs,
		sharpAngleDeg: cfg.SharpAngleDeg,
		minSharpTurns: cfg.MinSharpTurns,
	}
}

// Detect keeps batches with enough positions and enough sharp turns, then
// merges them into episodes. A gap longer than the timeout between two
// consecutive batches starts a new episode. One insight per episode.
func (d *MouseShakeDetector) Detect(batches []moveBatch) []*Insight {
	var shaky []int64
	for _, b := range batches {
		if len(b.Positions) < d.minPositions {
			continue
		}
		if d.sharpTurns(b.Positions) >= d.minSharpTurns {
			shaky = append(shaky, b.Timestamp)
		}
	}

	var insights []*Insight
	for i, ts := range shaky {
		if i > 0 && ts-shaky[i-1] <= d.timeoutMs {
			continue
		}
		insights = append(insights, &Insight{
			Type:      TypeMouseShake,
			Timestamp: ts,
			EventType: rrweb.EventIncrementalSnapshot,
			Source:    rrweb.SourceMouseMove,
			Details:   "Mouse shaking detected - rapid non-linear movements",
			Impact:    "Possible user frustration or uncertainty",
			Extension: ExtensionFrustration,
		})
	}

	return insights
}

// sharpTurns counts direction changes above the sharp angle threshold.
// Repeated positions are ignored so a paused cursor has no direction.
func (d *MouseShakeDetector) sharpTurns(positions []rrweb.Position) int {
	var directions []float64
	for i := 1; i < len(positions); i++ {
		dx := positions[i].X - positions[i-1].X
		dy := positions[i].Y - positions[i-1].Y
		if dx == 0 && dy == 0 {
			continue
		}
		directions = append(directions, math.Atan2(dy, dx))
	}

	turns := 0
	for i := 1; i < len(directions); i++ {
		change := math.Abs(directions[i] - directions[i-1])
		if change > math.Pi {
			change = 2*math.Pi - change
		}
		if change*180/math.Pi > d.sharpAngleDeg {
			turns++
		}
	}
	return turns
}
