package insights

import (
	"fmt"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// UTurnDetector detects when users navigate away and quickly return to a page
type UTurnDetector struct {
	maxTimeAwayMs int64
}

// NewUTurnDetector creates a new U-turn detector
func NewUTurnDetector(cfg config.UTurnConfig) *UTurnDetector {
	return &UTurnDetector{
		maxTimeAwayMs: cfg.MaxTimeAwayMs,
	}
}

// Detect looks for A -> B -> A page sequences where the time spent on B is
// within the limit. The insight is anchored at the return.
func (d *UTurnDetector) Detect(pages []PageView) []*Insight {
	var insights []*Insight

	// Need at least 2 previous pages to detect a U-turn
	for i := 2; i < len(pages); i++ {
		current, away, origin := pages[i], pages[i-1], pages[i-2]
		if current.Href != origin.Href || away.Href == origin.Href {
			continue
		}

		timeAway := current.Timestamp - away.Timestamp
		if timeAway <= 0 || timeAway > d.maxTimeAwayMs {
			continue
		}

		insights = append(insights, &Insight{
			Type:      TypeUTurn,
			Timestamp: current.Timestamp,
			EventType: rrweb.EventMeta,
			Details:   fmt.Sprintf("U-turn detected - returned to %s after %dms on %s", current.Href, timeAway, away.Href),
			Impact:    "Possible navigation confusion or missing content",
			Label:     "Navigation: U-Turn",
		})
	}

	return insights
}
