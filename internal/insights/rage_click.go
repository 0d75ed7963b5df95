package insights

import (
	"fmt"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// RageClickDetector detects bursts of clicks inside a short time window
type RageClickDetector struct {
	minClicks    int
	timeWindowMs int64
}

// NewRageClickDetector creates a new rage click detector
func NewRageClickDetector(cfg config.RageClickConfig) *RageClickDetector {
	return &RageClickDetector{
		minClicks:    cfg.MinClicks,
		timeWindowMs: cfg.TimeWindowMs,
	}
}

// Detect walks time-sorted clicks and emits one insight per burst, anchored
// at the first click of the burst. It also returns the timestamps of every
// click within the window of an anchor so later passes can skip them.
func (d *RageClickDetector) Detect(clicks []click) ([]*Insight, map[int64]bool) {
	marked := make(map[int64]bool)
	var anchors []int64

	for i := 0; i < len(clicks); {
		start := clicks[i].Timestamp
		j := i
		for j+1 < len(clicks) && clicks[j+1].Timestamp-start < d.timeWindowMs {
			j++
		}

		if j-i+1 >= d.minClicks {
			anchors = append(anchors, start)
			i = j + 1
			continue
		}
		i++
	}

	insights := make([]*Insight, 0, len(anchors))
	for _, anchor := range anchors {
		for _, c := range clicks {
			if abs64(c.Timestamp-anchor) <= d.timeWindowMs {
				marked[c.Timestamp] = true
			}
		}

		insights = append(insights, &Insight{
			Type:      TypeRageClick,
			Timestamp: anchor,
			EventType: rrweb.EventIncrementalSnapshot,
			Source:    rrweb.SourceMouseInteraction,
			Details:   fmt.Sprintf("Rage click detected - %d+ clicks per second", d.minClicks),
			Impact:    "Possible indication of user frustration",
			Extension: ExtensionFrustration,
		})
	}

	return insights, marked
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
