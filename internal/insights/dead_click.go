package insights

import (
	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// DeadClickDetector detects clicks that produce no DOM response
type DeadClickDetector struct {
	observationWindowMs int64
	countFocusBlur      bool
}

// Form controls respond without touching the DOM.
var exemptTags = map[string]bool{
	"input":    true,
	"textarea": true,
	"select":   true,
}

// NewDeadClickDetector creates a new dead click detector
func NewDeadClickDetector(cfg config.DeadClickConfig) *DeadClickDetector {
	return &DeadClickDetector{
		observationWindowMs: cfg.ObservationWindowMs,
		countFocusBlur:      cfg.CountFocusBlur,
	}
}

// Detect reports clicks with no mutation (or focus/blur) strictly after the
// click and within the observation window. Clicks in skip are ignored.
func (d *DeadClickDetector) Detect(clicks []click, mutations, focusBlur []int64, skip map[int64]bool) []*Insight {
	var insights []*Insight

	for _, c := range clicks {
		if skip[c.Timestamp] || exemptTags[c.Tag] {
			continue
		}

		deadline := c.Timestamp + d.observationWindowMs
		if anyIn(mutations, c.Timestamp, deadline) {
			continue
		}
		if d.countFocusBlur && anyIn(focusBlur, c.Timestamp, deadline) {
			continue
		}

		insights = append(insights, &Insight{
			Type:      TypeDeadClick,
			Timestamp: c.Timestamp,
			EventType: rrweb.EventIncrementalSnapshot,
			Source:    rrweb.SourceMouseInteraction,
			Details:   "Dead click detected - no DOM response to user interaction",
			Impact:    "Possible user frustration or UI unresponsiveness",
			Extension: ExtensionFrustration,
		})
	}

	return insights
}
