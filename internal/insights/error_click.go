package insights

import (
	"sort"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// ErrorClickDetector detects clicks that are followed by console errors
type ErrorClickDetector struct {
	errorWindowMs int64
}

// NewErrorClickDetector creates a new error click detector
func NewErrorClickDetector(cfg config.ErrorClickConfig) *ErrorClickDetector {
	return &ErrorClickDetector{
		errorWindowMs: cfg.ErrorWindowMs,
	}
}

// Detect pairs each error-level console entry with the most recent click
// before it inside the window. A click is reported at most once.
func (d *ErrorClickDetector) Detect(clicks []click, console []consoleEntry) []*Insight {
	reported := make(map[int64]bool)
	var insights []*Insight

	for _, entry := range console {
		if entry.Level != "error" {
			continue
		}

		// Find most recent click strictly before the error
		i := sort.Search(len(clicks), func(i int) bool { return clicks[i].Timestamp >= entry.Timestamp }) - 1
		if i < 0 {
			continue
		}
		c := clicks[i]
		if entry.Timestamp-c.Timestamp > d.errorWindowMs || reported[c.Timestamp] {
			continue
		}
		reported[c.Timestamp] = true

		insights = append(insights, &Insight{
			Type:      TypeErrorClick,
			Timestamp: c.Timestamp,
			EventType: rrweb.EventIncrementalSnapshot,
			Source:    rrweb.SourceMouseInteraction,
			Details:   "Error click detected - console error shortly after user click",
			Impact:    "User action may have triggered an application error",
			Extension: "Error Click",
		})
	}

	sort.SliceStable(insights, func(i, j int) bool { return insights[i].Timestamp < insights[j].Timestamp })
	return insights
}
