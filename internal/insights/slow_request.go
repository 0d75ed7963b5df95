package insights

import (
	"fmt"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// SlowRequestDetector detects HTTP requests with poor response times
type SlowRequestDetector struct {
	thresholdMs float64
}

// NewSlowRequestDetector creates a new slow request detector
func NewSlowRequestDetector(cfg config.SlowRequestConfig) *SlowRequestDetector {
	return &SlowRequestDetector{
		thresholdMs: cfg.ThresholdMs,
	}
}

// Detect reports every request whose latency exceeds the threshold.
func (d *SlowRequestDetector) Detect(requests []request) []*Insight {
	var insights []*Insight

	for _, r := range requests {
		if r.Latency <= d.thresholdMs {
			continue
		}

		method := r.Method
		if method == "" {
			method = "HTTP"
		}

		insights = append(insights, &Insight{
			Type:      TypeSlowRequest,
			Timestamp: r.Timestamp,
			EventType: rrweb.EventNetwork,
			Details:   fmt.Sprintf("Slow %s request to %s (%.0fms)", method, r.URL, r.Latency),
			Impact:    "Slow responses may degrade user experience",
			Label:     fmt.Sprintf("%s Request Slow", method),
		})
	}

	return insights
}
