package preprocessor

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

const wsNormalClosure = 1000

var significantPaths = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^/api/v\d+/`),
	regexp.MustCompile(`(?i)/(auth|login|logout)`),
	regexp.MustCompile(`(?i)/upload`),
	regexp.MustCompile(`(?i)/webhook`),
	regexp.MustCompile(`(?i)/subscribe`),
	regexp.MustCompile(`(?i)/payment`),
}

// networkProcessor accumulates per-path request statistics. One instance
// serves exactly one Process call.
type networkProcessor struct {
	requestCounts  map[string]int
	failureCounts  map[string]int
	latencyTotals  map[string]float64
	latencySamples map[string]int

	// Totals summed in arrival order, so repeated runs agree bit for bit.
	requests int
	failures int
	latency  float64
	samples  int
}

func newNetworkProcessor() *networkProcessor {
	return &networkProcessor{
		requestCounts:  make(map[string]int),
		failureCounts:  make(map[string]int),
		latencyTotals:  make(map[string]float64),
		latencySamples: make(map[string]int),
	}
}

func (p *networkProcessor) process(e rrweb.Event, r *run) {
	n, err := rrweb.DecodeData[rrweb.Network](e)
	if err != nil {
		log.Debug().Err(err).Int64("timestamp", e.Timestamp).Msg("Skipping malformed network event")
		return
	}

	switch n.Type {
	case rrweb.NetworkFetch, rrweb.NetworkXHR:
		r.countEvent(e.Type, 0)
		p.processHTTP(e.Timestamp, n, r)
	case rrweb.NetworkWebSocket:
		r.countEvent(e.Type, 0)
		p.processWebSocket(e.Timestamp, n, r)
	default:
		log.Debug().Str("kind", n.Type).Int64("timestamp", e.Timestamp).Msg("Skipping unknown network event kind")
		return
	}

	p.updateStats(r.session)
}

func (p *networkProcessor) processHTTP(ts int64, n *rrweb.Network, r *run) {
	path := urlPath(n.URL)
	method := n.Method
	if method == "" {
		method = "HTTP"
	}

	p.requestCounts[path]++
	p.requests++
	r.session.Technical.Performance.NetworkRequests++

	if n.Latency != nil && !math.IsNaN(*n.Latency) {
		p.latencyTotals[path] += *n.Latency
		p.latencySamples[path]++
		p.latency += *n.Latency
		p.samples++
	}

	failed := n.Error != "" || (n.Status != nil && *n.Status >= 400)
	if failed {
		p.failureCounts[path]++
		p.failures++

		reason := string(n.Error)
		if reason == "" {
			reason = fmt.Sprintf("Status %d", *n.Status)
		}

		label := fmt.Sprintf("%s Request Failed (%s)", method, statusText(n.Status))
		r.addSignificant(ts, label,
			fmt.Sprintf("Failed %s request to %s: %s", method, path, reason),
			"Network request failure may impact functionality",
		)
		r.addError(ts, ErrorNetwork, fmt.Sprintf("%s request to %s failed: %s", method, path, reason))
		return
	}

	if n.Status != nil && *n.Status >= 200 && *n.Status < 300 && isSignificantPath(path) {
		label := fmt.Sprintf("%s Request (%s)", method, statusText(n.Status))
		r.addSignificant(ts, label,
			fmt.Sprintf("Successful %s request to %s", method, path),
			"Key application interaction",
		)
	}
}

func (p *networkProcessor) processWebSocket(ts int64, n *rrweb.Network, r *run) {
	path := urlPath(n.URL)

	switch n.Event {
	case "open":
		r.addSignificant(ts, "WebSocket Connection Opened",
			"WebSocket connection opened to "+path,
			"Real-time communication established",
		)

	case "close", "error":
		if n.Event == "close" && (n.Code == nil || *n.Code == wsNormalClosure) {
			return
		}
		p.failureCounts[path]++
		p.failures++

		detail := ""
		if n.Reason != "" {
			detail = ": " + n.Reason
		}
		label := "WebSocket Connection Closed"
		if n.Event == "error" {
			label = "WebSocket Error"
		}
		msg := fmt.Sprintf("WebSocket %s for %s%s", n.Event, path, detail)

		r.addSignificant(ts, label, msg, "Real-time communication interrupted")
		r.addError(ts, ErrorNetwork, msg)
	}
}

// updateStats publishes the running totals. The average only covers
// requests that reported a latency.
func (p *networkProcessor) updateStats(s *ProcessedSession) {
	s.Technical.Network.Requests = p.requests
	s.Technical.Network.Failures = p.failures
	s.Technical.Network.AverageResponseTime = nil
	if p.samples > 0 {
		avg := p.latency / float64(p.samples)
		s.Technical.Network.AverageResponseTime = &avg
	}

	paths := make([]string, 0, len(p.requestCounts)+len(p.failureCounts))
	for path := range p.requestCounts {
		paths = append(paths, path)
	}
	for path := range p.failureCounts {
		if _, ok := p.requestCounts[path]; !ok {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	endpoints := make([]EndpointStats, 0, len(paths))
	for _, path := range paths {
		ep := EndpointStats{
			Path:     path,
			Requests: p.requestCounts[path],
			Failures: p.failureCounts[path],
		}
		if n := p.latencySamples[path]; n > 0 {
			avg := p.latencyTotals[path] / float64(n)
			ep.AverageResponseTime = &avg
		}
		endpoints = append(endpoints, ep)
	}
	s.Technical.Network.Endpoints = endpoints
}

// urlPath reduces an absolute or relative URL to its path. The query string
// is kept only for significant endpoints. Unparseable URLs are returned as is.
func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" && isSignificantPath(path) {
		path += "?" + u.RawQuery
	}
	return path
}

func isSignificantPath(path string) bool {
	for _, re := range significantPaths {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func statusText(status *int) string {
	if status == nil {
		return "no status"
	}
	return strconv.Itoa(*status)
}
