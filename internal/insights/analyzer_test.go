package insights

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

func event(t rrweb.EventType, ts int64, data string) rrweb.Event {
	return rrweb.Event{Type: t, Timestamp: ts, Data: []byte(data)}
}

func clickEvent(ts int64, id int, tag string) rrweb.Event {
	if tag != "" {
		return event(rrweb.EventIncrementalSnapshot, ts, fmt.Sprintf(`{"source":2,"type":2,"id":%d,"x":10,"y":10,"tag":%q}`, id, tag))
	}
	return event(rrweb.EventIncrementalSnapshot, ts, fmt.Sprintf(`{"source":2,"type":2,"id":%d,"x":10,"y":10}`, id))
}

func mutationEvent(ts int64) rrweb.Event {
	return event(rrweb.EventIncrementalSnapshot, ts, `{"source":0,"adds":[],"removes":[],"attributes":[{"id":3,"attributes":{"class":"open"}}],"texts":[]}`)
}

func moveEvent(ts int64, points [][2]float64) rrweb.Event {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf(`{"x":%g,"y":%g,"id":1,"timeOffset":%d}`, p[0], p[1], -10*(len(points)-i))
	}
	return event(rrweb.EventIncrementalSnapshot, ts, `{"source":1,"positions":[`+strings.Join(parts, ",")+`]}`)
}

func zigzag(n int) [][2]float64 {
	points := make([][2]float64, n)
	for i := range points {
		x := 100.0
		if i%2 == 1 {
			x = 160
		}
		points[i] = [2]float64{x, 200 + float64(i)}
	}
	return points
}

func ofType(insights []*Insight, typ string) []*Insight {
	var out []*Insight
	for _, in := range insights {
		if in.Type == typ {
			out = append(out, in)
		}
	}
	return out
}

func TestRageClickNotDuplicated(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	const t0 = 1_700_000_000_000
	var events []rrweb.Event
	for i := 0; i < 5; i++ {
		events = append(events, clickEvent(t0+int64(i*200), 42, "div"))
	}

	got := a.Analyze(events, Env{})
	require.Len(t, got, 1)
	assert.Equal(t, TypeRageClick, got[0].Type)
	assert.Equal(t, int64(t0), got[0].Timestamp)
	assert.Equal(t, "Rage click detected - 5+ clicks per second", got[0].Details)
	assert.Equal(t, "Possible indication of user frustration", got[0].Impact)
	assert.Equal(t, rrweb.SourceMouseInteraction, got[0].Source)
}

func TestRageClickBelowThreshold(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	var events []rrweb.Event
	for i := 0; i < 4; i++ {
		events = append(events, clickEvent(int64(i*200), 1, "input"))
	}
	// Fifth click falls outside the one second window.
	events = append(events, clickEvent(1000, 1, "input"))

	assert.Empty(t, ofType(a.Analyze(events, Env{}), TypeRageClick))
}

func TestRageClickTwoBursts(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	var events []rrweb.Event
	for i := 0; i < 10; i++ {
		events = append(events, clickEvent(int64(i*200), 1, "button"))
	}

	rage := ofType(a.Analyze(events, Env{}), TypeRageClick)
	require.Len(t, rage, 2)
	assert.Equal(t, int64(0), rage[0].Timestamp)
	assert.Equal(t, int64(1000), rage[1].Timestamp)
}

func TestDeadClickExemption(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	got := a.Analyze([]rrweb.Event{clickEvent(1000, 5, "input")}, Env{})
	assert.Empty(t, got)

	got = a.Analyze([]rrweb.Event{clickEvent(1000, 5, "")}, Env{Tags: map[int]string{5: "textarea"}})
	assert.Empty(t, got)

	got = a.Analyze([]rrweb.Event{clickEvent(1000, 6, "div")}, Env{})
	require.Len(t, got, 1)
	assert.Equal(t, TypeDeadClick, got[0].Type)
	assert.Equal(t, "Dead click detected - no DOM response to user interaction", got[0].Details)
	assert.Equal(t, "Possible user frustration or UI unresponsiveness", got[0].Impact)
}

func TestDeadClickResponseWindow(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	tests := []struct {
		name     string
		response rrweb.Event
		wantDead bool
	}{
		{"mutation inside window", mutationEvent(1500), false},
		{"mutation at window edge", mutationEvent(2000), false},
		{"mutation after window", mutationEvent(2001), true},
		{"mutation at click time", mutationEvent(1000), true},
		{"focus inside window", event(rrweb.EventIncrementalSnapshot, 1100, `{"source":2,"type":5,"id":9}`), false},
		{"blur inside window", event(rrweb.EventIncrementalSnapshot, 1100, `{"source":2,"type":6,"id":9}`), false},
		{"scroll is not a response", event(rrweb.EventIncrementalSnapshot, 1100, `{"source":3,"id":1,"x":0,"y":40}`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze([]rrweb.Event{clickEvent(1000, 6, "a"), tt.response}, Env{})
			if tt.wantDead {
				assert.Len(t, ofType(got, TypeDeadClick), 1)
			} else {
				assert.Empty(t, ofType(got, TypeDeadClick))
			}
		})
	}
}

func TestDeadClickFocusBlurDisabled(t *testing.T) {
	cfg := config.DefaultInsights()
	cfg.DeadClick.CountFocusBlur = false
	a := NewAnalyzer(cfg)

	got := a.Analyze([]rrweb.Event{
		clickEvent(1000, 6, "a"),
		event(rrweb.EventIncrementalSnapshot, 1100, `{"source":2,"type":5,"id":9}`),
	}, Env{})
	assert.Len(t, ofType(got, TypeDeadClick), 1)
}

func TestMouseShake(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	got := a.Analyze([]rrweb.Event{moveEvent(5000, zigzag(10))}, Env{})
	require.Len(t, got, 1)
	assert.Equal(t, TypeMouseShake, got[0].Type)
	assert.Equal(t, rrweb.SourceMouseMove, got[0].Source)
	assert.Equal(t, "Mouse shaking detected - rapid non-linear movements", got[0].Details)
}

func TestMouseShakeIgnoresLinearMovement(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	// Smoothly decelerating movement along a line.
	var points [][2]float64
	x := 0.0
	step := 64.0
	for i := 0; i < 12; i++ {
		points = append(points, [2]float64{x, x / 2})
		x += step
		step /= 2
	}

	assert.Empty(t, a.Analyze([]rrweb.Event{moveEvent(5000, points)}, Env{}))
}

func TestMouseShakeNeedsEnoughPositions(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())
	assert.Empty(t, a.Analyze([]rrweb.Event{moveEvent(5000, zigzag(7))}, Env{}))
}

func TestMouseShakeEpisodes(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	got := a.Analyze([]rrweb.Event{
		moveEvent(1000, zigzag(10)),
		moveEvent(3000, zigzag(10)),
		moveEvent(9000, zigzag(10)),
	}, Env{})

	shakes := ofType(got, TypeMouseShake)
	require.Len(t, shakes, 2)
	assert.Equal(t, int64(1000), shakes[0].Timestamp)
	assert.Equal(t, int64(9000), shakes[1].Timestamp)
}

func TestErrorClick(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	events := []rrweb.Event{
		clickEvent(1000, 1, "button"),
		mutationEvent(1200),
		event(rrweb.EventConsole, 1500, `{"plugin":"rrweb/console@1","payload":{"level":"error","trace":[],"payload":["\"boom\""]}}`),
	}

	got := a.Analyze(events, Env{})
	require.Len(t, got, 1)
	assert.Equal(t, TypeErrorClick, got[0].Type)
	assert.Equal(t, int64(1000), got[0].Timestamp)
}

func TestUTurn(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	events := []rrweb.Event{
		event(rrweb.EventMeta, 5000, `{"href":"https://shop.test/cart","width":1280,"height":720}`),
		event(rrweb.EventMeta, 8000, `{"href":"https://shop.test/","width":1280,"height":720}`),
	}
	env := Env{EntryPage: &PageView{Href: "https://shop.test/", Timestamp: 0}}

	got := a.Analyze(events, env)
	require.Len(t, got, 1)
	assert.Equal(t, TypeUTurn, got[0].Type)
	assert.Equal(t, int64(8000), got[0].Timestamp)
	assert.Equal(t, rrweb.EventMeta, got[0].EventType)

	// Too long away
	events[1].Timestamp = 20000
	assert.Empty(t, a.Analyze(events, env))
}

func TestSlowRequest(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	events := []rrweb.Event{
		event(rrweb.EventNetwork, 1000, `{"type":"FETCH","url":"https://api.test/a","method":"GET","status":200,"latency":3500}`),
		event(rrweb.EventNetwork, 2000, `{"type":"XHR","url":"https://api.test/b","method":"GET","status":200,"latency":120}`),
		event(rrweb.EventNetwork, 3000, `{"type":"FETCH","url":"https://api.test/c","method":"GET","error":"timeout"}`),
	}

	got := a.Analyze(events, Env{})
	require.Len(t, got, 1)
	assert.Equal(t, TypeSlowRequest, got[0].Type)
	assert.Equal(t, "GET Request Slow", got[0].Label)
}

func TestDisabledDetectors(t *testing.T) {
	a := NewAnalyzer(config.InsightsConfig{})

	var events []rrweb.Event
	for i := 0; i < 6; i++ {
		events = append(events, clickEvent(int64(i*100), 1, "div"))
	}
	events = append(events, moveEvent(2000, zigzag(10)))

	assert.Empty(t, a.Analyze(events, Env{}))
}

func TestAnalyzeIgnoresUnknownSources(t *testing.T) {
	a := NewAnalyzer(config.DefaultInsights())

	got := a.Analyze([]rrweb.Event{
		event(rrweb.EventIncrementalSnapshot, 10, `{"source":99}`),
		event(rrweb.EventIncrementalSnapshot, 20, `{}`),
	}, Env{})
	assert.Empty(t, got)
}
