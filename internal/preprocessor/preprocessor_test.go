package preprocessor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/enricher"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

const t0 = int64(1_700_000_000_000) // 2023-11-14T22:13:20.000Z

const snapshotNode = `{"type":0,"id":1,"childNodes":[
	{"type":2,"id":2,"tagName":"html","childNodes":[
		{"type":2,"id":3,"tagName":"body","childNodes":[
			{"type":2,"id":4,"tagName":"button","childNodes":[{"type":3,"id":5,"textContent":" Buy "}]},
			{"type":2,"id":6,"tagName":"INPUT","attributes":{"type":"email"}},
			{"type":2,"id":7,"tagName":"div","attributes":{"class":"card"}}
		]}
	]}
]}`

func ev(t rrweb.EventType, ts int64, data string) rrweb.Event {
	return rrweb.Event{Type: t, Timestamp: ts, Data: []byte(data)}
}

func metaEvent(ts int64) rrweb.Event {
	return ev(rrweb.EventMeta, ts, `{"href":"https://shop.example.com/","width":1280,"height":720}`)
}

func snapshotEvent(ts int64) rrweb.Event {
	return ev(rrweb.EventFullSnapshot, ts, `{"node":`+snapshotNode+`,"initialOffset":{"left":0,"top":0}}`)
}

func clickEvent(ts int64, id int) rrweb.Event {
	return ev(rrweb.EventIncrementalSnapshot, ts, fmt.Sprintf(`{"source":2,"type":2,"id":%d,"x":12,"y":34}`, id))
}

func session(events ...rrweb.Event) []rrweb.Event {
	return append([]rrweb.Event{metaEvent(t0), snapshotEvent(t0 + 10)}, events...)
}

func process(t *testing.T, events []rrweb.Event) *ProcessedSession {
	t.Helper()
	s, err := New(config.DefaultInsights()).Process(events, Options{})
	require.NoError(t, err)
	return s
}

func significantOfType(s *ProcessedSession, label string) []SignificantEvent {
	var out []SignificantEvent
	for _, e := range s.Events.Significant {
		if e.Type == label {
			out = append(out, e)
		}
	}
	return out
}

func TestProcessEmpty(t *testing.T) {
	s, err := New(config.DefaultInsights()).Process(nil, Options{})
	require.ErrorIs(t, err, ErrNoEvents)
	assert.Nil(t, s)
	assert.EqualError(t, err, "no events provided for processing")
}

func TestProcessInitialEvents(t *testing.T) {
	s := process(t, session())

	assert.Equal(t, "https://shop.example.com/", s.Metadata.URL)
	require.NotNil(t, s.Metadata.Device)
	assert.Equal(t, &Viewport{Width: 1280, Height: 720}, s.Metadata.Device.Viewport)

	require.Len(t, s.Events.Significant, 2)
	assert.Equal(t, SignificantEvent{
		Timestamp: "2023-11-14T22:13:20.000Z",
		Type:      "Meta",
		Details:   "Initial page view: https://shop.example.com/ (viewport: 1280x720)",
		When:      "0 seconds into the session",
		Impact:    "Page loaded with initial viewport dimensions.",
	}, s.Events.Significant[0])
	assert.Equal(t, "FullSnapshot", s.Events.Significant[1].Type)
	assert.Equal(t, "Initial DOM snapshot captured", s.Events.Significant[1].Details)

	root := s.DOM.FullSnapshot
	require.NotNil(t, root)
	assert.Equal(t, rrweb.NodeDocument, root.Type)
	var types []rrweb.NodeType
	root.Walk(func(n *rrweb.Node) { types = append(types, n.Type) })
	assert.NotContains(t, types, rrweb.NodeType(""))

	assert.Equal(t, 2, s.Events.Total)
	assert.Equal(t, map[string]int{"Meta": 1, "FullSnapshot": 1}, s.Events.ByType)
}

func TestProcessMalformedMeta(t *testing.T) {
	events := []rrweb.Event{
		ev(rrweb.EventMeta, t0, `{"href":"https://shop.example.com/","width":1280}`),
	}
	s := process(t, events)

	assert.Empty(t, s.Events.Significant)
	assert.Empty(t, s.Metadata.URL)
	assert.Nil(t, s.Metadata.Device)
	assert.Zero(t, s.Events.Total)
	assert.Equal(t, rrweb.EmptyDocument(), s.DOM.FullSnapshot)
}

func TestProcessFractionalViewport(t *testing.T) {
	events := []rrweb.Event{
		ev(rrweb.EventMeta, t0, `{"href":"https://shop.example.com/","width":1280.5,"height":720}`),
	}
	s := process(t, events)

	assert.Equal(t, "https://shop.example.com/", s.Metadata.URL)
	require.NotNil(t, s.Metadata.Device)
	assert.Equal(t, &Viewport{Width: 1280.5, Height: 720}, s.Metadata.Device.Viewport)
	require.Len(t, s.Events.Significant, 1)
	assert.Equal(t, "Initial page view: https://shop.example.com/ (viewport: 1280.5x720)", s.Events.Significant[0].Details)
}

func TestProcessMissingSnapshotKeepsEmptyDocument(t *testing.T) {
	s := process(t, []rrweb.Event{metaEvent(t0), ev(rrweb.EventFullSnapshot, t0+5, `{"node":null}`)})
	assert.Equal(t, rrweb.EmptyDocument(), s.DOM.FullSnapshot)
	assert.Len(t, s.Events.Significant, 1)
}

func TestProcessDurationCoversAllEvents(t *testing.T) {
	events := []rrweb.Event{
		metaEvent(t0 + 500),
		snapshotEvent(t0),
		clickEvent(t0+1_000, 4),
		// Unknown event type at the very end is skipped but still bounds the session.
		ev(rrweb.EventType(99), t0+65_400, `{}`),
	}
	s := process(t, events)

	assert.Equal(t, "2023-11-14T22:13:20.000Z", s.Metadata.StartTime)
	assert.Equal(t, "2023-11-14T22:14:25.400Z", s.Metadata.EndTime)
	assert.Equal(t, "65 seconds", s.Metadata.Duration)
}

func TestProcessIsIdempotent(t *testing.T) {
	events := session(
		clickEvent(t0+1_000, 7),
		ev(rrweb.EventIncrementalSnapshot, t0+1_200, `{"source":0,"adds":[],"removes":[],"texts":[],"attributes":[{"id":7,"attributes":{"style":{"color":"red"},"class":"card open","aria-expanded":"true"}}]}`),
		ev(rrweb.EventNetwork, t0+1_500, `{"type":"FETCH","url":"https://api.example.com/api/v1/cart?id=3","method":"POST","status":201,"latency":87.5}`),
		ev(rrweb.EventNetwork, t0+1_600, `{"type":"XHR","url":"https://cdn.example.com/a.js","method":"GET","status":200,"latency":12}`),
		ev(rrweb.EventConsole, t0+2_000, `{"plugin":"rrweb/console@1","payload":{"level":"warn","trace":[],"payload":["\"slow render\""]}}`),
	)

	p := New(config.DefaultInsights())
	first, err := p.Process(events, Options{SessionID: "s-1"})
	require.NoError(t, err)
	second, err := p.Process(events, Options{SessionID: "s-1"})
	require.NoError(t, err)

	a, err := first.JSON()
	require.NoError(t, err)
	b, err := second.JSON()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestProcessCountInvariant(t *testing.T) {
	events := session(
		clickEvent(t0+1_000, 4),
		ev(rrweb.EventIncrementalSnapshot, t0+1_100, `{"source":3,"id":1,"x":0,"y":400}`),
		ev(rrweb.EventIncrementalSnapshot, t0+1_200, `{"source":99}`),
		ev(rrweb.EventConsole, t0+1_300, `{"plugin":"rrweb/console@1","payload":{"level":"log","payload":["\"hi\""]}}`),
		ev(rrweb.EventConsole, t0+1_400, `{"plugin":"other","payload":{"level":"log","payload":["\"hi\""]}}`),
		ev(rrweb.EventNetwork, t0+1_500, `{"type":"FETCH","url":"/api/v1/x","method":"GET","status":200}`),
		ev(rrweb.EventCustom, t0+1_600, `{"tag":"checkout"}`),
	)
	s := process(t, events)

	sum := 0
	for _, n := range s.Events.ByType {
		sum += n
	}
	assert.Equal(t, s.Events.Total, sum)
	assert.Equal(t, 6, s.Events.Total)
	assert.Equal(t, map[string]int{"MouseInteraction": 1, "Scroll": 1}, s.Events.BySource)
}

func TestProcessNetworkAverageExcludesMissingLatency(t *testing.T) {
	events := session(
		ev(rrweb.EventNetwork, t0+1_000, `{"type":"FETCH","url":"https://x.example.com/a","method":"GET","status":200,"latency":100}`),
		ev(rrweb.EventNetwork, t0+2_000, `{"type":"FETCH","url":"https://x.example.com/b","method":"POST","error":"x"}`),
		ev(rrweb.EventNetwork, t0+3_000, `{"type":"XHR","url":"https://x.example.com/a","method":"GET","status":200,"latency":300}`),
	)
	s := process(t, events)

	net := s.Technical.Network
	assert.Equal(t, 3, net.Requests)
	assert.Equal(t, 1, net.Failures)
	require.NotNil(t, net.AverageResponseTime)
	assert.InDelta(t, 200.0, *net.AverageResponseTime, 1e-9)
	assert.Equal(t, 3, s.Technical.Performance.NetworkRequests)

	require.Len(t, net.Endpoints, 2)
	assert.Equal(t, "/a", net.Endpoints[0].Path)
	assert.Equal(t, 2, net.Endpoints[0].Requests)
	assert.Equal(t, "/b", net.Endpoints[1].Path)
	assert.Nil(t, net.Endpoints[1].AverageResponseTime)

	failed := significantOfType(s, "POST Request Failed (no status)")
	require.Len(t, failed, 1)
	assert.Equal(t, "Failed POST request to /b: x", failed[0].Details)
	assert.Equal(t, "2 seconds into the session", failed[0].When)

	require.Len(t, s.Technical.Errors, 1)
	assert.Equal(t, ErrorNetwork, s.Technical.Errors[0].Type)
}

func TestProcessNetworkSignificantPaths(t *testing.T) {
	events := session(
		ev(rrweb.EventNetwork, t0+1_000, `{"type":"FETCH","url":"https://api.example.com/api/v2/orders?page=2","method":"GET","status":200,"latency":40}`),
		ev(rrweb.EventNetwork, t0+1_100, `{"type":"FETCH","url":"https://api.example.com/static/logo.png?v=1","method":"GET","status":200,"latency":40}`),
		ev(rrweb.EventNetwork, t0+1_200, `{"type":"FETCH","url":"https://api.example.com/login","method":"POST","status":401,"latency":40}`),
	)
	s := process(t, events)

	ok := significantOfType(s, "GET Request (200)")
	require.Len(t, ok, 1)
	assert.Equal(t, "Successful GET request to /api/v2/orders?page=2", ok[0].Details)
	assert.Equal(t, "Key application interaction", ok[0].Impact)

	failed := significantOfType(s, "POST Request Failed (401)")
	require.Len(t, failed, 1)
	assert.Equal(t, "Failed POST request to /login: Status 401", failed[0].Details)

	var paths []string
	for _, ep := range s.Technical.Network.Endpoints {
		paths = append(paths, ep.Path)
	}
	assert.Equal(t, []string{"/api/v2/orders?page=2", "/login", "/static/logo.png"}, paths)
}

func TestProcessNetworkRelativeURL(t *testing.T) {
	events := session(
		ev(rrweb.EventNetwork, t0+1_000, `{"type":"FETCH","url":"/search?q=secret&token=abc","method":"GET","status":500}`),
		ev(rrweb.EventNetwork, t0+1_100, `{"type":"FETCH","url":"https://x.example.com/search?q=secret","method":"GET","status":500}`),
		ev(rrweb.EventNetwork, t0+1_200, `{"type":"FETCH","url":"/api/v2/orders?page=3","method":"GET","status":200}`),
	)
	s := process(t, events)

	require.Len(t, s.Technical.Errors, 2)
	for _, e := range s.Technical.Errors {
		assert.Equal(t, "GET request to /search failed: Status 500", e.Message)
	}

	ok := significantOfType(s, "GET Request (200)")
	require.Len(t, ok, 1)
	assert.Equal(t, "Successful GET request to /api/v2/orders?page=3", ok[0].Details)

	require.Len(t, s.Technical.Network.Endpoints, 2)
	assert.Equal(t, "/api/v2/orders?page=3", s.Technical.Network.Endpoints[0].Path)
	assert.Equal(t, "/search", s.Technical.Network.Endpoints[1].Path)
	assert.Equal(t, 2, s.Technical.Network.Endpoints[1].Requests)
	assert.Equal(t, 2, s.Technical.Network.Endpoints[1].Failures)
}

func TestURLPath(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://x.example.com/search?q=1", "/search"},
		{"/search?q=1&token=abc", "/search"},
		{"search?q=1", "search"},
		{"?q=1", "/"},
		{"/api/v1/cart?id=3", "/api/v1/cart?id=3"},
		{"https://x.example.com", "/"},
		{"%zz", "%zz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, urlPath(tt.raw), tt.raw)
	}
}

func TestProcessWebSocket(t *testing.T) {
	events := session(
		ev(rrweb.EventNetwork, t0+1_000, `{"type":"WebSocket","url":"wss://rt.example.com/feed","event":"open"}`),
		ev(rrweb.EventNetwork, t0+2_000, `{"type":"WebSocket","url":"wss://rt.example.com/feed","event":"message"}`),
		ev(rrweb.EventNetwork, t0+3_000, `{"type":"WebSocket","url":"wss://rt.example.com/feed","event":"close","code":1000}`),
		ev(rrweb.EventNetwork, t0+4_000, `{"type":"WebSocket","url":"wss://rt.example.com/feed","event":"close","code":1006,"reason":"abnormal"}`),
	)
	s := process(t, events)

	opened := significantOfType(s, "WebSocket Connection Opened")
	require.Len(t, opened, 1)
	assert.Equal(t, "WebSocket connection opened to /feed", opened[0].Details)

	closed := significantOfType(s, "WebSocket Connection Closed")
	require.Len(t, closed, 1)
	assert.Equal(t, "WebSocket close for /feed: abnormal", closed[0].Details)

	assert.Zero(t, s.Technical.Network.Requests)
	assert.Equal(t, 1, s.Technical.Network.Failures)
	assert.Zero(t, s.Technical.Performance.NetworkRequests)
	require.Len(t, s.Technical.Errors, 1)
	assert.Equal(t, 4, s.Events.ByType["Network"])
}

func TestProcessConsole(t *testing.T) {
	events := session(
		ev(rrweb.EventConsole, t0+1_000, `{"plugin":"rrweb/console@1","payload":{
			"level":"error",
			"trace":["at n (https://app.example.com/node_modules/react-dom/index.js:1:2)","at handleClick (https://app.example.com/static/js/main.js?v=3:42:13)"],
			"payload":["\"Failed to save %s\"","\"profile\""]}}`),
		ev(rrweb.EventConsole, t0+2_000, `{"plugin":"rrweb/console@1","payload":{"level":"info","trace":["at main.js:1:1"],"payload":["\"ready\""]}}`),
		ev(rrweb.EventConsole, t0+3_000, `{"plugin":"rrweb/console@1","payload":{"level":"error"}}`),
	)
	s := process(t, events)

	consoleEvents := significantOfType(s, "Console")
	require.Len(t, consoleEvents, 2)
	assert.Equal(t, "Console Error: Failed to save profile (at main.js:42)", consoleEvents[0].Details)
	assert.Equal(t, "Error during an application state change may leave the UI inconsistent", consoleEvents[0].Impact)
	assert.Equal(t, "Info: ready", consoleEvents[1].Details)

	require.Len(t, s.Technical.Errors, 1)
	assert.Equal(t, TechnicalError{
		Timestamp: "2023-11-14T22:13:21.000Z",
		Type:      ErrorConsole,
		Message:   "Failed to save profile (at main.js:42)",
	}, s.Technical.Errors[0])
	assert.Equal(t, 2, s.Events.ByType["Console"])
}

func TestFormatConsoleMessage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"single", []string{`"hello"`}, "hello"},
		{"substitution", []string{`"%s has %d items"`, `"cart"`, `3`}, "cart has 3 items"},
		{"css directive", []string{`"%cStyled"`, `"color: red"`}, "Styled"},
		{"leftover args", []string{`"a"`, `"b"`, `"c"`}, "a b c"},
		{"missing args", []string{`"%s and %s"`, `"x"`}, "x and %s"},
		{"literal percent", []string{`"100%% done"`, `"x"`}, "100% done x"},
		{"single quotes", []string{`'quoted'`}, "quoted"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatConsoleMessage(tt.args))
		})
	}
}

type fakeEnricher struct {
	located bool
}

func (f fakeEnricher) ParseUserAgent(string) enricher.Device {
	return enricher.Device{OS: "Linux"}
}

func (f fakeEnricher) Locate(string) (enricher.Location, bool) {
	return enricher.Location{City: "Lyon", Country: "France", Timezone: "Europe/Paris", Latitude: 45.75, Longitude: 4.85}, f.located
}

func TestProcessContext(t *testing.T) {
	events := session(
		ev(rrweb.EventSessionContext, t0+2_000, `{
			"sessionID":"abc-123","url":"https://shop.example.com/cart","datetime":"2023-11-14T22:13:22Z",
			"userAgent":{"raw":"Mozilla/5.0","mobile":false,"platform":"macOS","brands":[{"brand":"Not?A_Brand","version":"8"},{"brand":"Chromium","version":"120"}]},
			"geo":{"ip":"203.0.113.7","city":{"en":"Berlin"},"state":"Berlin","country":"Germany","latitude":52.52,"longitude":13.4,"timezone":"Europe/Berlin"}}`),
	)
	s, err := New(config.DefaultInsights()).Process(events, Options{SessionID: "seed"})
	require.NoError(t, err)

	assert.Equal(t, "abc-123", s.Metadata.SessionID)
	assert.Equal(t, "https://shop.example.com/cart", s.Metadata.URL)
	require.NotNil(t, s.Metadata.Location)
	assert.Equal(t, "Berlin", s.Metadata.Location.City)
	assert.Equal(t, "Germany", s.Metadata.Location.Country)
	require.NotNil(t, s.Metadata.Location.Latitude)
	assert.Equal(t, 52.52, *s.Metadata.Location.Latitude)

	require.NotNil(t, s.Metadata.Device)
	assert.Equal(t, "Chromium 120", s.Metadata.Device.Browser)
	assert.Equal(t, "macOS", s.Metadata.Device.OS)
	assert.Equal(t, &Viewport{Width: 1280, Height: 720}, s.Metadata.Device.Viewport, "viewport from the meta event is kept")

	ctx := significantOfType(s, "SessionContext")
	require.Len(t, ctx, 1)
	assert.Equal(t, "Session context captured: City: Berlin, State: Berlin, Country: Germany, Chromium 120 on macOS", ctx[0].Details)
}

func TestProcessContextFallbacks(t *testing.T) {
	events := session(
		ev(rrweb.EventSessionContext, t0+2_000, `{
			"sessionID":"abc-123","url":"https://shop.example.com/","datetime":"2023-11-14T22:13:22Z",
			"userAgent":{"raw":"Mozilla/5.0 (X11; Linux x86_64)","mobile":true,"platform":"","brands":[]},
			"geo":{"ip":"203.0.113.7"},
			"error":{"message":"Geolocation lookup failed","type":"network"}}`),
	)
	s, err := New(config.DefaultInsights()).Process(events, Options{Enricher: fakeEnricher{located: true}})
	require.NoError(t, err)

	assert.Equal(t, "Lyon", s.Metadata.Location.City)
	assert.Equal(t, "Linux", s.Metadata.Device.OS)
	assert.Equal(t, "Mozilla/5.0 (X11; Linux x86_64)", s.Metadata.Device.Browser)
	assert.True(t, s.Metadata.Device.Mobile)

	ctx := significantOfType(s, "SessionContext")
	require.Len(t, ctx, 1)
	assert.Equal(t, "Context error: Geolocation lookup failed", ctx[0].Details)
	require.Len(t, s.Technical.Errors, 1)
	assert.Equal(t, ErrorNetwork, s.Technical.Errors[0].Type)
}

func TestProcessIncompleteContextSkipped(t *testing.T) {
	s := process(t, session(
		ev(rrweb.EventSessionContext, t0+2_000, `{"sessionID":"abc","url":"https://x/","datetime":"now","geo":{}}`),
	))
	assert.Empty(t, significantOfType(s, "SessionContext"))
	assert.Zero(t, s.Events.ByType["SessionContext"])
	assert.Empty(t, s.Metadata.SessionID)
}

func TestProcessIncrementalSnapshots(t *testing.T) {
	events := session(
		ev(rrweb.EventIncrementalSnapshot, t0+1_000, `{"source":0,
			"adds":[{"parentId":3,"nextId":null,"node":{"type":2,"id":20,"tagName":"button","childNodes":[{"type":3,"id":21,"textContent":"Save"}]}}],
			"removes":[{"parentId":3,"id":7}],
			"attributes":[{"id":4,"attributes":{"disabled":null,"class":"busy"}}],
			"texts":[{"id":5,"value":"Buying","oldValue":"Buy"}]}`),
		ev(rrweb.EventIncrementalSnapshot, t0+1_500, `{"source":2,"type":2,"id":20,"x":5,"y":6}`),
		ev(rrweb.EventIncrementalSnapshot, t0+1_600, `{"source":99,"foo":1}`),
		ev(rrweb.EventIncrementalSnapshot, t0+1_700, `{"source":9,"id":8,"type":0,"property":"fillRect","args":[0,0,10,10]}`),
		ev(rrweb.EventIncrementalSnapshot, t0+1_800, `{"source":7,"id":9,"type":1,"currentTime":12.5}`),
	)
	s := process(t, events)

	snaps := s.DOM.IncrementalSnapshots
	require.Len(t, snaps, 4)
	assert.Equal(t, 1, s.Technical.Performance.DOMUpdates)
	assert.Equal(t, map[string]int{"Mutation": 1, "MouseInteraction": 1, "CanvasMutation": 1, "MediaInteraction": 1}, s.Events.BySource)

	assert.Equal(t, "Mutation", snaps[0].Source)
	assert.Equal(t, "2023-11-14T22:13:21.000Z", snaps[0].Timestamp)
	m, ok := snaps[0].Data.(*Mutation)
	require.True(t, ok)
	assert.Equal(t, "mutation", m.Kind())
	require.Len(t, m.Adds, 1)
	assert.Equal(t, `button "Save"`, m.Adds[0].Description)
	assert.Equal(t, rrweb.NodeElement, m.Adds[0].Node.Type)
	assert.Equal(t, []AttributeChange{{Attribute: "class", Value: "busy"}, {Attribute: "disabled", Value: nil}}, m.Attributes[0].Changes)
	require.Len(t, m.Texts, 1)
	assert.Equal(t, "node-5", m.Texts[0].NodeDescription)
	assert.Equal(t, "Buying", *m.Texts[0].NewText)

	mi, ok := snaps[1].Data.(*MouseInteraction)
	require.True(t, ok)
	assert.Equal(t, "Click", mi.Action)
	assert.Equal(t, "Mouse", mi.PointerType)
	assert.Equal(t, "button", mi.Target, "tag learned from the mutation")
	assert.Equal(t, &Point{X: 5, Y: 6}, mi.Position)

	cm, ok := snaps[2].Data.(*CanvasMutation)
	require.True(t, ok)
	assert.Equal(t, "2D", cm.ContextType)
	require.Len(t, cm.Commands, 1)
	assert.Equal(t, "fillRect", cm.Commands[0].Property)

	media, ok := snaps[3].Data.(*MediaInteraction)
	require.True(t, ok)
	assert.Equal(t, "Pause", media.Action)
}


type customIncremental struct{}

func (customIncremental) Source() rrweb.Source { return rrweb.SourceFont }

func TestSemanticUnhandledVariant(t *testing.T) {
	r := newRun(t0, t0+1_000)

	var data SemanticData
	require.NotPanics(t, func() { data = r.semantic(customIncremental{}) })
	assert.Nil(t, data)
	assert.Empty(t, r.session.DOM.IncrementalSnapshots)
	assert.Zero(t, r.session.Technical.Performance.DOMUpdates)
}
func TestProcessRageClickNotDuplicated(t *testing.T) {
	var clicks []rrweb.Event
	for i := 0; i < 5; i++ {
		clicks = append(clicks, clickEvent(t0+1_000+int64(i*200), 7))
	}
	s := process(t, session(clicks...))

	frustration := significantOfType(s, "Mouse Click: User Frustration")
	require.Len(t, frustration, 1)
	assert.Equal(t, "Rage click detected - 5+ clicks per second", frustration[0].Details)
	assert.Equal(t, "1 seconds into the session", frustration[0].When)
	assert.Len(t, s.Events.Significant, 3)
}

func TestProcessDeadClickExemptsFormControls(t *testing.T) {
	s := process(t, session(clickEvent(t0+1_000, 6)))
	assert.Empty(t, significantOfType(s, "Mouse Click: User Frustration"))

	s = process(t, session(clickEvent(t0+1_000, 7)))
	dead := significantOfType(s, "Mouse Click: User Frustration")
	require.Len(t, dead, 1)
	assert.Equal(t, "Dead click detected - no DOM response to user interaction", dead[0].Details)
}

func TestProcessDeadClickAnsweredByMutation(t *testing.T) {
	s := process(t, session(
		clickEvent(t0+1_000, 7),
		ev(rrweb.EventIncrementalSnapshot, t0+1_400, `{"source":0,"adds":[],"removes":[],"attributes":[{"id":7,"attributes":{"class":"card open"}}],"texts":[]}`),
	))
	assert.Empty(t, significantOfType(s, "Mouse Click: User Frustration"))
}

func TestProcessSessionIDSeed(t *testing.T) {
	s, err := New(config.DefaultInsights()).Process(session(), Options{SessionID: "known"})
	require.NoError(t, err)
	assert.Equal(t, "known", s.Metadata.SessionID)
}

func TestBaseDropsIncrementals(t *testing.T) {
	s := process(t, session(clickEvent(t0+1_000, 4)))
	require.Len(t, s.DOM.IncrementalSnapshots, 1)

	base := s.Base()
	assert.Empty(t, base.DOM.IncrementalSnapshots)
	assert.Len(t, s.DOM.IncrementalSnapshots, 1, "original untouched")
	assert.Equal(t, s.Metadata, base.Metadata)
}

func TestDescribeNode(t *testing.T) {
	text := func(s string) *rrweb.Node { return &rrweb.Node{Type: rrweb.NodeText, TextContent: s} }
	el := func(tag string, attrs map[string]any, children ...*rrweb.Node) *rrweb.Node {
		return &rrweb.Node{Type: rrweb.NodeElement, TagName: tag, Attributes: attrs, ChildNodes: children}
	}

	tests := []struct {
		node *rrweb.Node
		want string
	}{
		{nil, "unknown element"},
		{el("BUTTON", nil, text("  "), text("Checkout")), `button "Checkout"`},
		{el("button", nil), `button "unnamed button"`},
		{el("input", map[string]any{"name": "q", "placeholder": "Search"}), `text input name="q" placeholder="Search"`},
		{el("input", map[string]any{"type": "password"}), "password input"},
		{el("form", map[string]any{"id": "login", "class": "auth  wide"}), "form#login.auth.wide"},
		{el("nav", map[string]any{"id": "top"}), "navigation section"},
		{el("header", nil), "page header"},
		{el("footer", nil), "page footer"},
		{el("dialog", nil), "modal dialog"},
		{el("article", nil), "content article"},
		{el("section", map[string]any{"class": "hero"}), "section.hero"},
		{el("div", map[string]any{"id": "x"}), "div#x"},
		{text("A very long paragraph of text here"), `text "A very long paragrap..."`},
		{text(" "), "empty text node"},
		{&rrweb.Node{Type: rrweb.NodeDocument}, "document"},
		{&rrweb.Node{Type: rrweb.NodeDocumentType}, "doctype"},
		{&rrweb.Node{Type: rrweb.NodeComment}, "node type Comment"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeNode(tt.node))
	}
}
