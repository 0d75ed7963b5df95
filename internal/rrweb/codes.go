// Package rrweb describes the session-replay recording format consumed by the
// preprocessor: numeric event and source codes, their display names, and the
// typed payloads carried by each event kind.
//
// The numeric codes are a versioned wire format shared with the recorder and
// must not be renumbered.
package rrweb

// EventType is the top-level numeric event code.
type EventType int

const (
	EventDOMContentLoaded    EventType = 0
	EventLoad                EventType = 1
	EventFullSnapshot        EventType = 2
	EventIncrementalSnapshot EventType = 3
	EventMeta                EventType = 4
	EventCustom              EventType = 5
	EventConsole             EventType = 6
	EventNetwork             EventType = 50
	EventSessionContext      EventType = 51
)

var eventTypeNames = map[EventType]string{
	EventDOMContentLoaded:    "DOMContentLoaded",
	EventLoad:                "Load",
	EventFullSnapshot:        "FullSnapshot",
	EventIncrementalSnapshot: "IncrementalSnapshot",
	EventMeta:                "Meta",
	EventCustom:              "Custom",
	EventConsole:             "Console",
	EventNetwork:             "Network",
	EventSessionContext:      "SessionContext",
}

// Name returns the display name of the event type.
func (t EventType) Name() (string, bool) {
	name, ok := eventTypeNames[t]
	return name, ok
}

// Source identifies what produced an incremental snapshot (type 3).
type Source int

const (
	SourceMutation          Source = 0
	SourceMouseMove         Source = 1
	SourceMouseInteraction  Source = 2
	SourceScroll            Source = 3
	SourceViewportResize    Source = 4
	SourceInput             Source = 5
	SourceTouchMove         Source = 6
	SourceMediaInteraction  Source = 7
	SourceStyleSheetRule    Source = 8
	SourceCanvasMutation    Source = 9
	SourceFont              Source = 10
	SourceLog               Source = 11
	SourceDrag              Source = 12
	SourceStyleDeclaration  Source = 13
	SourceSelection         Source = 14
	SourceAdoptedStyleSheet Source = 15
)

var sourceNames = map[Source]string{
	SourceMutation:          "Mutation",
	SourceMouseMove:         "MouseMove",
	SourceMouseInteraction:  "MouseInteraction",
	SourceScroll:            "Scroll",
	SourceViewportResize:    "ViewportResize",
	SourceInput:             "Input",
	SourceTouchMove:         "TouchMove",
	SourceMediaInteraction:  "MediaInteraction",
	SourceStyleSheetRule:    "StyleSheetRule",
	SourceCanvasMutation:    "CanvasMutation",
	SourceFont:              "Font",
	SourceLog:               "Log",
	SourceDrag:              "Drag",
	SourceStyleDeclaration:  "StyleDeclaration",
	SourceSelection:         "Selection",
	SourceAdoptedStyleSheet: "AdoptedStyleSheet",
}

// Labels used when a significant event carries a detail extension.
var sourceLabels = map[Source]string{
	SourceMutation:          "DOM Mutation",
	SourceMouseMove:         "Mouse Movement",
	SourceMouseInteraction:  "Mouse Click",
	SourceScroll:            "Scroll",
	SourceViewportResize:    "Viewport Resize",
	SourceInput:             "Input Change",
	SourceTouchMove:         "Touch Movement",
	SourceMediaInteraction:  "Media Interaction",
	SourceStyleSheetRule:    "Style Sheet Rule",
	SourceCanvasMutation:    "Canvas Mutation",
	SourceFont:              "Font Load",
	SourceLog:               "Log",
	SourceDrag:              "Drag and Drop",
	SourceStyleDeclaration:  "Style Declaration",
	SourceSelection:         "Selection",
	SourceAdoptedStyleSheet: "Adopted Stylesheet",
}

// Name returns the display name of the source.
func (s Source) Name() (string, bool) {
	name, ok := sourceNames[s]
	return name, ok
}

// Label returns the human-oriented prefix used in detailed event labels.
func (s Source) Label() string {
	if l, ok := sourceLabels[s]; ok {
		return l
	}
	return "Unknown Source"
}

// Valid reports whether s is inside the closed 0..15 range.
func (s Source) Valid() bool {
	_, ok := sourceNames[s]
	return ok
}

// MouseInteraction is the sub-type of a MouseInteraction incremental event.
type MouseInteraction int

const (
	MouseUp           MouseInteraction = 0
	MouseDown         MouseInteraction = 1
	Click             MouseInteraction = 2
	ContextMenu       MouseInteraction = 3
	DblClick          MouseInteraction = 4
	Focus             MouseInteraction = 5
	Blur              MouseInteraction = 6
	TouchStart        MouseInteraction = 7
	TouchMoveDeparted MouseInteraction = 8
	TouchEnd          MouseInteraction = 9
	TouchCancel       MouseInteraction = 10
)

var mouseInteractionNames = map[MouseInteraction]string{
	MouseUp:           "MouseUp",
	MouseDown:         "MouseDown",
	Click:             "Click",
	ContextMenu:       "ContextMenu",
	DblClick:          "DblClick",
	Focus:             "Focus",
	Blur:              "Blur",
	TouchStart:        "TouchStart",
	TouchMoveDeparted: "TouchMove_Departed",
	TouchEnd:          "TouchEnd",
	TouchCancel:       "TouchCancel",
}

func (m MouseInteraction) String() string {
	if n, ok := mouseInteractionNames[m]; ok {
		return n
	}
	return "Unknown"
}

// PointerType is the input device reported with a mouse interaction.
type PointerType int

const (
	PointerMouse PointerType = 0
	PointerPen   PointerType = 1
	PointerTouch PointerType = 2
)

var pointerTypeNames = map[PointerType]string{
	PointerMouse: "Mouse",
	PointerPen:   "Pen",
	PointerTouch: "Touch",
}

func (p PointerType) String() string {
	if n, ok := pointerTypeNames[p]; ok {
		return n
	}
	return "Unknown"
}

// MediaInteraction is the sub-type of a MediaInteraction incremental event.
type MediaInteraction int

const (
	MediaPlay         MediaInteraction = 0
	MediaPause        MediaInteraction = 1
	MediaSeeked       MediaInteraction = 2
	MediaVolumeChange MediaInteraction = 3
	MediaRateChange   MediaInteraction = 4
)

var mediaInteractionNames = map[MediaInteraction]string{
	MediaPlay:         "Play",
	MediaPause:        "Pause",
	MediaSeeked:       "Seeked",
	MediaVolumeChange: "VolumeChange",
	MediaRateChange:   "RateChange",
}

func (m MediaInteraction) String() string {
	if n, ok := mediaInteractionNames[m]; ok {
		return n
	}
	return "Unknown"
}

// CanvasContext is the rendering context of a canvas mutation.
type CanvasContext int

const (
	Canvas2D     CanvasContext = 0
	CanvasWebGL  CanvasContext = 1
	CanvasWebGL2 CanvasContext = 2
)

var canvasContextNames = map[CanvasContext]string{
	Canvas2D:     "2D",
	CanvasWebGL:  "WebGL",
	CanvasWebGL2: "WebGL2",
}

func (c CanvasContext) String() string {
	if n, ok := canvasContextNames[c]; ok {
		return n
	}
	return "Unknown"
}
