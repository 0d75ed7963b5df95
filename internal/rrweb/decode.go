package rrweb

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

var (
	// ErrUnknownSource is returned for incremental events whose source code
	// is outside the recording format.
	ErrUnknownSource = errors.New("unknown incremental source")

	// ErrMissingSource is returned for incremental events without a source.
	ErrMissingSource = errors.New("incremental event has no source")
)

// Incremental is the decoded payload of a type 3 event. The concrete type
// is one of the *Data structs below, selected by the source code.
type Incremental interface {
	Source() Source
}

type incrementalHeader struct {
	Source *int `json:"source"`
}

// DecodeIncremental reads the source code of an incremental payload and
// decodes the rest of it into the matching variant.
func DecodeIncremental(data json.RawMessage) (Incremental, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, ErrNoData
	}

	var h incrementalHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to decode incremental header: %w", err)
	}
	if h.Source == nil {
		return nil, ErrMissingSource
	}

	var v Incremental
	switch Source(*h.Source) {
	case SourceMutation:
		v = &MutationData{}
	case SourceMouseMove:
		v = &MouseMoveData{}
	case SourceMouseInteraction:
		v = &MouseInteractionData{}
	case SourceScroll:
		v = &ScrollData{}
	case SourceViewportResize:
		v = &ViewportResizeData{}
	case SourceInput:
		v = &InputData{}
	case SourceTouchMove:
		v = &TouchMoveData{}
	case SourceMediaInteraction:
		v = &MediaInteractionData{}
	case SourceStyleSheetRule:
		v = &StyleSheetRuleData{}
	case SourceCanvasMutation:
		v = &CanvasMutationData{}
	case SourceFont:
		v = &FontData{}
	case SourceLog:
		v = &LogData{}
	case SourceDrag:
		v = &DragData{}
	case SourceStyleDeclaration:
		v = &StyleDeclarationData{}
	case SourceSelection:
		v = &SelectionData{}
	case SourceAdoptedStyleSheet:
		v = &AdoptedStyleSheetData{}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownSource, *h.Source)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", v.Source().Label(), err)
	}
	return v, nil
}

// PeekSource returns the source code of an incremental payload without
// decoding the variant.
func PeekSource(data json.RawMessage) (Source, bool) {
	var h incrementalHeader
	if err := json.Unmarshal(data, &h); err != nil || h.Source == nil {
		return 0, false
	}
	return Source(*h.Source), true
}

// AddedNode is one node insertion of a mutation.
type AddedNode struct {
	ParentID *int     `json:"parentId"`
	NextID   *int     `json:"nextId"`
	Node     *RawNode `json:"node"`
}

// RemovedNode is one node removal of a mutation.
type RemovedNode struct {
	ParentID *int `json:"parentId"`
	ID       *int `json:"id"`
}

// AttributeMutation lists the attribute changes on one node. Values are
// strings, null for removals, or style objects.
type AttributeMutation struct {
	ID         int            `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

// TextMutation is a text content change on one node.
type TextMutation struct {
	ID       int     `json:"id"`
	Value    *string `json:"value"`
	OldValue *string `json:"oldValue"`
}

type MutationData struct {
	Adds       []AddedNode         `json:"adds"`
	Removes    []RemovedNode       `json:"removes"`
	Attributes []AttributeMutation `json:"attributes"`
	Texts      []TextMutation      `json:"texts"`
}

func (*MutationData) Source() Source { return SourceMutation }

// Position is one sampled pointer position. TimeOffset is relative to the
// event timestamp and usually negative.
type Position struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	ID         int     `json:"id"`
	TimeOffset int64   `json:"timeOffset"`
}

type MouseMoveData struct {
	Positions []Position `json:"positions"`
}

func (*MouseMoveData) Source() Source { return SourceMouseMove }

type MouseInteractionData struct {
	Type        MouseInteraction `json:"type"`
	ID          int              `json:"id"`
	X           *float64         `json:"x"`
	Y           *float64         `json:"y"`
	PointerType *PointerType     `json:"pointerType"`
	Tag         string           `json:"tag"`
}

func (*MouseInteractionData) Source() Source { return SourceMouseInteraction }

type ScrollData struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

func (*ScrollData) Source() Source { return SourceScroll }

type ViewportResizeData struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (*ViewportResizeData) Source() Source { return SourceViewportResize }

type InputData struct {
	ID            int    `json:"id"`
	Text          string `json:"text"`
	IsChecked     bool   `json:"isChecked"`
	UserTriggered bool   `json:"userTriggered"`
}

func (*InputData) Source() Source { return SourceInput }

type TouchMoveData struct {
	Positions []Position `json:"positions"`
}

func (*TouchMoveData) Source() Source { return SourceTouchMove }

type MediaInteractionData struct {
	Type         MediaInteraction `json:"type"`
	ID           int              `json:"id"`
	CurrentTime  *float64         `json:"currentTime"`
	Volume       *float64         `json:"volume"`
	Muted        *bool            `json:"muted"`
	PlaybackRate *float64         `json:"playbackRate"`
}

func (*MediaInteractionData) Source() Source { return SourceMediaInteraction }

// StyleRule is an inserted CSS rule. Index is a number or a nested index path.
type StyleRule struct {
	Rule  string `json:"rule"`
	Index any    `json:"index"`
}

type StyleSheetRuleData struct {
	ID          int         `json:"id"`
	Adds        []StyleRule `json:"adds"`
	Removes     []StyleRule `json:"removes"`
	Replace     *string     `json:"replace"`
	ReplaceSync *string     `json:"replaceSync"`
}

func (*StyleSheetRuleData) Source() Source { return SourceStyleSheetRule }

// CanvasCommand is one recorded canvas API call.
type CanvasCommand struct {
	Property string `json:"property"`
	Args     []any  `json:"args"`
	Setter   bool   `json:"setter,omitempty"`
}

// CanvasMutationData carries either a command list or a single command
// inlined into the payload.
type CanvasMutationData struct {
	ID       int             `json:"id"`
	Type     CanvasContext   `json:"type"`
	Commands []CanvasCommand `json:"commands"`
	Property string          `json:"property"`
	Args     []any           `json:"args"`
	Setter   bool            `json:"setter"`
}

func (*CanvasMutationData) Source() Source { return SourceCanvasMutation }

type FontData struct {
	Family      string         `json:"family"`
	FontSource  string         `json:"fontSource"`
	Buffer      bool           `json:"buffer"`
	Descriptors map[string]any `json:"descriptors"`
}

func (*FontData) Source() Source { return SourceFont }

type LogData struct {
	Level   string   `json:"level"`
	Args    []any    `json:"args"`
	Payload []string `json:"payload"`
	Trace   []string `json:"trace"`
}

func (*LogData) Source() Source { return SourceLog }

type DragData struct {
	Positions []Position `json:"positions"`
}

func (*DragData) Source() Source { return SourceDrag }

type StyleDeclarationSet struct {
	Property string  `json:"property"`
	Value    *string `json:"value"`
	Priority *string `json:"priority"`
}

type StyleDeclarationRemove struct {
	Property string `json:"property"`
}

type StyleDeclarationData struct {
	ID     int                     `json:"id"`
	Index  []int                   `json:"index"`
	Set    *StyleDeclarationSet    `json:"set"`
	Remove *StyleDeclarationRemove `json:"remove"`
}

func (*StyleDeclarationData) Source() Source { return SourceStyleDeclaration }

type SelectionRange struct {
	Start       int `json:"start"`
	StartOffset int `json:"startOffset"`
	End         int `json:"end"`
	EndOffset   int `json:"endOffset"`
}

type SelectionData struct {
	Ranges []SelectionRange `json:"ranges"`
}

func (*SelectionData) Source() Source { return SourceSelection }

type AdoptedStyle struct {
	StyleID int         `json:"styleId"`
	Rules   []StyleRule `json:"rules"`
}

type AdoptedStyleSheetData struct {
	ID       int            `json:"id"`
	Styles   []AdoptedStyle `json:"styles"`
	StyleIDs []int          `json:"styleIds"`
}

func (*AdoptedStyleSheetData) Source() Source { return SourceAdoptedStyleSheet }
