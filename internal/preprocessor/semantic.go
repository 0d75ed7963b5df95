package preprocessor

import (
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// SemanticData is the readable form of one incremental snapshot. Every
// variant carries its kind in the "type" field.
type SemanticData interface {
	Kind() string
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type TimedPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	TimeOffset int64   `json:"timeOffset"`
}

type NodeAdd struct {
	ParentID    *int        `json:"parentId,omitempty"`
	NextID      *int        `json:"nextId,omitempty"`
	Description string      `json:"description"`
	Node        *rrweb.Node `json:"node,omitempty"`
}

type NodeRemove struct {
	ParentID *int `json:"parentId,omitempty"`
	ID       *int `json:"id,omitempty"`
}

type AttributeChange struct {
	Attribute string `json:"attribute"`
	Value     any    `json:"value"`
}

type NodeAttributes struct {
	ID      int               `json:"id"`
	Changes []AttributeChange `json:"changes"`
}

type TextChange struct {
	NodeDescription string  `json:"nodeDescription"`
	OldText         *string `json:"oldText,omitempty"`
	NewText         *string `json:"newText,omitempty"`
}

type Mutation struct {
	Type       string           `json:"type"`
	Adds       []NodeAdd        `json:"adds,omitempty"`
	Removes    []NodeRemove     `json:"removes,omitempty"`
	Attributes []NodeAttributes `json:"attributes,omitempty"`
	Texts      []TextChange     `json:"texts,omitempty"`
}

// PointerPath is shared by mouse moves, touch moves and drags.
type PointerPath struct {
	Type      string       `json:"type"`
	Positions []TimedPoint `json:"positions"`
}

type MouseInteraction struct {
	Type        string `json:"type"`
	Action      string `json:"action"`
	PointerType string `json:"pointerType"`
	Position    *Point `json:"position,omitempty"`
	ID          int    `json:"id"`
	Target      string `json:"target,omitempty"`
}

type Scroll struct {
	Type     string `json:"type"`
	ID       int    `json:"id"`
	Position Point  `json:"position"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ViewportResize struct {
	Type string `json:"type"`
	Size Size   `json:"size"`
}

type Input struct {
	Type          string `json:"type"`
	ID            int    `json:"id"`
	Text          string `json:"text"`
	IsChecked     bool   `json:"isChecked"`
	UserTriggered bool   `json:"userTriggered"`
}

type MediaInteraction struct {
	Type         string   `json:"type"`
	Action       string   `json:"action"`
	CurrentTime  *float64 `json:"currentTime,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
	Muted        *bool    `json:"muted,omitempty"`
	PlaybackRate *float64 `json:"playbackRate,omitempty"`
}

type RuleRemove struct {
	Index any `json:"index"`
}

type StyleSheetRule struct {
	Type        string            `json:"type"`
	Adds        []rrweb.StyleRule `json:"adds,omitempty"`
	Removes     []RuleRemove      `json:"removes,omitempty"`
	Replace     *string           `json:"replace,omitempty"`
	ReplaceSync *string           `json:"replaceSync,omitempty"`
}

type CanvasMutation struct {
	Type        string                `json:"type"`
	ContextType string                `json:"contextType"`
	Commands    []rrweb.CanvasCommand `json:"commands"`
}

type Font struct {
	Type        string         `json:"type"`
	Family      string         `json:"family"`
	Source      string         `json:"source"`
	Descriptors map[string]any `json:"descriptors,omitempty"`
	Buffer      bool           `json:"buffer"`
}

type Log struct {
	Type  string `json:"type"`
	Level string `json:"level"`
	Args  []any  `json:"args,omitempty"`
}

type StyleDeclaration struct {
	Type   string                        `json:"type"`
	Index  []int                         `json:"index,omitempty"`
	Set    *rrweb.StyleDeclarationSet    `json:"set,omitempty"`
	Remove *rrweb.StyleDeclarationRemove `json:"remove,omitempty"`
}

type Selection struct {
	Type   string                 `json:"type"`
	Ranges []rrweb.SelectionRange `json:"ranges"`
}

type AdoptedStyleSheet struct {
	Type     string               `json:"type"`
	ID       int                  `json:"id"`
	Styles   []rrweb.AdoptedStyle `json:"styles,omitempty"`
	StyleIDs []int                `json:"styleIds,omitempty"`
}

func (m *Mutation) Kind() string          { return m.Type }
func (p *PointerPath) Kind() string       { return p.Type }
func (m *MouseInteraction) Kind() string  { return m.Type }
func (s *Scroll) Kind() string            { return s.Type }
func (v *ViewportResize) Kind() string    { return v.Type }
func (i *Input) Kind() string             { return i.Type }
func (m *MediaInteraction) Kind() string  { return m.Type }
func (s *StyleSheetRule) Kind() string    { return s.Type }
func (c *CanvasMutation) Kind() string    { return c.Type }
func (f *Font) Kind() string              { return f.Type }
func (l *Log) Kind() string               { return l.Type }
func (s *StyleDeclaration) Kind() string  { return s.Type }
func (s *Selection) Kind() string         { return s.Type }
func (a *AdoptedStyleSheet) Kind() string { return a.Type }
