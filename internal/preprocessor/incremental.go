package preprocessor

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// incrementalProcessor converts type 3 events into semantic snapshot records.
type incrementalProcessor struct{}

func (incrementalProcessor) process(e rrweb.Event, r *run) {
	inc, err := rrweb.DecodeIncremental(e.Data)
	if err != nil {
		if errors.Is(err, rrweb.ErrUnknownSource) {
			log.Warn().Err(err).Int64("timestamp", e.Timestamp).Msg("Skipping incremental snapshot")
		} else {
			log.Debug().Err(err).Int64("timestamp", e.Timestamp).Msg("Skipping malformed incremental snapshot")
		}
		return
	}

	data := r.semantic(inc)
	if data == nil {
		return
	}

	source := inc.Source()
	r.countEvent(e.Type, source)

	name, _ := source.Name()
	r.session.DOM.IncrementalSnapshots = append(r.session.DOM.IncrementalSnapshots, IncrementalSnapshot{
		Timestamp:   formatTimestamp(e.Timestamp),
		Source:      name,
		Data:        data,
		TimestampMs: e.Timestamp,
	})
}

// semantic dispatches on the decoded variant. It returns nil for a variant
// without a case, and the snapshot is dropped.
func (r *run) semantic(inc rrweb.Incremental) SemanticData {
	switch d := inc.(type) {
	case *rrweb.MutationData:
		r.session.Technical.Performance.DOMUpdates++
		return r.mutation(d)
	case *rrweb.MouseMoveData:
		return pointerPath("mouseMove", d.Positions)
	case *rrweb.MouseInteractionData:
		return r.mouseInteraction(d)
	case *rrweb.ScrollData:
		return &Scroll{Type: "scroll", ID: d.ID, Position: Point{X: d.X, Y: d.Y}}
	case *rrweb.ViewportResizeData:
		return &ViewportResize{Type: "viewportResize", Size: Size{Width: d.Width, Height: d.Height}}
	case *rrweb.InputData:
		return &Input{
			Type:          "input",
			ID:            d.ID,
			Text:          d.Text,
			IsChecked:     d.IsChecked,
			UserTriggered: d.UserTriggered,
		}
	case *rrweb.TouchMoveData:
		return pointerPath("touchMove", d.Positions)
	case *rrweb.MediaInteractionData:
		return &MediaInteraction{
			Type:         "mediaInteraction",
			Action:       d.Type.String(),
			CurrentTime:  d.CurrentTime,
			Volume:       d.Volume,
			Muted:        d.Muted,
			PlaybackRate: d.PlaybackRate,
		}
	case *rrweb.StyleSheetRuleData:
		out := &StyleSheetRule{
			Type:        "styleSheetRule",
			Adds:        d.Adds,
			Replace:     d.Replace,
			ReplaceSync: d.ReplaceSync,
		}
		for _, rm := range d.Removes {
			out.Removes = append(out.Removes, RuleRemove{Index: rm.Index})
		}
		return out
	case *rrweb.CanvasMutationData:
		commands := d.Commands
		if commands == nil {
			commands = []rrweb.CanvasCommand{{Property: d.Property, Args: d.Args, Setter: d.Setter}}
		}
		return &CanvasMutation{Type: "canvasMutation", ContextType: d.Type.String(), Commands: commands}
	case *rrweb.FontData:
		return &Font{
			Type:        "font",
			Family:      d.Family,
			Source:      d.FontSource,
			Descriptors: d.Descriptors,
			Buffer:      d.Buffer,
		}
	case *rrweb.LogData:
		return &Log{Type: "log", Level: d.Level, Args: d.Args}
	case *rrweb.DragData:
		return pointerPath("drag", d.Positions)
	case *rrweb.StyleDeclarationData:
		return &StyleDeclaration{Type: "styleDeclaration", Index: d.Index, Set: d.Set, Remove: d.Remove}
	case *rrweb.SelectionData:
		ranges := d.Ranges
		if ranges == nil {
			ranges = []rrweb.SelectionRange{}
		}
		return &Selection{Type: "selection", Ranges: ranges}
	case *rrweb.AdoptedStyleSheetData:
		return &AdoptedStyleSheet{Type: "adoptedStyleSheet", ID: d.ID, Styles: d.Styles, StyleIDs: d.StyleIDs}
	}
	log.Warn().
		Str("variant", fmt.Sprintf("%T", inc)).
		Int("source", int(inc.Source())).
		Msg("Skipping unhandled incremental snapshot")
	return nil
}

func (r *run) mutation(d *rrweb.MutationData) *Mutation {
	m := &Mutation{Type: "mutation"}

	for _, add := range d.Adds {
		out := NodeAdd{ParentID: add.ParentID, NextID: add.NextID}
		if add.Node != nil {
			node := add.Node.Normalize()
			r.registerTags(node)
			out.Node = node
			out.Description = describeNode(node)
		} else {
			out.Description = describeNode(nil)
		}
		m.Adds = append(m.Adds, out)
	}

	for _, rm := range d.Removes {
		m.Removes = append(m.Removes, NodeRemove{ParentID: rm.ParentID, ID: rm.ID})
	}

	for _, attr := range d.Attributes {
		names := make([]string, 0, len(attr.Attributes))
		for name := range attr.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)

		changes := make([]AttributeChange, 0, len(names))
		for _, name := range names {
			changes = append(changes, AttributeChange{Attribute: name, Value: attr.Attributes[name]})
		}
		m.Attributes = append(m.Attributes, NodeAttributes{ID: attr.ID, Changes: changes})
	}

	for _, t := range d.Texts {
		desc := "unknown"
		if t.ID != 0 {
			desc = "node-" + strconv.Itoa(t.ID)
		}
		m.Texts = append(m.Texts, TextChange{NodeDescription: desc, OldText: t.OldValue, NewText: t.Value})
	}
	return m
}

func (r *run) mouseInteraction(d *rrweb.MouseInteractionData) *MouseInteraction {
	pointer := rrweb.PointerMouse
	if d.PointerType != nil {
		pointer = *d.PointerType
	}

	out := &MouseInteraction{
		Type:        "mouseInteraction",
		Action:      d.Type.String(),
		PointerType: pointer.String(),
		ID:          d.ID,
		Target:      r.tags[d.ID],
	}
	if d.X != nil && d.Y != nil {
		out.Position = &Point{X: *d.X, Y: *d.Y}
	}
	return out
}

func pointerPath(kind string, positions []rrweb.Position) *PointerPath {
	out := &PointerPath{Type: kind, Positions: make([]TimedPoint, 0, len(positions))}
	for _, p := range positions {
		out.Positions = append(out.Positions, TimedPoint{X: p.X, Y: p.Y, TimeOffset: p.TimeOffset})
	}
	return out
}
