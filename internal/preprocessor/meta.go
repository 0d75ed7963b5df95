package preprocessor

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

// processor handles one kind of event within a run.
type processor interface {
	process(e rrweb.Event, r *run)
}

// metaProcessor records the page view and viewport of a Meta event.
type metaProcessor struct{}

func (metaProcessor) process(e rrweb.Event, r *run) {
	meta, err := rrweb.DecodeData[rrweb.Meta](e)
	if err != nil || meta.Href == "" || meta.Width == 0 || meta.Height == 0 {
		log.Debug().Int64("timestamp", e.Timestamp).Msg("Skipping incomplete meta event")
		return
	}

	s := r.session
	s.Metadata.URL = meta.Href
	if s.Metadata.Device == nil {
		s.Metadata.Device = &Device{}
	}
	s.Metadata.Device.Viewport = &Viewport{Width: meta.Width, Height: meta.Height}

	if r.entry == nil {
		r.entry = meta
		r.entryTs = e.Timestamp
	}

	r.countEvent(e.Type, 0)
	r.addSignificant(e.Timestamp,
		detailedLabel(e.Type, 0, "Initial Page View"),
		fmt.Sprintf("Initial page view: %s (viewport: %sx%s)", meta.Href, pixels(meta.Width), pixels(meta.Height)),
		"Page loaded with initial viewport dimensions.",
	)
}

func pixels(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fullSnapshotProcessor stores the normalized DOM tree.
type fullSnapshotProcessor struct{}

func (fullSnapshotProcessor) process(e rrweb.Event, r *run) {
	fs, err := rrweb.DecodeData[rrweb.FullSnapshot](e)
	if err != nil || fs.Node == nil || fs.InitialOffset == nil {
		log.Debug().Int64("timestamp", e.Timestamp).Msg("Skipping incomplete full snapshot")
		return
	}

	root := fs.Node.Normalize()
	r.session.DOM.FullSnapshot = root
	r.registerTags(root)

	r.countEvent(e.Type, 0)
	r.addSignificant(e.Timestamp,
		detailedLabel(e.Type, 0, ""),
		"Initial DOM snapshot captured",
		"Document structure initialized",
	)
}
