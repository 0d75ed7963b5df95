package summarizer

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/gosight/gosight/summarizer/internal/preprocessor"
)

// chunkOverhead covers the chunk fields wrapped around the session.
const chunkOverhead = 160

// Chunk is a size-bounded slice of a session: the shared base context plus a
// run of consecutive incremental snapshots.
type Chunk struct {
	Index     int                            `json:"chunkIndex"`
	Total     int                            `json:"totalChunks"`
	StartTime string                         `json:"startTime"`
	EndTime   string                         `json:"endTime"`
	Session   *preprocessor.ProcessedSession `json:"session"`
}

// Split packs the incremental snapshots of session into chunks, in arrival
// order, so each serialized chunk stays under maxChars. Every chunk repeats
// the base context: metadata, event aggregates, technical data and the full
// DOM snapshot. A snapshot too large for any chunk gets a chunk of its own.
func Split(session *preprocessor.ProcessedSession, maxChars int) ([]Chunk, error) {
	if session == nil {
		return nil, ErrEmptySession
	}

	base := session.Base()
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize base context: %w", err)
	}
	baseSize := len(baseJSON) + chunkOverhead
	if baseSize >= maxChars {
		log.Warn().
			Str("session_id", session.Metadata.SessionID).
			Int("base_size", baseSize).
			Int("max_chars", maxChars).
			Msg("Base context alone exceeds the prompt budget")
	}

	snapshots := session.DOM.IncrementalSnapshots
	if len(snapshots) == 0 {
		return []Chunk{{
			Index:     1,
			Total:     1,
			StartTime: session.Metadata.StartTime,
			EndTime:   session.Metadata.EndTime,
			Session:   base,
		}}, nil
	}

	var (
		chunks []Chunk
		from   int
		size   = baseSize
	)
	flush := func(to int) {
		c := *base
		c.DOM.IncrementalSnapshots = snapshots[from:to]
		chunks = append(chunks, Chunk{
			Index:     len(chunks) + 1,
			StartTime: snapshots[from].Timestamp,
			EndTime:   snapshots[to-1].Timestamp,
			Session:   &c,
		})
		from = to
		size = baseSize
	}

	for i, snap := range snapshots {
		b, err := json.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize incremental snapshot %d: %w", i, err)
		}
		// One byte for the separating comma.
		n := len(b) + 1
		if i > from && size+n > maxChars {
			flush(i)
		}
		size += n
	}
	flush(len(snapshots))

	for i := range chunks {
		chunks[i].Total = len(chunks)
	}
	return chunks, nil
}
