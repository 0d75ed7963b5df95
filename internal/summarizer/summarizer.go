// Package summarizer turns processed sessions into natural-language
// summaries. Sessions too large for one completion call are split into
// chunks along incremental snapshot boundaries, summarized concurrently and
// merged by a final synthesis call.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/metrics"
	"github.com/gosight/gosight/summarizer/internal/preprocessor"
)

var (
	// ErrEmptySession is returned when there is no session to summarize.
	ErrEmptySession = errors.New("session is empty")

	// ErrNoSummaries is returned by SummarizeMulti without input summaries.
	ErrNoSummaries = errors.New("no session summaries provided")
)

const (
	sessionStart = "--- SESSION START ---"
	sessionEnd   = "--- SESSION END ---"
)

// Completer is a text completion capability. Each call may fail
// independently.
type Completer interface {
	Complete(ctx context.Context, system, user, data string) (string, error)
}

// Summarizer builds session summaries with a Completer.
type Summarizer struct {
	completer Completer
	maxChars  int
	prompts   config.PromptConfig
}

// New creates a summarizer. cfg.Prompts is expected to be filled in, as
// config.Load and config.Default do.
func New(completer Completer, cfg config.SummarizerConfig) *Summarizer {
	return &Summarizer{
		completer: completer,
		maxChars:  cfg.MaxPromptChars,
		prompts:   cfg.Prompts,
	}
}

// SummarizeSession returns the summary of one processed session. A session
// whose serialized form fits the budget is summarized in a single call.
// Otherwise every chunk is summarized concurrently and a final call
// synthesizes the chunk summaries. Failed chunks contribute an empty
// summary; only a failure of the final call fails the whole operation.
func (s *Summarizer) SummarizeSession(ctx context.Context, session *preprocessor.ProcessedSession) (string, error) {
	if session == nil {
		return "", ErrEmptySession
	}

	data, err := session.JSON()
	if err != nil {
		return "", fmt.Errorf("failed to serialize session: %w", err)
	}

	if len(data) < s.maxChars {
		metrics.SummaryChunks.Observe(1)
		summary, err := s.completer.Complete(ctx, s.prompts.Session.System, s.prompts.Session.User, string(data))
		if err != nil {
			return "", fmt.Errorf("failed to summarize session: %w", err)
		}
		return summary, nil
	}

	chunks, err := Split(session, s.maxChars)
	if err != nil {
		return "", err
	}
	metrics.SummaryChunks.Observe(float64(len(chunks)))

	log.Info().
		Str("session_id", session.Metadata.SessionID).
		Int("size", len(data)).
		Int("chunks", len(chunks)).
		Msg("Session exceeds prompt budget, summarizing in chunks")

	summaries := s.summarizeChunks(ctx, session.Metadata.SessionID, chunks)
	return s.synthesize(ctx, session.Metadata, chunks, summaries)
}

// summarizeChunks summarizes all chunks concurrently and waits for every one
// of them. The result is indexed like chunks, whatever the completion order.
func (s *Summarizer) summarizeChunks(ctx context.Context, sessionID string, chunks []Chunk) []string {
	summaries := make([]string, len(chunks))

	var g errgroup.Group
	for i := range chunks {
		g.Go(func() error {
			payload, err := json.Marshal(chunks[i])
			if err != nil {
				log.Error().Err(err).Str("session_id", sessionID).Int("chunk", chunks[i].Index).Msg("Failed to serialize chunk")
				metrics.ChunkFailures.Inc()
				return nil
			}

			summary, err := s.completer.Complete(ctx, s.prompts.Chunk.System, s.prompts.Chunk.User, string(payload))
			if err != nil {
				log.Warn().Err(err).Str("session_id", sessionID).Int("chunk", chunks[i].Index).Msg("Chunk summary failed")
				metrics.ChunkFailures.Inc()
				return nil
			}
			summaries[i] = summary
			return nil
		})
	}
	// Goroutines never return an error, so one failure cannot cut the others short.
	_ = g.Wait()

	return summaries
}

type chunkSummary struct {
	Index     int    `json:"chunkIndex"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Summary   string `json:"summary"`
}

type synthesisInput struct {
	Metadata preprocessor.Metadata `json:"metadata"`
	Chunks   []chunkSummary        `json:"chunks"`
}

func (s *Summarizer) synthesize(ctx context.Context, meta preprocessor.Metadata, chunks []Chunk, summaries []string) (string, error) {
	in := synthesisInput{Metadata: meta, Chunks: make([]chunkSummary, len(chunks))}
	for i, c := range chunks {
		in.Chunks[i] = chunkSummary{
			Index:     c.Index,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
			Summary:   summaries[i],
		}
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("failed to serialize chunk summaries: %w", err)
	}

	summary, err := s.completer.Complete(ctx, s.prompts.Final.System, s.prompts.Final.User, string(payload))
	if err != nil {
		return "", fmt.Errorf("failed to synthesize chunk summaries: %w", err)
	}
	return summary, nil
}

// SummarizeMulti synthesizes one summary across already stored session
// summaries.
func (s *Summarizer) SummarizeMulti(ctx context.Context, summaries []string) (string, error) {
	if len(summaries) == 0 {
		return "", ErrNoSummaries
	}

	summary, err := s.completer.Complete(ctx, s.prompts.Multi.System, s.prompts.Multi.User, JoinSummaries(summaries))
	if err != nil {
		return "", fmt.Errorf("failed to summarize sessions: %w", err)
	}
	return summary, nil
}

// JoinSummaries concatenates summaries, each wrapped in session delimiters.
func JoinSummaries(summaries []string) string {
	var b strings.Builder
	for i, summary := range summaries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(sessionStart)
		b.WriteByte('\n')
		b.WriteString(summary)
		b.WriteByte('\n')
		b.WriteString(sessionEnd)
	}
	return b.String()
}
