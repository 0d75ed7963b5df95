// Package worker runs the end-of-session pipeline: it finds sessions that
// went quiet, turns their recordings into processed sessions and summaries,
// and archives the results.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/metrics"
	"github.com/gosight/gosight/summarizer/internal/preprocessor"
	"github.com/gosight/gosight/summarizer/internal/producer"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
	"github.com/gosight/gosight/summarizer/internal/session"
	"github.com/gosight/gosight/summarizer/internal/storage"
)

// ErrInFlight is returned when the session is already being handled.
var ErrInFlight = errors.New("session end already in progress")

type Recordings interface {
	Load(ctx context.Context, sessionID string) ([]rrweb.Event, error)
	Delete(ctx context.Context, sessionID string) error
}

type Archive interface {
	ArchiveSession(ctx context.Context, s *preprocessor.ProcessedSession) error
	IndexSummary(ctx context.Context, sessionID, summary string, embedding []float32, meta preprocessor.Metadata) error
}

type Registry interface {
	GetInactiveSessions(ctx context.Context, cutoff time.Time) ([]storage.InactiveSession, error)
	AddSessionSummary(ctx context.Context, sessionID, summary string) error
	EndSession(ctx context.Context, sessionID string, endedAt time.Time) error
}

type Summarizer interface {
	SummarizeSession(ctx context.Context, s *preprocessor.ProcessedSession) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Notifier interface {
	PublishSessionSummarized(ctx context.Context, msg producer.SessionSummarized) error
}

// Deps are the collaborators of a SessionWorker. Downsampler, Enricher and
// Notifier are optional.
type Deps struct {
	Recordings   Recordings
	Archive      Archive
	Registry     Registry
	Preprocessor *preprocessor.Preprocessor
	Summarizer   Summarizer
	Embedder     Embedder
	Downsampler  *preprocessor.Downsampler
	Enricher     preprocessor.Enricher
	Notifier     Notifier
}

// SessionWorker closes inactive sessions.
type SessionWorker struct {
	deps Deps
	cfg  config.WorkerConfig
	now  func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSessionWorker(deps Deps, cfg config.WorkerConfig) *SessionWorker {
	return &SessionWorker{
		deps:     deps,
		cfg:      cfg,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
}

// Run polls for inactive sessions every CheckInterval until ctx is done.
func (w *SessionWorker) Run(ctx context.Context) {
	log.Info().
		Dur("check_interval", w.cfg.CheckInterval).
		Dur("inactivity_threshold", w.cfg.InactivityThreshold).
		Msg("Session worker started")

	ticker := time.NewTicker(w.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		w.CheckInactiveSessions(ctx)

		select {
		case <-ctx.Done():
			log.Info().Msg("Session worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// CheckInactiveSessions ends every session idle for longer than the
// inactivity threshold, Concurrency sessions at a time.
func (w *SessionWorker) CheckInactiveSessions(ctx context.Context) {
	cutoff := w.now().Add(-w.cfg.InactivityThreshold)
	sessions, err := w.deps.Registry.GetInactiveSessions(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check inactive sessions")
		return
	}

	metrics.InactiveSessionsFound.Add(float64(len(sessions)))
	log.Info().Int("count", len(sessions)).Msg("Found inactive sessions")

	var g errgroup.Group
	g.SetLimit(max(w.cfg.Concurrency, 1))
	for _, s := range sessions {
		g.Go(func() error {
			// Errors are logged by HandleSessionEnd; the session stays
			// inactive and is picked up again next pass.
			_ = w.HandleSessionEnd(ctx, s.SessionID)
			return nil
		})
	}
	_ = g.Wait()
}

func (w *SessionWorker) acquire(sessionID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inFlight[sessionID]; ok {
		return false
	}
	w.inFlight[sessionID] = struct{}{}
	return true
}

func (w *SessionWorker) release(sessionID string) {
	w.mu.Lock()
	delete(w.inFlight, sessionID)
	w.mu.Unlock()
}

// HandleSessionEnd runs the full pipeline for one session. The recording is
// deleted only after every step succeeded.
func (w *SessionWorker) HandleSessionEnd(ctx context.Context, sessionID string) (err error) {
	if !w.acquire(sessionID) {
		return ErrInFlight
	}
	defer w.release(sessionID)

	log.Info().Str("session_id", sessionID).Msg("Ending session")
	defer func() {
		metrics.RecordSession(err)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to handle session end")
		}
	}()

	var events []rrweb.Event
	err = w.step("load", func() error {
		var loadErr error
		events, loadErr = w.deps.Recordings.Load(ctx, sessionID)
		return loadErr
	})
	if errors.Is(err, session.ErrRecordingNotFound) {
		log.Warn().Str("session_id", sessionID).Msg("No events found for session")
		return w.deps.Registry.EndSession(ctx, sessionID, w.now().UTC())
	}
	if err != nil {
		return err
	}

	if w.deps.Downsampler != nil {
		before := len(events)
		events = w.deps.Downsampler.Downsample(events)
		metrics.EventsDownsampled.Add(float64(before - len(events)))
	}
	metrics.EventsProcessed.Add(float64(len(events)))

	var processed *preprocessor.ProcessedSession
	err = w.step("process", func() error {
		var procErr error
		processed, procErr = w.deps.Preprocessor.Process(events, preprocessor.Options{
			SessionID: sessionID,
			Enricher:  w.deps.Enricher,
		})
		return procErr
	})
	if err != nil {
		return err
	}

	if err = w.step("archive", func() error {
		return w.deps.Archive.ArchiveSession(ctx, processed)
	}); err != nil {
		return err
	}

	var summary string
	err = w.step("summarize", func() error {
		var sumErr error
		summary, sumErr = w.deps.Summarizer.SummarizeSession(ctx, processed)
		return sumErr
	})
	if err != nil {
		return err
	}

	endedAt := w.now().UTC()
	if err = w.step("register", func() error {
		if err := w.deps.Registry.AddSessionSummary(ctx, sessionID, summary); err != nil {
			return err
		}
		return w.deps.Registry.EndSession(ctx, sessionID, endedAt)
	}); err != nil {
		return err
	}

	if err = w.step("index", func() error {
		embedding, err := w.deps.Embedder.Embed(ctx, summary)
		if err != nil {
			return fmt.Errorf("failed to embed summary: %w", err)
		}
		return w.deps.Archive.IndexSummary(ctx, sessionID, summary, embedding, processed.Metadata)
	}); err != nil {
		return err
	}

	if err = w.step("cleanup", func() error {
		return w.deps.Recordings.Delete(ctx, sessionID)
	}); err != nil {
		return err
	}

	if w.deps.Notifier != nil {
		// The session is complete at this point; a lost notification is not retried.
		if perr := w.deps.Notifier.PublishSessionSummarized(ctx, producer.SessionSummarized{
			SessionID:   sessionID,
			Summary:     summary,
			URL:         processed.Metadata.URL,
			Duration:    processed.Metadata.Duration,
			Significant: len(processed.Events.Significant),
			Errors:      len(processed.Technical.Errors),
			EndedAt:     endedAt,
		}); perr != nil {
			log.Warn().Err(perr).Str("session_id", sessionID).Msg("Failed to publish session summary")
		}
	}

	log.Info().
		Str("session_id", sessionID).
		Int("events", len(events)).
		Msg("Session ended and processed")
	return nil
}

func (w *SessionWorker) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(name, start, err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
