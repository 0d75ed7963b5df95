package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/preprocessor"
)

// ClickHouse archives processed sessions, their significant events, and
// summary embeddings.
type ClickHouse struct {
	conn driver.Conn
}

// ProcessedSessionRow represents a row in the processed_sessions table
type ProcessedSessionRow struct {
	SessionID   string
	StartedAt   time.Time
	EndedAt     time.Time
	Duration    string
	URL         string
	OS          string
	Browser     string
	Mobile      uint8
	Country     string
	City        string
	EventsCount uint32
	ErrorsCount uint32
	Requests    uint32
	Failures    uint32
	DOMUpdates  uint32
	Payload     string
}

// SignificantEventRow represents a row in the significant_events table
type SignificantEventRow struct {
	EventID   string
	SessionID string
	Timestamp time.Time
	EventType string
	Details   string
	Impact    string
}

// SummaryRow represents a row in the session_summaries table
type SummaryRow struct {
	SessionID string
	Summary   string
	Embedding []float32
	Metadata  string
	CreatedAt time.Time
}

func NewClickHouse(cfg config.ClickHouseConfig) (*ClickHouse, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, err
	}

	return &ClickHouse{conn: conn}, nil
}

// parseTimestamp reads the ISO timestamps of a processed session. Empty or
// malformed values map to the zero time.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func newProcessedSessionRow(s *preprocessor.ProcessedSession) (ProcessedSessionRow, error) {
	payload, err := s.JSON()
	if err != nil {
		return ProcessedSessionRow{}, fmt.Errorf("failed to encode processed session: %w", err)
	}

	row := ProcessedSessionRow{
		SessionID:   s.Metadata.SessionID,
		StartedAt:   parseTimestamp(s.Metadata.StartTime),
		EndedAt:     parseTimestamp(s.Metadata.EndTime),
		Duration:    s.Metadata.Duration,
		URL:         s.Metadata.URL,
		EventsCount: uint32(s.Events.Total),
		ErrorsCount: uint32(len(s.Technical.Errors)),
		Requests:    uint32(s.Technical.Network.Requests),
		Failures:    uint32(s.Technical.Network.Failures),
		DOMUpdates:  uint32(s.Technical.Performance.DOMUpdates),
		Payload:     string(payload),
	}
	if d := s.Metadata.Device; d != nil {
		row.OS = d.OS
		row.Browser = d.Browser
		if d.Mobile {
			row.Mobile = 1
		}
	}
	if l := s.Metadata.Location; l != nil {
		row.Country = l.Country
		row.City = l.City
	}
	return row, nil
}

func newSignificantEventRows(s *preprocessor.ProcessedSession) []SignificantEventRow {
	rows := make([]SignificantEventRow, 0, len(s.Events.Significant))
	for _, e := range s.Events.Significant {
		rows = append(rows, SignificantEventRow{
			EventID:   uuid.NewString(),
			SessionID: s.Metadata.SessionID,
			Timestamp: parseTimestamp(e.Timestamp),
			EventType: e.Type,
			Details:   e.Details,
			Impact:    e.Impact,
		})
	}
	return rows
}

// ArchiveSession stores the processed session and its significant events.
func (c *ClickHouse) ArchiveSession(ctx context.Context, s *preprocessor.ProcessedSession) error {
	row, err := newProcessedSessionRow(s)
	if err != nil {
		return err
	}
	if err := c.insertProcessedSession(ctx, row); err != nil {
		return fmt.Errorf("failed to insert processed session: %w", err)
	}
	if err := c.insertSignificantEvents(ctx, newSignificantEventRows(s)); err != nil {
		return fmt.Errorf("failed to insert significant events: %w", err)
	}
	return nil
}

func (c *ClickHouse) insertProcessedSession(ctx context.Context, s ProcessedSessionRow) error {
	return c.conn.Exec(ctx, `
		INSERT INTO processed_sessions (
			session_id, started_at, ended_at, duration, url,
			os, browser, mobile, country, city,
			events_count, errors_count, requests, failures, dom_updates,
			payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.SessionID, s.StartedAt, s.EndedAt, s.Duration, s.URL,
		s.OS, s.Browser, s.Mobile, s.Country, s.City,
		s.EventsCount, s.ErrorsCount, s.Requests, s.Failures, s.DOMUpdates,
		s.Payload,
	)
}

func (c *ClickHouse) insertSignificantEvents(ctx context.Context, events []SignificantEventRow) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, `
		INSERT INTO significant_events (
			event_id, session_id, timestamp, event_type, details, impact
		)
	`)
	if err != nil {
		return err
	}

	for _, e := range events {
		err := batch.Append(
			e.EventID, e.SessionID, e.Timestamp, e.EventType, e.Details, e.Impact,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

func newSummaryRow(sessionID, summary string, embedding []float32, meta preprocessor.Metadata) (SummaryRow, error) {
	meta.Summary = summary
	b, err := json.Marshal(meta)
	if err != nil {
		return SummaryRow{}, fmt.Errorf("failed to encode session metadata: %w", err)
	}
	return SummaryRow{
		SessionID: sessionID,
		Summary:   summary,
		Embedding: embedding,
		Metadata:  string(b),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// IndexSummary stores a summary with its embedding and the session metadata
// for similarity search.
func (c *ClickHouse) IndexSummary(ctx context.Context, sessionID, summary string, embedding []float32, meta preprocessor.Metadata) error {
	row, err := newSummaryRow(sessionID, summary, embedding, meta)
	if err != nil {
		return err
	}

	err = c.conn.Exec(ctx, `
		INSERT INTO session_summaries (
			session_id, summary, embedding, metadata, created_at
		) VALUES (?, ?, ?, ?, ?)
	`, row.SessionID, row.Summary, row.Embedding, row.Metadata, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session summary: %w", err)
	}
	return nil
}

func (c *ClickHouse) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouse) Close() error {
	return c.conn.Close()
}
