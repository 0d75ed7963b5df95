package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/gosight/gosight/summarizer/internal/config"
)

// InactiveSession is an active session whose last activity is older than
// the inactivity threshold.
type InactiveSession struct {
	SessionID      string
	FileName       string
	LastActivityAt time.Time
}

// Postgres is the session registry shared with the ingestion side.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Postgres{db: db}, nil
}

// GetInactiveSessions returns sessions that have not ended and saw no
// activity since cutoff.
func (p *Postgres) GetInactiveSessions(ctx context.Context, cutoff time.Time) ([]InactiveSession, error) {
	rows, err := p.db.Query(ctx, `
		SELECT session_id, COALESCE(file_name, ''), last_activity_at
		FROM sessions
		WHERE last_activity_at < $1 AND session_end IS NULL
		ORDER BY last_activity_at
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query inactive sessions: %w", err)
	}
	defer rows.Close()

	var sessions []InactiveSession
	for rows.Next() {
		var s InactiveSession
		if err := rows.Scan(&s.SessionID, &s.FileName, &s.LastActivityAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// AddSessionSummary stores the summary of an active session.
func (p *Postgres) AddSessionSummary(ctx context.Context, sessionID, summary string) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE sessions SET session_summary = $2
		WHERE session_id = $1 AND is_active = TRUE
	`, sessionID, summary)
	if err != nil {
		return fmt.Errorf("failed to add session summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Warn().Str("session_id", sessionID).Msg("No active session to attach summary to")
	}
	return nil
}

// EndSession marks the session inactive with its end time.
func (p *Postgres) EndSession(ctx context.Context, sessionID string, endedAt time.Time) error {
	_, err := p.db.Exec(ctx, `
		UPDATE sessions SET session_end = $2, is_active = FALSE
		WHERE session_id = $1 AND is_active = TRUE
	`, sessionID, endedAt)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func (p *Postgres) Close() {
	p.db.Close()
}
