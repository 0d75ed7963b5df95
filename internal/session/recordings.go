// Package session stores raw session recordings between ingestion and
// end-of-session processing.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

const keyPrefix = "recording:"

// ErrRecordingNotFound is returned when no events are stored for a session.
var ErrRecordingNotFound = errors.New("recording not found")

// RecordingStore keeps each session's events in a Redis list. List entries
// are single events or batches of events as pushed by the recorder.
type RecordingStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRecordingStore connects to the Redis instance in cfg.
func NewRecordingStore(cfg config.RedisConfig) *RecordingStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RecordingStore{
		redis: rdb,
		ttl:   cfg.RecordingTTL,
	}
}

func recordingKey(sessionID string) string {
	return keyPrefix + sessionID
}

// Append adds events to the session's recording and refreshes its TTL.
func (s *RecordingStore) Append(ctx context.Context, sessionID string, events []rrweb.Event) error {
	if len(events) == 0 {
		return nil
	}
	key := recordingKey(sessionID)

	pipe := s.redis.Pipeline()
	for _, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		pipe.RPush(ctx, key, b)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to append recording events")
		return err
	}
	return nil
}

// Load returns the session's events in recording order.
func (s *RecordingStore) Load(ctx context.Context, sessionID string) ([]rrweb.Event, error) {
	entries, err := s.redis.LRange(ctx, recordingKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrRecordingNotFound
	}
	return decodeEntries(sessionID, entries), nil
}

// decodeEntries flattens list entries into events. Undecodable entries are
// skipped.
func decodeEntries(sessionID string, entries []string) []rrweb.Event {
	events := make([]rrweb.Event, 0, len(entries))
	for i, entry := range entries {
		raw := bytes.TrimSpace([]byte(entry))
		if len(raw) > 0 && raw[0] == '[' {
			var batch []rrweb.Event
			if err := json.Unmarshal(raw, &batch); err != nil {
				log.Warn().Err(err).Str("session_id", sessionID).Int("entry", i).Msg("Skipping undecodable recording batch")
				continue
			}
			events = append(events, batch...)
			continue
		}

		var e rrweb.Event
		if err := json.Unmarshal(raw, &e); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Int("entry", i).Msg("Skipping undecodable recording entry")
			continue
		}
		events = append(events, e)
	}
	return events
}

// Delete removes the session's recording.
func (s *RecordingStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, recordingKey(sessionID)).Err()
}

// Ping checks the Redis connection.
func (s *RecordingStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *RecordingStore) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
