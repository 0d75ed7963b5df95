package consumer

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/metrics"
)

// SessionEnded is the notification published when a recorder closes a
// session.
type SessionEnded struct {
	SessionID string `json:"session_id"`
	FileName  string `json:"file_name,omitempty"`
}

// SessionHandler runs the end-of-session pipeline for one session.
type SessionHandler interface {
	HandleSessionEnd(ctx context.Context, sessionID string) error
}

// KafkaConsumer consumes session-ended notifications from Kafka
type KafkaConsumer struct {
	reader  *kafka.Reader
	handler SessionHandler
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(cfg config.KafkaConfig, handler SessionHandler) (*KafkaConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topics["session_ended"],
		GroupID:        cfg.ConsumerGroup,
		MinBytes:       1,
		MaxBytes:       1e6, // 1MB
		CommitInterval: 1000,
		StartOffset:    kafka.LastOffset,
	})

	return &KafkaConsumer{
		reader:  reader,
		handler: handler,
	}, nil
}

func parseSessionEnded(value []byte) (SessionEnded, error) {
	var msg SessionEnded
	if err := json.Unmarshal(value, &msg); err != nil {
		return SessionEnded{}, err
	}
	if msg.SessionID == "" {
		return SessionEnded{}, errors.New("message has no session_id")
	}
	return msg, nil
}

// Start begins consuming messages
func (c *KafkaConsumer) Start(ctx context.Context) {
	log.Info().
		Str("topic", c.reader.Config().Topic).
		Str("group", c.reader.Config().GroupID).
		Msg("Starting Kafka consumer")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("Kafka consumer stopped")
				return
			}
			log.Error().Err(err).Msg("Failed to fetch message")
			continue
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Error().Err(err).Msg("Failed to commit message")
		}
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, msg kafka.Message) {
	ended, err := parseSessionEnded(msg.Value)
	if err != nil {
		metrics.SessionEndedMessages.WithLabelValues("invalid").Inc()
		log.Error().
			Err(err).
			Str("value", string(msg.Value)).
			Msg("Failed to parse message")
		return
	}

	// Failed sessions stay in the registry and are retried by the poll loop.
	if err := c.handler.HandleSessionEnd(ctx, ended.SessionID); err != nil {
		metrics.SessionEndedMessages.WithLabelValues("failed").Inc()
		log.Error().
			Err(err).
			Str("session_id", ended.SessionID).
			Msg("Failed to handle session end")
		return
	}
	metrics.SessionEndedMessages.WithLabelValues("processed").Inc()
}

// Close closes the consumer
func (c *KafkaConsumer) Close() error {
	log.Info().Msg("Closing Kafka consumer")
	return c.reader.Close()
}
