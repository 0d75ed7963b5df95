package producer

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/gosight/gosight/summarizer/internal/config"
)

// SessionSummarized is published once a session has been processed,
// summarized and archived.
type SessionSummarized struct {
	SessionID   string    `json:"session_id"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Significant int       `json:"significant_events"`
	Errors      int       `json:"errors"`
	EndedAt     time.Time `json:"ended_at"`
}

// messageWriter is the part of kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer messageWriter
}

func NewKafkaProducer(cfg config.KafkaConfig) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topics["session_summarized"],
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchTimeout: time.Millisecond * 100,
		},
	}
}

func newMessage(msg SessionSummarized) (kafka.Message, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(msg.SessionID),
		Value: data,
	}, nil
}

// PublishSessionSummarized writes msg keyed by its session id.
func (p *KafkaProducer) PublishSessionSummarized(ctx context.Context, msg SessionSummarized) error {
	m, err := newMessage(msg)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, m)
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
