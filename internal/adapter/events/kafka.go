package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"palma-lending/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher streams ledger events as JSON, keyed by the acting account
// so one account's events stay ordered within a partition.
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaWriter builds an asynchronous hash-balanced writer for topic.
// WriteMessages returns once messages are queued; delivery failures are
// reported to log from the completion callback.
func NewKafkaWriter(brokers []string, topic string, log zerolog.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		BatchTimeout: 10 * time.Millisecond,
		Completion:   completionLogger(log),
	}
}

func completionLogger(log zerolog.Logger) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err == nil {
			return
		}
		for _, m := range msgs {
			log.Error().
				Err(err).
				Str("topic", m.Topic).
				Str("key", string(m.Key)).
				Msg("kafka delivery failed")
		}
	}
}

// NewKafkaPublisher wraps writer.
func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish writes one message per event.
func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Account.Hex()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID.String())},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Listener adapts the publisher to the bus.
func (p *KafkaPublisher) Listener() Listener {
	return p.Publish
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
