// Package events publishes submission lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"regportal-go/submission"
)

type KafkaConfig struct {
	Brokers    []string
	Topic      string
	MaxRetries int
}

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

func NewKafkaPublisher(cfg KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            retries,
		WriteTimeout:           5 * time.Second,
	}
	logger.Info("kafka publisher created", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return &KafkaPublisher{writer: w, topic: cfg.Topic, logger: logger}
}

var _ submission.Publisher = (*KafkaPublisher)(nil)

// Publish writes e keyed by submission id, so one submission's events stay
// on one partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, e submission.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(e.SubmissionID), 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s event: %w", e.Type, err)
	}

	p.logger.DebugContext(ctx, "event published", "type", e.Type, "submission_id", e.SubmissionID, "topic", p.topic)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
