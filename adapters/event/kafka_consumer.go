package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/fusion-resume/internal/config"
	"github.com/khoahotran/fusion-resume/internal/domain/blurb"
	"github.com/khoahotran/fusion-resume/pkg/logger"
)

// MessageReader is the subset of *kafka.Reader used by the consumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BlurbEventHandler processes one decoded event. A returned error leaves the
// message uncommitted so it is redelivered after a rebalance or restart.
type BlurbEventHandler func(ctx context.Context, e blurb.Event) error

type BlurbEventConsumer struct {
	reader MessageReader
	logger logger.Logger
}

func NewKafkaBlurbEventConsumer(cfg config.Config, log logger.Logger) (*BlurbEventConsumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicBlurbEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return NewBlurbEventConsumerWithReader(reader, log), nil
}

func NewBlurbEventConsumerWithReader(r MessageReader, log logger.Logger) *BlurbEventConsumer {
	return &BlurbEventConsumer{reader: r, logger: log}
}

// Run consumes until ctx is cancelled. Undecodable messages are committed and
// skipped.
func (c *BlurbEventConsumer) Run(ctx context.Context, handle BlurbEventHandler) error {
	c.logger.Info("Consumer listening", zap.String("topic", TopicBlurbEvents))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch message failed: %w", err)
		}

		var e blurb.Event
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			c.logger.Warn("Skipping undecodable blurb event",
				zap.String("key", string(msg.Key)), zap.Int64("offset", msg.Offset), zap.Error(err))
			c.commit(ctx, msg)
			continue
		}

		if err := handle(ctx, e); err != nil {
			c.logger.Error("Failed to process blurb event", err,
				zap.Int64("blurb_id", e.BlurbID), zap.Int64("offset", msg.Offset))
			continue
		}
		c.commit(ctx, msg)
	}
}

func (c *BlurbEventConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}

func (c *BlurbEventConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", err)
	}
}
