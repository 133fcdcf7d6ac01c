package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/fusion-resume/internal/config"
	"github.com/khoahotran/fusion-resume/internal/domain/blurb"
	"github.com/khoahotran/fusion-resume/pkg/logger"
)

const (
	TopicBlurbEvents = "blurb.events"
)

// MessageWriter is the subset of *kafka.Writer used by the producer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	BlurbEventsWriter MessageWriter
	logger            logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'blurb.events'
	blurbWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicBlurbEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return NewKafkaProducerClientWithWriter(blurbWriter, log), nil
}

func NewKafkaProducerClientWithWriter(w MessageWriter, log logger.Logger) *KafkaProducerClient {
	return &KafkaProducerClient{BlurbEventsWriter: w, logger: log}
}

// PublishBlurbEvent keys messages by blurb id so every change of one blurb
// lands on the same partition, in order.
func (c *KafkaProducerClient) PublishBlurbEvent(ctx context.Context, e blurb.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal blurb event failed: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(e.BlurbID, 10)),
		Value: value,
	}
	if err := c.BlurbEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write blurb event failed: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.BlurbEventsWriter != nil {
		if err := c.BlurbEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka writer", err)
		}
	}
	c.logger.Info("Closed Kafka Producers")
}
