package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/khoahotran/portfolio-ai/internal/config"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

const (
	TopicResumeEvents = "resume.events"
)

type KafkaProducerClient struct {
	ResumeEventsWriter *kafka.Writer
	logger             logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	resumeWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicResumeEvents,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka producer successfully.")
	return &KafkaProducerClient{ResumeEventsWriter: resumeWriter, logger: log}, nil
}

// PublishResumeEvent keys messages by portfolio id so redeliveries of one
// upload land on the same partition.
func (c *KafkaProducerClient) PublishResumeEvent(ctx context.Context, payload ResumeEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal resume event: %w", err)
	}

	err = c.ResumeEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.PortfolioID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write resume event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.ResumeEventsWriter != nil {
		if err := c.ResumeEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka writer", err)
		}
	}
	c.logger.Info("Closed Kafka producers")
}
