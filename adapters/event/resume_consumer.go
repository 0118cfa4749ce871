package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

const (
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 30 * time.Second
)

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ResumeHandler processes one upload event. A returned error means the
// event should be attempted again.
type ResumeHandler func(ctx context.Context, payload ResumeEventPayload) error

// ResumeConsumer drains resume.events. A message is committed only once it
// was handled or found undecodable; a failing message is retried in place,
// so nothing behind it on the partition is committed first.
type ResumeConsumer struct {
	reader    MessageReader
	handle    ResumeHandler
	logger    logger.Logger
	baseDelay time.Duration
	maxDelay  time.Duration
}

func NewResumeConsumer(reader MessageReader, handle ResumeHandler, log logger.Logger) *ResumeConsumer {
	return &ResumeConsumer{
		reader:    reader,
		handle:    handle,
		logger:    log,
		baseDelay: defaultRetryBaseDelay,
		maxDelay:  defaultRetryMaxDelay,
	}
}

// WithRetryDelays overrides the backoff bounds.
func (c *ResumeConsumer) WithRetryDelays(base, ceiling time.Duration) *ResumeConsumer {
	c.baseDelay = base
	c.maxDelay = ceiling
	return c
}

// Run blocks until ctx is done. An uncommitted message left behind by
// shutdown is redelivered to the group on the next start.
func (c *ResumeConsumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Worker stopped")
				return
			}
			c.logger.Error("Failed to read message from Kafka", err)
			if !sleep(ctx, c.baseDelay) {
				return
			}
			continue
		}

		if !c.process(ctx, msg) {
			c.logger.Info("Worker stopped before message was handled", zap.Int64("offset", msg.Offset))
			return
		}
		c.commit(msg)
	}
}

// process reports false only when ctx ended before the message was handled.
func (c *ResumeConsumer) process(ctx context.Context, msg kafka.Message) bool {
	log := c.logger.With(zap.String("key", string(msg.Key)), zap.Int64("offset", msg.Offset))

	var payload ResumeEventPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		log.Error("Failed to unmarshal event, skipping", err)
		return true
	}
	if payload.EventType != ResumeEventTypeUploaded || payload.PortfolioID == "" {
		log.Warn("Ignoring unexpected event", zap.String("event_type", string(payload.EventType)))
		return true
	}

	delay := c.baseDelay
	for attempt := 1; ; attempt++ {
		err := c.handle(ctx, payload)
		if err == nil {
			if attempt > 1 {
				log.Info("Resume event handled after retry", zap.Int("attempts", attempt))
			}
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		log.Error("Failed to process resume event, retrying", err,
			zap.String("portfolio_id", payload.PortfolioID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay))
		if !sleep(ctx, delay) {
			return false
		}
		delay = min(delay*2, c.maxDelay)
	}
}

func (c *ResumeConsumer) commit(msg kafka.Message) {
	if err := c.reader.CommitMessages(context.Background(), msg); err != nil {
		c.logger.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
