package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler returns nil only when the message was processed and its offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

const (
	defaultAttempts = 3
	defaultBackoff  = 200 * time.Millisecond
)

// Consumer fans a consumer group's messages out to a worker pool. A failing
// handler is retried with linear backoff; once attempts run out the message
// is logged and committed past, so delivery is at-most-once for messages that
// keep failing.
type Consumer struct {
	r        *kafka.Reader
	workers  int
	attempts int
	backoff  time.Duration
	log      *zap.Logger
}

func NewConsumer(brokers []string, group, topic string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:        r,
		workers:  workers,
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
		log:      log.With(zap.String("topic", topic), zap.String("group", group)),
	}
}

// Start fetches messages and fans them out to the worker pool until ctx is
// cancelled or the reader fails.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				if !c.handle(ctx, h, m) {
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					c.log.Warn("commit failed", zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset), zap.Error(err))
				}
			}
		}()
	}
	stop := func() {
		close(jobs)
		wg.Wait()
	}

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			stop()
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			stop()
			return nil
		}
	}
}

// handle runs h until it succeeds or attempts run out. It reports whether the
// offset should be committed, which is false only when ctx was cancelled.
func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message) bool {
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = h(ctx, m); err == nil {
			return true
		}
		c.log.Warn("handler failed",
			zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset),
			zap.Int("attempt", attempt), zap.Error(err))
		if attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	c.log.Error("message skipped after retries",
		zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset), zap.Error(err))
	return true
}
