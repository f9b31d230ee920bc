package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer buffers messages in an inbox drained by a single writer goroutine.
// Publish never blocks: when the inbox is full or the producer is closed the
// message is dropped and logged.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, topic string, buf int, log *zap.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		log:     log.With(zap.String("topic", topic)),
	}
}

// Start runs the writer loop until Close is called.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			p.write(ctx, m)
		}
		if err := p.w.Close(); err != nil {
			p.log.Warn("kafka writer close", zap.Error(err))
		}
	}()
}

func (p *Producer) write(ctx context.Context, m kafka.Message) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(wctx, m); err != nil {
		p.log.Error("kafka publish failed", zap.ByteString("key", m.Key), zap.Error(err))
	}
}

// Publish queues a message and reports whether it was accepted.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) bool {
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Warn("kafka publish after close, dropped", zap.ByteString("key", key))
		return false
	}
	select {
	case p.inbox <- m:
		return true
	default:
		p.log.Error("kafka inbox full, dropped", zap.ByteString("key", key), zap.Int("capacity", cap(p.inbox)))
		return false
	}
}

// Close stops accepting messages; the loop flushes what is queued and exits.
// It is safe to call more than once.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

// WaitClosed blocks until the flush after Close has finished.
func (p *Producer) WaitClosed() { <-p.closeCh }
