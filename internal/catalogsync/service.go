package catalogsync

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/bookstore-storefront/internal/kafka"
	"github.com/ariefcatur/bookstore-storefront/internal/orders"
	"github.com/ariefcatur/bookstore-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Invalidator interface {
	Invalidate(ctx context.Context, ids ...int64) error
}

// Service drops cached products whose stock was changed by a placed order.
type Service struct {
	Cache       Invalidator
	Redis       redis.Cmdable
	Logger      *zap.Logger
	ServiceName string
}

// HandleOrderCreated is the consumer handler for order.created.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Logger.Warn("skip undecodable message", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != orders.EventOrderCreated {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		s.Logger.Warn("skip bad payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}

	ids := make([]int64, 0, len(p.Items))
	for _, it := range p.Items {
		ids = append(ids, it.ProductID)
	}
	if err := s.Cache.Invalidate(ctx, ids...); err != nil {
		return fmt.Errorf("invalidate products for order %d: %w", p.OrderID, err)
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	s.Logger.Debug("product cache invalidated", zap.Int64("order_id", p.OrderID), zap.Int64s("product_ids", ids))
	return nil
}
