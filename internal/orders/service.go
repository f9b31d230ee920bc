package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/bookstore-storefront/internal/kafka"
	"github.com/ariefcatur/bookstore-storefront/internal/redisx"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderWriter interface {
	CreateOrder(ctx context.Context, userID int64, ship ShippingInfo, lines []CartLine, total decimal.Decimal) (int64, error)
}

// Publisher queues an event without blocking and reports whether it was accepted.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header) bool
}

// Service is the checkout entry point: validate prices, check the declared
// gross total, then write the order. Redis and Producer are optional.
type Service struct {
	Validator   *PriceValidator
	Writer      OrderWriter
	Redis       redis.Cmdable
	Producer    Publisher
	Logger      *zap.Logger
	ServiceName string
}

func (s *Service) Checkout(ctx context.Context, userID int64, ship ShippingInfo, lines []CartLine, declaredGross decimal.Decimal) (Receipt, error) {
	lines = inCents(lines)
	gross, err := s.Validator.Validate(ctx, lines)
	if err != nil {
		return Receipt{}, err
	}
	if !withinTolerance(gross, declaredGross) {
		return Receipt{}, fmt.Errorf("calculated %s, declared %s: %w", money(gross), money(declaredGross), ErrGrossTotalMismatch)
	}

	idemKey := fmt.Sprintf(redisx.KeyIdemCheckout, ship.TransactionID)
	if s.Redis != nil {
		if ok, _ := redisx.Exists(ctx, s.Redis, idemKey); ok {
			return Receipt{}, fmt.Errorf("transaction %s: %w", ship.TransactionID, ErrDuplicateTransaction)
		}
	}

	orderID, err := s.Writer.CreateOrder(ctx, userID, ship, lines, gross)
	if err != nil {
		if errors.Is(err, ErrOrderPersistenceFailed) {
			s.logger().Error("checkout write failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return Receipt{}, err
	}

	if s.Redis != nil {
		_ = s.Redis.Set(ctx, idemKey, strconv.FormatInt(orderID, 10), redisx.TTLIdempotency).Err()
	}
	s.publishCreated(ctx, orderID, userID, ship.TransactionID, lines, gross)

	s.logger().Info("order placed",
		zap.Int64("order_id", orderID),
		zap.Int64("user_id", userID),
		zap.String("total_amount", money(gross)),
		zap.Int("lines", len(lines)))

	return Receipt{OrderID: orderID, TotalAmount: gross, Status: StatusPending}, nil
}

func (s *Service) publishCreated(ctx context.Context, orderID, userID int64, txID string, lines []CartLine, total decimal.Decimal) {
	if s.Producer == nil {
		return
	}
	items := make([]ItemLine, 0, len(lines))
	for _, l := range lines {
		items = append(items, ItemLine{ProductID: l.ProductID, Quantity: l.Quantity, PriceAtTime: money(l.UnitPrice)})
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       requestID(ctx),
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload: kafkax.MustMarshal(OrderCreatedPayload{
			OrderID:       orderID,
			UserID:        userID,
			TransactionID: txID,
			Items:         items,
			TotalAmount:   money(total),
		}),
	}
	queued := s.Producer.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	if !queued {
		s.logger().Warn("order created event dropped", zap.Int64("order_id", orderID), zap.String("event_id", ev.EventID))
	}
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func requestID(ctx context.Context) string { return middleware.GetReqID(ctx) }
