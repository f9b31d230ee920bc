package orders

import (
	"encoding/json"
	"time"
)

const EventOrderCreated = "OrderCreated"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemLine struct {
	ProductID   int64  `json:"product_id"`
	Quantity    int    `json:"quantity"`
	PriceAtTime string `json:"price_at_time"`
}

type OrderCreatedPayload struct {
	OrderID       int64      `json:"order_id"`
	UserID        int64      `json:"user_id"`
	TransactionID string     `json:"transaction_id"`
	Items         []ItemLine `json:"items"`
	TotalAmount   string     `json:"total_amount"`
}
