package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDelivered Status = "delivered"
)

// CartLine is one client-submitted line. UnitPrice and LineTotal are claims
// to be checked against the catalog, never trusted.
type CartLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// ShippingInfo carries delivery details and the payment reference. The bKash
// number and transaction id are opaque; TransactionID is unique across orders.
type ShippingInfo struct {
	FullName      string
	Address       string
	City          string
	State         string
	ZipCode       string
	BkashNumber   string
	TransactionID string
}

type Receipt struct {
	OrderID     int64
	TotalAmount decimal.Decimal
	Status      Status
}

type Order struct {
	ID          int64
	UserID      int64
	UserEmail   string
	UserPhone   string
	Shipping    ShippingInfo
	TotalAmount decimal.Decimal
	Status      Status
	CreatedAt   time.Time
	Items       []OrderItem
}

type OrderItem struct {
	ProductID   int64
	ProductName string
	Authors     string
	ImageURL    string
	Quantity    int
	PriceAtTime decimal.Decimal
	TotalPrice  decimal.Decimal
}
