package redisx

import "time"

const (
	// Checkout fast path: idem:checkout:{transaction_id} -> order_id
	KeyIdemCheckout = "idem:checkout:%s"

	// Product read cache: product:{id} -> JSON catalog.Product
	KeyProduct = "product:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency  = 24 * time.Hour
	TTLProductCache = 5 * time.Minute
	TTLDedup        = 48 * time.Hour
)
