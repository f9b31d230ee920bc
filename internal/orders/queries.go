package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Summary struct {
	ID            int64
	TransactionID string
	FullName      string
	UserEmail     string
	TotalAmount   decimal.Decimal
	Status        Status
	CreatedAt     time.Time
}

type Stats struct {
	Total     int
	Pending   int
	Confirmed int
	Delivered int
}

type Dashboard struct {
	Orders      []Summary
	Stats       Stats
	TotalPages  int
	CurrentPage int
	Limit       int
}

func (d Dashboard) HasNextPage() bool { return d.CurrentPage < d.TotalPages }
func (d Dashboard) HasPrevPage() bool { return d.CurrentPage > 1 }

const itemsQuery = `
	SELECT oi.product_id, p.name, p.authors, COALESCE(p.image_url, ''),
	       oi.quantity, oi.price_at_time::text, oi.total_price::text
	FROM order_items oi
	JOIN products p ON p.id = oi.product_id
	WHERE oi.order_id = $1
	ORDER BY oi.id`

// ListByUser returns the user's orders, newest first, each with its items.
func (r *Repo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, transaction_id, full_name, address, city, state, zip_code,
		       total_amount::text, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	out := []Order{}
	for rows.Next() {
		o := Order{UserID: userID}
		var total, status string
		if err := rows.Scan(&o.ID, &o.Shipping.TransactionID, &o.Shipping.FullName, &o.Shipping.Address,
			&o.Shipping.City, &o.Shipping.State, &o.Shipping.ZipCode, &total, &status, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("order %d total: %w", o.ID, err)
		}
		o.Status = Status(status)
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Items, err = r.items(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListWithStats backs the admin dashboard: one page of orders plus counts per status.
func (r *Repo) ListWithStats(ctx context.Context, page, limit int) (Dashboard, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.transaction_id, o.full_name, u.email, o.total_amount::text, o.status, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return Dashboard{}, err
	}
	defer rows.Close()

	d := Dashboard{Orders: []Summary{}, CurrentPage: page, Limit: limit}
	for rows.Next() {
		var (
			s             Summary
			total, status string
		)
		if err := rows.Scan(&s.ID, &s.TransactionID, &s.FullName, &s.UserEmail, &total, &status, &s.CreatedAt); err != nil {
			return Dashboard{}, err
		}
		if s.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return Dashboard{}, fmt.Errorf("order %d total: %w", s.ID, err)
		}
		s.Status = Status(status)
		d.Orders = append(d.Orders, s)
	}
	if err := rows.Err(); err != nil {
		return Dashboard{}, err
	}

	err = r.DB.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'confirmed'),
		       COUNT(*) FILTER (WHERE status = 'delivered')
		FROM orders`).Scan(&d.Stats.Total, &d.Stats.Pending, &d.Stats.Confirmed, &d.Stats.Delivered)
	if err != nil {
		return Dashboard{}, err
	}
	if limit > 0 {
		d.TotalPages = (d.Stats.Total + limit - 1) / limit
	}
	return d, nil
}

// Details returns one order with customer contact and items, or ErrOrderNotFound.
func (r *Repo) Details(ctx context.Context, orderID int64) (Order, error) {
	var (
		o             Order
		total, status string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT o.id, o.user_id, o.transaction_id, o.full_name, o.address, o.city, o.state,
		       o.zip_code, o.bkash_number, o.total_amount::text, o.status, o.created_at,
		       u.email, u.phone
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`, orderID).Scan(
		&o.ID, &o.UserID, &o.Shipping.TransactionID, &o.Shipping.FullName, &o.Shipping.Address,
		&o.Shipping.City, &o.Shipping.State, &o.Shipping.ZipCode, &o.Shipping.BkashNumber,
		&total, &status, &o.CreatedAt, &o.UserEmail, &o.UserPhone)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return Order{}, fmt.Errorf("order %d total: %w", o.ID, err)
	}
	o.Status = Status(status)

	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *Repo) items(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, itemsQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []OrderItem{}
	for rows.Next() {
		var (
			it           OrderItem
			price, total string
		)
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Authors, &it.ImageURL, &it.Quantity, &price, &total); err != nil {
			return nil, err
		}
		if it.PriceAtTime, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if it.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// TotalItems sums item quantities.
func (o Order) TotalItems() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
