package orders

import (
	"context"
	"fmt"

	"github.com/ariefcatur/bookstore-storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionIDConstraint = "orders_transaction_id_key"

type Repo struct{ DB postgres.DB }

// CreateOrder writes the order header, its items and the stock decrements in
// one transaction. Lines must already be validated. Stock is not checked and
// may go negative.
func (r *Repo) CreateOrder(ctx context.Context, userID int64, ship ShippingInfo, lines []CartLine, total decimal.Decimal) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %w", ErrOrderPersistenceFailed, err)
	}

	orderID, err := writeOrder(ctx, tx, userID, ship, lines, total)
	if err != nil {
		_ = tx.Rollback(ctx)
		if postgres.UniqueViolation(err, transactionIDConstraint) {
			return 0, fmt.Errorf("transaction %s: %w", ship.TransactionID, ErrDuplicateTransaction)
		}
		return 0, fmt.Errorf("%w: %w", ErrOrderPersistenceFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", ErrOrderPersistenceFailed, err)
	}
	return orderID, nil
}

func writeOrder(ctx context.Context, tx pgx.Tx, userID int64, ship ShippingInfo, lines []CartLine, total decimal.Decimal) (int64, error) {
	var orderID int64
	err := tx.QueryRow(ctx, `
		INSERT INTO orders(user_id, full_name, address, city, state, zip_code,
		                   bkash_number, transaction_id, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending')
		RETURNING id`,
		userID, ship.FullName, ship.Address, ship.City, ship.State, ship.ZipCode,
		ship.BkashNumber, ship.TransactionID, money(total),
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, quantity, price_at_time, total_price)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, l.ProductID, l.Quantity, money(l.UnitPrice), money(l.LineTotal),
		); err != nil {
			return 0, fmt.Errorf("insert item for product %d: %w", l.ProductID, err)
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1`,
			l.ProductID, l.Quantity); err != nil {
			return 0, fmt.Errorf("decrement stock for product %d: %w", l.ProductID, err)
		}
	}
	return orderID, nil
}
