package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "orders_transaction_id_key"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "order_items_product_id_fkey"}

	assert.True(t, UniqueViolation(dup, ""))
	assert.True(t, UniqueViolation(dup, "orders_transaction_id_key"))
	assert.True(t, UniqueViolation(fmt.Errorf("insert order: %w", dup), "orders_transaction_id_key"))
	assert.False(t, UniqueViolation(dup, "users_email_key"))
	assert.False(t, UniqueViolation(fk, ""))
	assert.False(t, UniqueViolation(errors.New("duplicate key value"), ""))
	assert.False(t, UniqueViolation(nil, ""))
}
