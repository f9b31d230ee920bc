package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/bookstore-storefront/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priceTable map[int64]string

func (p priceTable) GetPriceByID(_ context.Context, id int64) (decimal.Decimal, error) {
	s, ok := p[id]
	if !ok {
		return decimal.Zero, catalog.ErrNotFound
	}
	return decimal.RequireFromString(s), nil
}

type failingLookup struct{ err error }

func (f failingLookup) GetPriceByID(context.Context, int64) (decimal.Decimal, error) {
	return decimal.Zero, f.err
}

func line(id int64, qty int, unit, total string) CartLine {
	return CartLine{
		ProductID: id,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(unit),
		LineTotal: decimal.RequireFromString(total),
	}
}

func TestPriceValidator_Validate(t *testing.T) {
	prices := priceTable{1: "10.00", 2: "3.33", 3: "0.00"}

	tests := []struct {
		name      string
		lines     []CartLine
		wantGross string
		wantErr   error
	}{
		{
			name:      "single line",
			lines:     []CartLine{line(1, 2, "10.00", "20.00")},
			wantGross: "20",
		},
		{
			name:      "several lines",
			lines:     []CartLine{line(1, 1, "10", "10"), line(2, 2, "3.33", "6.66"), line(3, 5, "0", "0")},
			wantGross: "16.66",
		},
		{
			name:      "gross sums client line totals",
			lines:     []CartLine{line(2, 3, "3.33", "10.00")},
			wantGross: "10",
		},
		{
			name:      "unit price off by exactly one cent is accepted",
			lines:     []CartLine{line(1, 1, "10.01", "10.00")},
			wantGross: "10",
		},
		{
			name:      "sub-cent line totals are summed in cents",
			lines:     []CartLine{line(1, 1, "10.00", "10.005"), line(1, 1, "10.00", "10.005")},
			wantGross: "20.02",
		},
		{
			name:    "empty cart",
			lines:   []CartLine{},
			wantErr: ErrInvalidCart,
		},
		{
			name:    "zero quantity",
			lines:   []CartLine{line(1, 0, "10.00", "0.00")},
			wantErr: ErrInvalidCart,
		},
		{
			name:    "negative quantity",
			lines:   []CartLine{line(1, 2, "10.00", "20.00"), line(2, -1, "3.33", "-3.33")},
			wantErr: ErrInvalidCart,
		},
		{
			name:    "unknown product",
			lines:   []CartLine{line(1, 1, "10.00", "10.00"), line(99, 1, "1.00", "1.00")},
			wantErr: ErrProductNotFound,
		},
		{
			name:    "unit price beyond tolerance",
			lines:   []CartLine{line(1, 2, "9.98", "20.00")},
			wantErr: ErrPriceMismatch,
		},
		{
			name:    "line total beyond tolerance",
			lines:   []CartLine{line(1, 2, "10.00", "19.98")},
			wantErr: ErrLineTotalMismatch,
		},
		{
			name:    "price checked before line total",
			lines:   []CartLine{line(1, 2, "5.00", "10.00")},
			wantErr: ErrPriceMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &PriceValidator{Catalog: prices}
			gross, err := v.Validate(context.Background(), tt.lines)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantErr, Kind(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.wantGross).Equal(gross), "gross %s", gross)
		})
	}
}

func TestPriceValidator_ErrorNamesProduct(t *testing.T) {
	v := &PriceValidator{Catalog: priceTable{}}
	_, err := v.Validate(context.Background(), []CartLine{line(42, 1, "1", "1")})
	assert.EqualError(t, err, "product with ID 42: product not found")
}

func TestPriceValidator_LookupFailureIsNotAKind(t *testing.T) {
	boom := errors.New("connection refused")
	v := &PriceValidator{Catalog: failingLookup{err: boom}}

	_, err := v.Validate(context.Background(), []CartLine{line(1, 1, "1", "1")})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, Kind(err))
}
