package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/bookstore-storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

type PriceLookup interface {
	GetPriceByID(ctx context.Context, id int64) (decimal.Decimal, error)
}

// PriceValidator re-derives every cart figure from catalog prices. It only reads.
type PriceValidator struct {
	Catalog PriceLookup
}

// Validate checks each line against the catalog and returns the sum of the
// client line totals. Amounts are compared and summed in cents, the precision
// they are stored at, so the gross equals the sum of the stored item totals.
func (v *PriceValidator) Validate(ctx context.Context, lines []CartLine) (decimal.Decimal, error) {
	if len(lines) == 0 {
		return decimal.Zero, fmt.Errorf("no lines: %w", ErrInvalidCart)
	}
	gross := decimal.Zero
	for _, l := range lines {
		if l.Quantity < 1 {
			return decimal.Zero, fmt.Errorf("product %d quantity %d: %w", l.ProductID, l.Quantity, ErrInvalidCart)
		}
		l = l.inCents()

		price, err := v.Catalog.GetPriceByID(ctx, l.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("product with ID %d: %w", l.ProductID, ErrProductNotFound)
		}
		if err != nil {
			return decimal.Zero, fmt.Errorf("lookup product %d: %w", l.ProductID, err)
		}
		if !withinTolerance(price, l.UnitPrice) {
			return decimal.Zero, fmt.Errorf("product %d: %w", l.ProductID, ErrPriceMismatch)
		}
		if !withinTolerance(price.Mul(decimal.NewFromInt(int64(l.Quantity))), l.LineTotal) {
			return decimal.Zero, fmt.Errorf("product %d: %w", l.ProductID, ErrLineTotalMismatch)
		}
		gross = gross.Add(l.LineTotal)
	}
	return gross, nil
}
