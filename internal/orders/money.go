package orders

import "github.com/shopspring/decimal"

// tolerance absorbs currency rounding noise between client and catalog.
var tolerance = decimal.New(1, -2)

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// money renders an amount the way NUMERIC(10,2) stores it.
func money(d decimal.Decimal) string { return d.StringFixed(2) }

func cents(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func (l CartLine) inCents() CartLine {
	l.UnitPrice = cents(l.UnitPrice)
	l.LineTotal = cents(l.LineTotal)
	return l
}

// inCents returns a copy of lines with every amount rounded to cents.
func inCents(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	for i, l := range lines {
		out[i] = l.inCents()
	}
	return out
}
