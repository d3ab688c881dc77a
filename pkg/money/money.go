package money

import (
	"github.com/calebreyes/tradepost-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// FromCents converts an integer minor-unit amount into a decimal major-unit value.
func FromCents(cents int64, currency enums.Currency) decimal.Decimal {
	return decimal.New(cents, -currency.MinorUnits())
}

// LineTotalCents multiplies a unit price by a quantity in minor units.
// Stored amounts are integers, so the multiplication is exact.
func LineTotalCents(unitPriceCents int64, qty int) int64 {
	return unitPriceCents * int64(qty)
}

// Format renders a minor-unit amount as a fixed-point string rounded to the
// currency's minor unit ("20.00" for 2000 USD cents).
func Format(cents int64, currency enums.Currency) string {
	return FromCents(cents, currency).StringFixed(currency.MinorUnits())
}
