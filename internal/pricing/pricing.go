// Package pricing derives sale totals from line items and rates.
//
// Rates are fractions in [0, 1]. Callers that accept percentages convert at
// the boundary with RateFromPercent and PercentFromRate.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyItems       = errors.New("sale must contain at least one item")
	ErrNonPositiveTotal = errors.New("total amount must be greater than zero")
	ErrItemNotFound     = errors.New("line item not found")
	ErrRateOutOfRange   = errors.New("rate must be between 0 and 1")
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Product is the catalog data needed to add a product to a sale.
type Product struct {
	ID           int
	Name         string
	SellingPrice decimal.Decimal
}

// LineItem is one product entry within a sale. Name and UnitPrice are
// snapshots taken when the item was first added.
type LineItem struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Total returns UnitPrice × Quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Totals holds the derived monetary amounts of a sale.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountRate   decimal.Decimal `json:"discountRate"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Total          decimal.Decimal `json:"total"`
}

// RecomputeTotals is a pure function of its inputs. Tax applies to the
// post-discount amount.
func RecomputeTotals(items []LineItem, discountRate, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total())
	}
	discount := subtotal.Mul(discountRate)
	tax := subtotal.Sub(discount).Mul(taxRate)

	return Totals{
		Subtotal:       subtotal,
		DiscountRate:   discountRate,
		DiscountAmount: discount,
		TaxRate:        taxRate,
		TaxAmount:      tax,
		Total:          subtotal.Sub(discount).Add(tax),
	}
}

// Round returns a copy with the component amounts rounded to 2 decimal
// places and Total derived from them, so a stored total always equals
// subtotal - discount + tax. Rates are left untouched.
func (t Totals) Round() Totals {
	t.Subtotal = t.Subtotal.Round(2)
	t.DiscountAmount = t.DiscountAmount.Round(2)
	t.TaxAmount = t.TaxAmount.Round(2)
	t.Total = t.Subtotal.Sub(t.DiscountAmount).Add(t.TaxAmount)
	return t
}

// Matches reports whether claimed agrees with the rounded form of t on every
// amount at 2-place precision. claimed.Total is compared as sent.
func (t Totals) Matches(claimed Totals) bool {
	a := t.Round()
	return a.Subtotal.Equal(claimed.Subtotal.Round(2)) &&
		a.DiscountAmount.Equal(claimed.DiscountAmount.Round(2)) &&
		a.TaxAmount.Equal(claimed.TaxAmount.Round(2)) &&
		a.Total.Equal(claimed.Total.Round(2))
}

// ValidRate reports whether r lies in [0, 1].
func ValidRate(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThanOrEqual(one)
}

// RateFromPercent converts a percentage in [0, 100] to a fraction.
func RateFromPercent(percent decimal.Decimal) (decimal.Decimal, error) {
	r := percent.Div(hundred)
	if !ValidRate(r) {
		return decimal.Zero, ErrRateOutOfRange
	}
	return r, nil
}

// PercentFromRate converts a fraction to a percentage.
func PercentFromRate(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}
