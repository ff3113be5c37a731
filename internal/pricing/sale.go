package pricing

import "github.com/shopspring/decimal"

// Sale is an in-progress sale: mutable line items plus the two rates.
// Totals are never stored; call Totals after every mutation.
type Sale struct {
	Items        []LineItem      `json:"items"`
	DiscountRate decimal.Decimal `json:"discountRate"`
	TaxRate      decimal.Decimal `json:"taxRate"`
}

// AddOrIncrementItem increments the quantity of p if it is already in the
// sale, otherwise appends it with quantity 1 at its current selling price.
func (s *Sale) AddOrIncrementItem(p Product) {
	if i := s.indexOf(p.ID); i >= 0 {
		s.Items[i].Quantity++
		return
	}
	s.Items = append(s.Items, LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.SellingPrice,
		Quantity:  1,
	})
}

// SetQuantity overwrites the quantity of the item at index. Quantities below
// 1 are ignored; removal is explicit via RemoveItem.
func (s *Sale) SetQuantity(index, quantity int) error {
	if index < 0 || index >= len(s.Items) {
		return ErrItemNotFound
	}
	if quantity < 1 {
		return nil
	}
	s.Items[index].Quantity = quantity
	return nil
}

// RemoveItem drops the item at index.
func (s *Sale) RemoveItem(index int) error {
	if index < 0 || index >= len(s.Items) {
		return ErrItemNotFound
	}
	s.Items = append(s.Items[:index], s.Items[index+1:]...)
	return nil
}

// SetDiscountRate sets the discount fraction.
func (s *Sale) SetDiscountRate(rate decimal.Decimal) error {
	if !ValidRate(rate) {
		return ErrRateOutOfRange
	}
	s.DiscountRate = rate
	return nil
}

// SetTaxRate sets the tax fraction.
func (s *Sale) SetTaxRate(rate decimal.Decimal) error {
	if !ValidRate(rate) {
		return ErrRateOutOfRange
	}
	s.TaxRate = rate
	return nil
}

// Totals recomputes the sale totals.
func (s *Sale) Totals() Totals {
	return RecomputeTotals(s.Items, s.DiscountRate, s.TaxRate)
}

// Validate checks the sale can be submitted. An empty sale reports
// ErrEmptyItems, never ErrNonPositiveTotal.
func (s *Sale) Validate() error {
	if len(s.Items) == 0 {
		return ErrEmptyItems
	}
	if !s.Totals().Round().Total.IsPositive() {
		return ErrNonPositiveTotal
	}
	return nil
}

func (s *Sale) indexOf(productID int) int {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
