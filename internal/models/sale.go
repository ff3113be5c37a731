package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates accepted payment methods.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentCard         PaymentMethod = "Card"
	PaymentUPI          PaymentMethod = "UPI"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentBankTransfer:
		return true
	}
	return false
}

// PaymentStatus enumerates the payment state of a sale.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
)

// Valid reports whether s is an accepted payment status.
func (s PaymentStatus) Valid() bool {
	return s == PaymentPaid || s == PaymentPending
}

// Sale is a completed point-of-sale transaction.
// CustomerID is nil for walk-in customers.
type Sale struct {
	ID             int             `db:"id" json:"id"`
	InvoiceNumber  string          `db:"invoice_number" json:"invoiceNumber"`
	CustomerID     *int            `db:"customer_id" json:"customerId"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountRate   decimal.Decimal `db:"discount_rate" json:"discountRate"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discountAmount"`
	TaxRate        decimal.Decimal `db:"tax_rate" json:"taxRate"`
	TaxAmount      decimal.Decimal `db:"tax_amount" json:"taxAmount"`
	Total          decimal.Decimal `db:"total" json:"total"`
	PaymentMethod  PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	PaymentStatus  PaymentStatus   `db:"payment_status" json:"paymentStatus"`
	Notes          string          `db:"notes" json:"notes"`
	CreatedBy      *int            `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`

	Items []SaleItem `db:"-" json:"items,omitempty"`
}

// SaleItem is one persisted line of a sale. Name and UnitPrice are snapshots
// taken when the product was added.
type SaleItem struct {
	ID        int             `db:"id" json:"id"`
	SaleID    int             `db:"sale_id" json:"saleId"`
	ProductID *int            `db:"product_id" json:"productId"`
	Name      string          `db:"name" json:"name"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Quantity  int             `db:"quantity" json:"quantity"`
	LineTotal decimal.Decimal `db:"line_total" json:"lineTotal"`
}
