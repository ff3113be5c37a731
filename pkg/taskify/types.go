package taskify

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// envelope is the single response shape every endpoint returns.
type envelope struct {
	Success *bool           `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta Meta `json:"meta"`
}

// Meta is the request metadata attached to every response.
type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination accompanies list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

type Product struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	ModelNumber       string          `json:"modelNumber"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	CostPrice         decimal.Decimal `json:"costPrice"`
	SellingPrice      decimal.Decimal `json:"sellingPrice"`
	StockQuantity     int             `json:"stockQuantity"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ProductPage is one page of GET /v1/products.
type ProductPage struct {
	Products   []Product
	Pagination Pagination
}

// ListProductsParams filters GET /v1/products. Zero values are omitted.
type ListProductsParams struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

type Alert struct {
	ID           string    `json:"id"`
	ProductID    int       `json:"productId,omitempty"`
	Kind         string    `json:"kind"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	AutoExpireMs int64     `json:"autoExpireMs"`
	CreatedAt    time.Time `json:"createdAt"`
}

type SaleItem struct {
	ID        int             `json:"id"`
	ProductID *int            `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type Sale struct {
	ID             int             `json:"id"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	CustomerID     *int            `json:"customerId"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountRate   decimal.Decimal `json:"discountRate"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  string          `json:"paymentMethod"`
	PaymentStatus  string          `json:"paymentStatus"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"createdAt"`
	Items          []SaleItem      `json:"items,omitempty"`
}

// SaleItemInput is one line of CreateSaleInput. A nil UnitPrice lets the
// server use the current selling price.
type SaleItemInput struct {
	ProductID int              `json:"productId"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

// Totals are the figures a client displayed at checkout.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Total          decimal.Decimal `json:"total"`
}

// CreateSaleInput is the body of POST /v1/sales. Rates are percentages.
type CreateSaleInput struct {
	CustomerID      *int            `json:"customerId,omitempty"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	PaymentStatus   string          `json:"paymentStatus,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Items           []SaleItemInput `json:"items"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
	Totals          *Totals         `json:"totals,omitempty"`
}
