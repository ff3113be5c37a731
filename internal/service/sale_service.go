package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/pricing"
	"github.com/GTDGit/taskify_api/internal/repository"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// SnapshotRefresher reloads the product snapshot after stock moved.
// ProductService implements it.
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context) error
}

// SaleService records sales. Totals are always recomputed server-side.
type SaleService struct {
	saleRepo     repository.SaleStore
	productRepo  repository.ProductStore
	customerRepo repository.CustomerStore
	refresher    SnapshotRefresher
	now          func() time.Time
}

// NewSaleService constructs a SaleService.
func NewSaleService(saleRepo repository.SaleStore, productRepo repository.ProductStore, customerRepo repository.CustomerStore, refresher SnapshotRefresher) *SaleService {
	return &SaleService{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		refresher:    refresher,
		now:          time.Now,
	}
}

// SaleItemRequest is one requested line. A nil UnitPrice means the current
// selling price; a non-nil one must equal it.
type SaleItemRequest struct {
	ProductID int              `json:"productId"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

// ClaimedTotals are the totals the client displayed. When present they must
// match the server's figures to the cent.
type ClaimedTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Total          decimal.Decimal `json:"total"`
}

// SaleDetails are the non-monetary attributes of a sale.
type SaleDetails struct {
	CustomerID    *int                 `json:"customerId"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	Notes         string               `json:"notes"`
}

// CreateSaleRequest is the payload for POST /v1/sales. Rates are percentages.
type CreateSaleRequest struct {
	SaleDetails
	Items           []SaleItemRequest `json:"items"`
	DiscountPercent decimal.Decimal   `json:"discountPercent"`
	TaxPercent      decimal.Decimal   `json:"taxPercent"`
	Totals          *ClaimedTotals    `json:"totals"`
}

// CreateSale prices the request against the catalog and persists it.
func (s *SaleService) CreateSale(ctx context.Context, userID int, req *CreateSaleRequest) (*models.Sale, error) {
	var sale pricing.Sale
	var err error
	if sale.DiscountRate, err = pricing.RateFromPercent(req.DiscountPercent); err != nil {
		return nil, utils.ErrRateOutOfRange
	}
	if sale.TaxRate, err = pricing.RateFromPercent(req.TaxPercent); err != nil {
		return nil, utils.ErrRateOutOfRange
	}

	for i, it := range req.Items {
		if it.Quantity < 1 {
			return nil, utils.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		p, err := s.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, fmt.Errorf("product %d: %w", it.ProductID, utils.ErrProductNotFound)
			}
			return nil, err
		}
		if it.UnitPrice != nil && !it.UnitPrice.Equal(p.SellingPrice) {
			return nil, fmt.Errorf("product %d: unit price %s, current price %s: %w",
				p.ID, it.UnitPrice.StringFixed(2), p.SellingPrice.StringFixed(2), utils.ErrPriceMismatch)
		}
		sale.Items = append(sale.Items, pricing.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.SellingPrice,
			Quantity:  it.Quantity,
		})
	}

	if err := sale.Validate(); err != nil {
		return nil, mapPricingError(err)
	}
	if req.Totals != nil {
		totals := sale.Totals()
		claimed := pricing.Totals{
			Subtotal:       req.Totals.Subtotal,
			DiscountRate:   totals.DiscountRate,
			DiscountAmount: req.Totals.DiscountAmount,
			TaxRate:        totals.TaxRate,
			TaxAmount:      req.Totals.TaxAmount,
			Total:          req.Totals.Total,
		}
		if !totals.Matches(claimed) {
			return nil, fmt.Errorf("claimed total %s, computed %s: %w",
				req.Totals.Total.StringFixed(2), totals.Round().Total.StringFixed(2), utils.ErrTotalsMismatch)
		}
	}

	return s.RecordSale(ctx, userID, &sale, req.SaleDetails)
}

// RecordSale validates sale and persists it with details. Line item prices
// are taken as given.
func (s *SaleService) RecordSale(ctx context.Context, userID int, sale *pricing.Sale, details SaleDetails) (*models.Sale, error) {
	if err := sale.Validate(); err != nil {
		return nil, mapPricingError(err)
	}
	if err := normalizeDetails(&details); err != nil {
		return nil, err
	}
	if details.CustomerID != nil {
		if _, err := s.customerRepo.GetByID(ctx, *details.CustomerID); err != nil {
			if repository.IsNotFound(err) {
				return nil, utils.ErrCustomerNotFound
			}
			return nil, err
		}
	}

	totals := sale.Totals().Round()
	m := &models.Sale{
		InvoiceNumber:  s.invoiceNumber(),
		CustomerID:     details.CustomerID,
		Subtotal:       totals.Subtotal,
		DiscountRate:   totals.DiscountRate,
		DiscountAmount: totals.DiscountAmount,
		TaxRate:        totals.TaxRate,
		TaxAmount:      totals.TaxAmount,
		Total:          totals.Total,
		PaymentMethod:  details.PaymentMethod,
		PaymentStatus:  details.PaymentStatus,
		Notes:          details.Notes,
		CreatedBy:      &userID,
	}
	for _, it := range sale.Items {
		productID := it.ProductID
		m.Items = append(m.Items, models.SaleItem{
			ProductID: &productID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: it.Total().Round(2),
		})
	}

	if err := s.saleRepo.Create(ctx, m); err != nil {
		if errors.Is(err, utils.ErrInsufficientStock) || errors.Is(err, utils.ErrProductNotFound) || errors.Is(err, utils.ErrCustomerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create sale: %w", err)
	}

	log.Info().
		Int("sale_id", m.ID).
		Str("invoice_number", m.InvoiceNumber).
		Str("total", m.Total.StringFixed(2)).
		Int("created_by", userID).
		Msg("Sale recorded")

	if err := s.refresher.RefreshSnapshot(ctx); err != nil {
		log.Error().Err(err).Int("sale_id", m.ID).Msg("Failed to reconcile alerts after sale")
	}
	return m, nil
}

// GetSale returns a sale with its items.
func (s *SaleService) GetSale(ctx context.Context, id int) (*models.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

// ListSales returns a page of sales, newest first.
func (s *SaleService) ListSales(ctx context.Context, f repository.SaleFilter) ([]models.Sale, int, error) {
	return s.saleRepo.GetAllPaged(ctx, f)
}

// invoiceNumber returns INV-YYYYMMDD-xxxxxxxx.
func (s *SaleService) invoiceNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", s.now().Format("20060102"), suffix)
}

// normalizeDetails applies the Cash/Paid defaults and checks the enums.
func normalizeDetails(d *SaleDetails) error {
	if d.PaymentMethod == "" {
		d.PaymentMethod = models.PaymentCash
	}
	if d.PaymentStatus == "" {
		d.PaymentStatus = models.PaymentPaid
	}
	if !d.PaymentMethod.Valid() {
		return utils.Invalid("paymentMethod", "must be one of Cash, Card, UPI, Bank Transfer")
	}
	if !d.PaymentStatus.Valid() {
		return utils.Invalid("paymentStatus", "must be Paid or Pending")
	}
	d.Notes = strings.TrimSpace(d.Notes)
	return nil
}

func mapPricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrEmptyItems):
		return utils.ErrEmptyItems
	case errors.Is(err, pricing.ErrNonPositiveTotal):
		return utils.ErrNonPositiveTotal
	case errors.Is(err, pricing.ErrItemNotFound):
		return utils.ErrItemNotFound
	case errors.Is(err, pricing.ErrRateOutOfRange):
		return utils.ErrRateOutOfRange
	}
	return err
}
