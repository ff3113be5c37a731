package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/taskify_api/internal/cache"
	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/pricing"
	"github.com/GTDGit/taskify_api/internal/repository"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// DraftRepository persists drafts. cache.DraftStore implements it.
type DraftRepository interface {
	Save(ctx context.Context, d *cache.Draft) error
	Get(ctx context.Context, owner, id string) (*cache.Draft, error)
	Delete(ctx context.Context, owner, id string) error
}

// SaleRecorder persists a finished sale. SaleService implements it.
type SaleRecorder interface {
	RecordSale(ctx context.Context, userID int, sale *pricing.Sale, details SaleDetails) (*models.Sale, error)
}

// DraftView is a draft plus its live totals. Rates are echoed as percentages.
type DraftView struct {
	*cache.Draft
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
	Totals          pricing.Totals  `json:"totals"`
}

// DraftService drives the sale calculator on server-held drafts.
type DraftService struct {
	drafts      DraftRepository
	productRepo repository.ProductStore
	recorder    SaleRecorder
	defaultTax  decimal.Decimal
}

// NewDraftService constructs a DraftService. defaultTaxPercent seeds new drafts.
func NewDraftService(drafts DraftRepository, productRepo repository.ProductStore, recorder SaleRecorder, defaultTaxPercent float64) (*DraftService, error) {
	rate, err := pricing.RateFromPercent(decimal.NewFromFloat(defaultTaxPercent))
	if err != nil {
		return nil, fmt.Errorf("default tax: %w", err)
	}
	return &DraftService{drafts: drafts, productRepo: productRepo, recorder: recorder, defaultTax: rate}, nil
}

// RatesRequest sets both rates, as percentages in [0, 100].
type RatesRequest struct {
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
}

// CreateDraft starts an empty draft for owner.
func (s *DraftService) CreateDraft(ctx context.Context, owner string) (*DraftView, error) {
	d := &cache.Draft{
		ID:            uuid.NewString(),
		Owner:         owner,
		Sale:          pricing.Sale{DiscountRate: decimal.Zero, TaxRate: s.defaultTax},
		PaymentMethod: models.PaymentCash,
		PaymentStatus: models.PaymentPaid,
		CreatedAt:     time.Now(),
	}
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return view(d), nil
}

// GetDraft returns a draft with live totals.
func (s *DraftService) GetDraft(ctx context.Context, owner, id string) (*DraftView, error) {
	d, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return view(d), nil
}

// AddProduct adds one unit of a product, or increments it if already present.
// Out of stock products are rejected.
func (s *DraftService) AddProduct(ctx context.Context, owner, id string, productID int) (*DraftView, error) {
	d, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	if p.StockQuantity <= 0 {
		return nil, fmt.Errorf("product %d: %w", p.ID, utils.ErrOutOfStock)
	}

	d.Sale.AddOrIncrementItem(pricing.Product{ID: p.ID, Name: p.Name, SellingPrice: p.SellingPrice})
	return s.save(ctx, d)
}

// SetQuantity overwrites an item's quantity. Quantities below 1 leave the
// draft unchanged.
func (s *DraftService) SetQuantity(ctx context.Context, owner, id string, index, quantity int) (*DraftView, error) {
	return s.mutate(ctx, owner, id, func(sale *pricing.Sale) error {
		return sale.SetQuantity(index, quantity)
	})
}

// RemoveItem drops an item by index.
func (s *DraftService) RemoveItem(ctx context.Context, owner, id string, index int) (*DraftView, error) {
	return s.mutate(ctx, owner, id, func(sale *pricing.Sale) error {
		return sale.RemoveItem(index)
	})
}

// SetRates updates discount and tax.
func (s *DraftService) SetRates(ctx context.Context, owner, id string, req *RatesRequest) (*DraftView, error) {
	discount, err := pricing.RateFromPercent(req.DiscountPercent)
	if err != nil {
		return nil, utils.ErrRateOutOfRange
	}
	tax, err := pricing.RateFromPercent(req.TaxPercent)
	if err != nil {
		return nil, utils.ErrRateOutOfRange
	}
	return s.mutate(ctx, owner, id, func(sale *pricing.Sale) error {
		if err := sale.SetDiscountRate(discount); err != nil {
			return err
		}
		return sale.SetTaxRate(tax)
	})
}

// SetDetails updates customer, payment and notes.
func (s *DraftService) SetDetails(ctx context.Context, owner, id string, details SaleDetails) (*DraftView, error) {
	if err := normalizeDetails(&details); err != nil {
		return nil, err
	}
	d, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	d.CustomerID = details.CustomerID
	d.PaymentMethod = details.PaymentMethod
	d.PaymentStatus = details.PaymentStatus
	d.Notes = details.Notes
	return s.save(ctx, d)
}

// Discard deletes a draft.
func (s *DraftService) Discard(ctx context.Context, owner, id string) error {
	if _, err := s.load(ctx, owner, id); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, owner, id)
}

// Submit records the draft as a sale and deletes it. A rejected submit
// leaves the draft in place. Once the sale is recorded a failed delete is
// only logged; the draft expires with its TTL.
func (s *DraftService) Submit(ctx context.Context, owner, id string, userID int) (*models.Sale, error) {
	d, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	sale, err := s.recorder.RecordSale(ctx, userID, &d.Sale, SaleDetails{
		CustomerID:    d.CustomerID,
		PaymentMethod: d.PaymentMethod,
		PaymentStatus: d.PaymentStatus,
		Notes:         d.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, owner, id); err != nil {
		log.Warn().Err(err).Str("draft_id", id).Str("invoice", sale.InvoiceNumber).Msg("Submitted draft was not deleted")
	}
	return sale, nil
}

func (s *DraftService) mutate(ctx context.Context, owner, id string, fn func(*pricing.Sale) error) (*DraftView, error) {
	d, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := fn(&d.Sale); err != nil {
		return nil, mapPricingError(err)
	}
	return s.save(ctx, d)
}

func (s *DraftService) load(ctx context.Context, owner, id string) (*cache.Draft, error) {
	d, err := s.drafts.Get(ctx, owner, id)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, utils.ErrDraftNotFound
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return d, nil
}

func (s *DraftService) save(ctx context.Context, d *cache.Draft) (*DraftView, error) {
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return view(d), nil
}

func view(d *cache.Draft) *DraftView {
	return &DraftView{
		Draft:           d,
		DiscountPercent: pricing.PercentFromRate(d.Sale.DiscountRate),
		TaxPercent:      pricing.PercentFromRate(d.Sale.TaxRate),
		Totals:          d.Sale.Totals(),
	}
}
