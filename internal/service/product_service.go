package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/taskify_api/internal/cache"
	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/repository"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// StockObserver is notified whenever product stock may have changed.
// alert.Registry implements it.
type StockObserver interface {
	ProductChanged(p models.Product)
	SnapshotChanged(products []models.Product)
}

// SnapshotCache caches the full product list. cache.ProductCache implements it.
type SnapshotCache interface {
	Get(ctx context.Context) ([]models.Product, error)
	Set(ctx context.Context, products []models.Product) error
	Invalidate(ctx context.Context) error
}

type nopObserver struct{}

func (nopObserver) ProductChanged(models.Product)     {}
func (nopObserver) SnapshotChanged([]models.Product) {}

// ProductService provides product-related business logic.
type ProductService struct {
	productRepo repository.ProductStore
	snapshots   SnapshotCache
	observer    StockObserver
}

// NewProductService constructs a ProductService. observer may be nil.
func NewProductService(productRepo repository.ProductStore, snapshots SnapshotCache, observer StockObserver) *ProductService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &ProductService{productRepo: productRepo, snapshots: snapshots, observer: observer}
}

// CreateProductRequest is the payload for creating a product.
type CreateProductRequest struct {
	Name              string                 `json:"name"`
	ModelNumber       string                 `json:"modelNumber"`
	Description       string                 `json:"description"`
	Category          models.ProductCategory `json:"category"`
	CostPrice         decimal.Decimal        `json:"costPrice"`
	SellingPrice      decimal.Decimal        `json:"sellingPrice"`
	StockQuantity     int                    `json:"stockQuantity"`
	LowStockThreshold int                    `json:"lowStockThreshold"`
	ImageURL          string                 `json:"imageUrl"`
}

// UpdateProductRequest is a partial update; nil fields are left unchanged.
type UpdateProductRequest struct {
	Name              *string                 `json:"name"`
	ModelNumber       *string                 `json:"modelNumber"`
	Description       *string                 `json:"description"`
	Category          *models.ProductCategory `json:"category"`
	CostPrice         *decimal.Decimal        `json:"costPrice"`
	SellingPrice      *decimal.Decimal        `json:"sellingPrice"`
	StockQuantity     *int                    `json:"stockQuantity"`
	LowStockThreshold *int                    `json:"lowStockThreshold"`
	ImageURL          *string                 `json:"imageUrl"`
}

// ListProducts returns a page of products and the total match count.
func (s *ProductService) ListProducts(ctx context.Context, f repository.ProductFilter) ([]models.Product, int, error) {
	if f.Category != "" && !models.ProductCategory(f.Category).Valid() {
		return nil, 0, utils.Invalid("category", "unknown category")
	}
	return s.productRepo.GetAllPaged(ctx, f)
}

// GetProduct returns a product by id.
func (s *ProductService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListLowStock returns every product at or below its threshold.
func (s *ProductService) ListLowStock(ctx context.Context) ([]models.Product, error) {
	return s.productRepo.ListLowStock(ctx)
}

// Snapshot returns all products, served from Redis when possible.
// Cache failures degrade to a database read.
func (s *ProductService) Snapshot(ctx context.Context) ([]models.Product, error) {
	products, err := s.snapshots.Get(ctx)
	if err == nil {
		return products, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Msg("Product snapshot cache read failed")
	}

	products, err = s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load product snapshot: %w", err)
	}
	if err := s.snapshots.Set(ctx, products); err != nil {
		log.Warn().Err(err).Msg("Product snapshot cache write failed")
	}
	return products, nil
}

// RefreshSnapshot reloads all products and runs a full reconcile on every
// alert session.
func (s *ProductService) RefreshSnapshot(ctx context.Context) error {
	s.invalidate(ctx)
	products, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	s.observer.SnapshotChanged(products)
	return nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	p := &models.Product{
		Name:              strings.TrimSpace(req.Name),
		ModelNumber:       strings.TrimSpace(req.ModelNumber),
		Description:       strings.TrimSpace(req.Description),
		Category:          req.Category,
		CostPrice:         req.CostPrice,
		SellingPrice:      req.SellingPrice,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		ImageURL:          strings.TrimSpace(req.ImageURL),
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	log.Info().Int("product_id", p.ID).Str("model_number", p.ModelNumber).Msg("Product created")

	s.refreshAfterMutation(ctx)
	return p, nil
}

// UpdateProduct applies a partial update and reconciles the product's alerts.
func (s *ProductService) UpdateProduct(ctx context.Context, id int, req *UpdateProductRequest) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.ModelNumber != nil {
		p.ModelNumber = strings.TrimSpace(*req.ModelNumber)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.SellingPrice != nil {
		p.SellingPrice = *req.SellingPrice
	}
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}
	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}
	if req.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, p); err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidate(ctx)
	s.observer.ProductChanged(*p)
	return p, nil
}

// DeleteProduct removes a product. Its alerts are retracted by the
// follow-up full reconcile.
func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return utils.ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	log.Info().Int("product_id", id).Msg("Product deleted")

	s.refreshAfterMutation(ctx)
	return nil
}

// refreshAfterMutation never fails the caller; the mutation is already committed.
func (s *ProductService) refreshAfterMutation(ctx context.Context) {
	if err := s.RefreshSnapshot(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to reconcile alerts after product change")
	}
}

func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.snapshots.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Product snapshot cache invalidation failed")
	}
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return utils.Invalid("name", "is required")
	case p.ModelNumber == "":
		return utils.Invalid("modelNumber", "is required")
	case p.Description == "":
		return utils.Invalid("description", "is required")
	case !p.Category.Valid():
		return utils.Invalid("category", "must be one of Limb, Joint, Spinal, Cranial, Dental, Other")
	case !p.SellingPrice.IsPositive():
		return utils.Invalid("sellingPrice", "must be greater than 0")
	case p.CostPrice.IsNegative():
		return utils.Invalid("costPrice", "must not be negative")
	case p.StockQuantity < 0:
		return utils.Invalid("stockQuantity", "must not be negative")
	case p.LowStockThreshold < 0:
		return utils.Invalid("lowStockThreshold", "must not be negative")
	}
	return nil
}
