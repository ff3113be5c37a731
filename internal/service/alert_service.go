package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GTDGit/taskify_api/internal/alert"
	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// ProductSnapshotter returns the current product list. ProductService implements it.
type ProductSnapshotter interface {
	Snapshot(ctx context.Context) ([]models.Product, error)
}

// AlertService exposes the alert sessions of the registry to handlers.
type AlertService struct {
	registry *alert.Registry
	products ProductSnapshotter
}

// NewAlertService constructs an AlertService.
func NewAlertService(registry *alert.Registry, products ProductSnapshotter) *AlertService {
	return &AlertService{registry: registry, products: products}
}

// CreateAlertRequest raises a general notice in the caller's session.
type CreateAlertRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	// AutoExpireMs omitted uses the default TTL; 0 keeps the alert until dismissed.
	AutoExpireMs *int64 `json:"autoExpireMs"`
}

// Session returns owner's reconciler, seeding it from the product snapshot
// until a seed succeeds.
func (s *AlertService) Session(ctx context.Context, owner string) (*alert.Reconciler, error) {
	rec, _ := s.registry.For(owner)
	if rec.Seeded() {
		return rec, nil
	}
	products, err := s.products.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed alert session: %w", err)
	}
	rec.ReconcileAll(products)
	return rec, nil
}

// List returns owner's active alerts in creation order.
func (s *AlertService) List(ctx context.Context, owner string) ([]alert.Alert, error) {
	rec, err := s.Session(ctx, owner)
	if err != nil {
		return nil, err
	}
	return rec.List(), nil
}

// Reconcile runs a full reconcile for owner against fresh product data and
// returns the low-stock products.
func (s *AlertService) Reconcile(ctx context.Context, owner string) ([]models.Product, error) {
	rec, _ := s.registry.For(owner)
	products, err := s.products.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	// a full reconcile seeds the session as well
	return rec.ReconcileAll(products), nil
}

// Create raises a general alert.
func (s *AlertService) Create(ctx context.Context, owner string, req *CreateAlertRequest) (alert.Alert, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return alert.Alert{}, utils.Invalid("title", "is required")
	}
	var ttl time.Duration
	if req.AutoExpireMs != nil {
		switch ms := *req.AutoExpireMs; {
		case ms < 0:
			return alert.Alert{}, utils.Invalid("autoExpireMs", "must not be negative")
		case ms == 0:
			ttl = alert.NoExpiry
		default:
			ttl = millis(ms)
		}
	}
	rec, err := s.Session(ctx, owner)
	if err != nil {
		return alert.Alert{}, err
	}
	return rec.Add(alert.Alert{
		Kind:       alert.KindGeneral,
		Title:      title,
		Message:    strings.TrimSpace(req.Message),
		AutoExpire: ttl,
	}), nil
}

// Dismiss removes one alert. Dismissals never seed: an unseeded session has
// nothing the caller could have seen, and the next List seeds it.
func (s *AlertService) Dismiss(owner, id string) error {
	rec, _ := s.registry.For(owner)
	if err := rec.Dismiss(id); err != nil {
		return utils.ErrAlertNotFound
	}
	return nil
}

// DismissAll clears owner's session.
func (s *AlertService) DismissAll(owner string) {
	rec, _ := s.registry.For(owner)
	rec.DismissAll()
}

// DismissForProduct removes every alert about productID and returns how many.
func (s *AlertService) DismissForProduct(owner string, productID int) int {
	rec, _ := s.registry.For(owner)
	return rec.DismissForProduct(productID)
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
