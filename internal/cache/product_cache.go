package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/taskify_api/internal/models"
)

const productSnapshotKey = "products:snapshot"

// ProductCache holds the full product list used to seed alert sessions.
type ProductCache struct {
	store Store
	ttl   time.Duration
}

// NewProductCache creates a new ProductCache.
func NewProductCache(store Store, ttl time.Duration) *ProductCache {
	return &ProductCache{store: store, ttl: ttl}
}

// Get returns the cached snapshot or ErrMiss.
func (c *ProductCache) Get(ctx context.Context) ([]models.Product, error) {
	raw, err := c.store.Get(ctx, productSnapshotKey)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product snapshot: %w", err)
	}
	return products, nil
}

// Set replaces the cached snapshot.
func (c *ProductCache) Set(ctx context.Context, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal product snapshot: %w", err)
	}
	return c.store.Set(ctx, productSnapshotKey, string(data), c.ttl)
}

// Invalidate drops the snapshot; the next reader reloads from the database.
func (c *ProductCache) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, productSnapshotKey)
}
