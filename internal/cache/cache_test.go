package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/pricing"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestProductCache(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := NewProductCache(store, time.Minute)

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, ErrMiss)

	products := []models.Product{{
		ID:                1,
		Name:              "Knee Brace",
		ModelNumber:       "KB-100",
		SellingPrice:      decimal.RequireFromString("49.90"),
		StockQuantity:     3,
		LowStockThreshold: 5,
	}}
	require.NoError(t, c.Set(ctx, products))
	assert.Equal(t, time.Minute, store.ttls[productSnapshotKey])

	got, err := c.Get(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "KB-100", got[0].ModelNumber)
	assert.True(t, got[0].SellingPrice.Equal(products[0].SellingPrice))

	require.NoError(t, c.Invalidate(ctx))
	_, err = c.Get(ctx)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestDraftStore_ScopedByOwner(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := NewDraftStore(store, 24*time.Hour)

	d := &Draft{
		ID:            "d1",
		Owner:         "1",
		PaymentMethod: models.PaymentCash,
		PaymentStatus: models.PaymentPaid,
		Sale:          pricing.Sale{TaxRate: decimal.RequireFromString("0.18")},
	}
	d.Sale.AddOrIncrementItem(pricing.Product{ID: 9, Name: "Splint", SellingPrice: decimal.NewFromInt(100)})
	require.NoError(t, s.Save(ctx, d))
	assert.Equal(t, 24*time.Hour, store.ttls["draft:1:d1"])

	got, err := s.Get(ctx, "1", "d1")
	require.NoError(t, err)
	require.Len(t, got.Sale.Items, 1)
	assert.Equal(t, 9, got.Sale.Items[0].ProductID)
	assert.True(t, got.Sale.TaxRate.Equal(decimal.RequireFromString("0.18")))

	_, err = s.Get(ctx, "2", "d1")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, s.Delete(ctx, "1", "d1"))
	_, err = s.Get(ctx, "1", "d1")
	assert.ErrorIs(t, err, ErrMiss)
}
