package service

import (
	"context"
	"sync"

	"github.com/GTDGit/taskify_api/internal/cache"
	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/pricing"
)

type fakeSnapshots struct {
	products    []models.Product
	has         bool
	invalidated int
}

func (f *fakeSnapshots) Get(context.Context) ([]models.Product, error) {
	if !f.has {
		return nil, cache.ErrMiss
	}
	return f.products, nil
}

func (f *fakeSnapshots) Set(_ context.Context, products []models.Product) error {
	f.products, f.has = products, true
	return nil
}

func (f *fakeSnapshots) Invalidate(context.Context) error {
	f.products, f.has = nil, false
	f.invalidated++
	return nil
}

type fakeObserver struct {
	changed   []models.Product
	snapshots [][]models.Product
}

func (f *fakeObserver) ProductChanged(p models.Product) { f.changed = append(f.changed, p) }
func (f *fakeObserver) SnapshotChanged(products []models.Product) {
	f.snapshots = append(f.snapshots, products)
}

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) RefreshSnapshot(context.Context) error {
	f.calls++
	return nil
}

type memDrafts struct {
	mu        sync.Mutex
	drafts    map[string]cache.Draft
	deleteErr error
}

func newMemDrafts() *memDrafts { return &memDrafts{drafts: map[string]cache.Draft{}} }

func (m *memDrafts) Save(_ context.Context, d *cache.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	cp.Sale.Items = append([]pricing.LineItem(nil), d.Sale.Items...)
	m.drafts[d.Owner+"/"+d.ID] = cp
	return nil
}

func (m *memDrafts) Get(_ context.Context, owner, id string) (*cache.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[owner+"/"+id]
	if !ok {
		return nil, cache.ErrMiss
	}
	d.Sale.Items = append([]pricing.LineItem(nil), d.Sale.Items...)
	return &d, nil
}

func (m *memDrafts) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.drafts, owner+"/"+id)
	return nil
}

type fakeRecorder struct {
	err     error
	sales   []pricing.Sale
	details []SaleDetails
}

func (f *fakeRecorder) RecordSale(_ context.Context, _ int, sale *pricing.Sale, details SaleDetails) (*models.Sale, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sales = append(f.sales, *sale)
	f.details = append(f.details, details)
	return &models.Sale{ID: 1, Total: sale.Totals().Round().Total}, nil
}

type fakeSnapshotter struct {
	products []models.Product
	calls    int
	err      error
}

func (f *fakeSnapshotter) Snapshot(context.Context) ([]models.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}
