package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/taskify_api/internal/alert"
	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/utils"
)

func TestAlertService_ListSeedsNewSessionOnce(t *testing.T) {
	ctx := context.TODO()
	reg := alert.NewRegistry(alert.Options{})
	defer reg.Close()
	snap := &fakeSnapshotter{products: []models.Product{
		{ID: 1, Name: "Knee Brace", ModelNumber: "KB-1", StockQuantity: 2, LowStockThreshold: 5},
		{ID: 2, Name: "Collar", ModelNumber: "CC-1", StockQuantity: 9, LowStockThreshold: 5},
	}}
	svc := NewAlertService(reg, snap)

	alerts, err := svc.List(ctx, "5")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 1, alerts[0].ProductID)

	_, err = svc.List(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.calls)
}

func TestAlertService_Reconcile(t *testing.T) {
	ctx := context.TODO()
	reg := alert.NewRegistry(alert.Options{})
	defer reg.Close()
	snap := &fakeSnapshotter{products: []models.Product{{ID: 1, StockQuantity: 0, LowStockThreshold: 0}}}
	svc := NewAlertService(reg, snap)

	low, err := svc.Reconcile(ctx, "5")
	require.NoError(t, err)
	require.Len(t, low, 1)

	assert.Equal(t, 1, svc.DismissForProduct("5", 1))
	assert.ErrorIs(t, svc.Dismiss("5", "missing"), utils.ErrAlertNotFound)
}

func TestAlertService_Create(t *testing.T) {
	ctx := context.TODO()
	reg := alert.NewRegistry(alert.Options{})
	defer reg.Close()
	svc := NewAlertService(reg, &fakeSnapshotter{})

	_, err := svc.Create(ctx, "5", &CreateAlertRequest{Title: " "})
	assert.ErrorIs(t, err, utils.ErrValidation)

	a, err := svc.Create(ctx, "5", &CreateAlertRequest{Title: "Stock count", Message: "Friday 4pm"})
	require.NoError(t, err)
	assert.Equal(t, alert.KindGeneral, a.Kind)

	list, err := svc.List(ctx, "5")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	svc.DismissAll("5")
	list, err = svc.List(ctx, "5")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAlertService_DismissBeforeFirstListStillSeeds(t *testing.T) {
	ctx := context.TODO()
	reg := alert.NewRegistry(alert.Options{})
	defer reg.Close()
	snap := &fakeSnapshotter{products: []models.Product{{ID: 1, StockQuantity: 1, LowStockThreshold: 5}}}
	svc := NewAlertService(reg, snap)

	svc.DismissAll("7")
	assert.Equal(t, 0, svc.DismissForProduct("7", 1))
	assert.ErrorIs(t, svc.Dismiss("7", "stale-id"), utils.ErrAlertNotFound)

	list, err := svc.List(ctx, "7")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, alert.KindLowStock, list[0].Kind)
	assert.Equal(t, 1, snap.calls)
}

func TestAlertService_FailedSeedIsRetried(t *testing.T) {
	ctx := context.TODO()
	reg := alert.NewRegistry(alert.Options{})
	defer reg.Close()
	snap := &fakeSnapshotter{
		products: []models.Product{{ID: 1, StockQuantity: 1, LowStockThreshold: 5}},
		err:      errors.New("database is down"),
	}
	svc := NewAlertService(reg, snap)

	_, err := svc.List(ctx, "7")
	require.Error(t, err)

	snap.err = nil
	list, err := svc.List(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 2, snap.calls)
}

func TestAlertService_CreateExpiry(t *testing.T) {
	ctx := context.TODO()
	reg := alert.NewRegistry(alert.Options{DefaultTTL: 8 * time.Second})
	defer reg.Close()
	svc := NewAlertService(reg, &fakeSnapshotter{})
	ms := func(v int64) *int64 { return &v }

	a, err := svc.Create(ctx, "5", &CreateAlertRequest{Title: "Default"})
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, a.AutoExpire)

	a, err = svc.Create(ctx, "5", &CreateAlertRequest{Title: "Pinned", AutoExpireMs: ms(0)})
	require.NoError(t, err)
	assert.Zero(t, a.AutoExpire)

	a, err = svc.Create(ctx, "5", &CreateAlertRequest{Title: "Short", AutoExpireMs: ms(1500)})
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, a.AutoExpire)

	_, err = svc.Create(ctx, "5", &CreateAlertRequest{Title: "Bad", AutoExpireMs: ms(-1)})
	assert.ErrorIs(t, err, utils.ErrValidation)
}
