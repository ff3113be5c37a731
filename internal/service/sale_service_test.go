package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/pricing"
	"github.com/GTDGit/taskify_api/internal/repository/mocks"
	"github.com/GTDGit/taskify_api/internal/utils"
)

type saleFixture struct {
	sales     *mocks.MockSaleStore
	products  *mocks.MockProductStore
	customers *mocks.MockCustomerStore
	refresher *fakeRefresher
	svc       *SaleService
}

func newSaleFixture() *saleFixture {
	f := &saleFixture{
		sales:     new(mocks.MockSaleStore),
		products:  new(mocks.MockProductStore),
		customers: new(mocks.MockCustomerStore),
		refresher: &fakeRefresher{},
	}
	f.svc = NewSaleService(f.sales, f.products, f.customers, f.refresher)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func price(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func (f *saleFixture) stockCatalog(ctx context.Context) {
	f.products.On("GetByID", ctx, 1).Return(&models.Product{ID: 1, Name: "Knee Brace", SellingPrice: dec("100")}, nil)
	f.products.On("GetByID", ctx, 2).Return(&models.Product{ID: 2, Name: "Wrist Splint", SellingPrice: dec("50")}, nil)
	f.products.On("GetByID", ctx, 404).Return(nil, sql.ErrNoRows)
}

func scenarioRequest() *CreateSaleRequest {
	return &CreateSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: 1, Quantity: 2, UnitPrice: price("100")},
			{ProductID: 2, Quantity: 1},
		},
		DiscountPercent: dec("10"),
		TaxPercent:      dec("18"),
		Totals: &ClaimedTotals{
			Subtotal:       dec("250"),
			DiscountAmount: dec("25"),
			TaxAmount:      dec("40.5"),
			Total:          dec("265.5"),
		},
	}
}

func TestSaleService_CreateSale(t *testing.T) {
	ctx := context.TODO()
	f := newSaleFixture()
	f.stockCatalog(ctx)

	f.sales.On("Create", ctx, mock.MatchedBy(func(s *models.Sale) bool {
		return s.Total.Equal(dec("265.5")) &&
			s.TaxAmount.Equal(dec("40.5")) &&
			s.DiscountRate.Equal(dec("0.1")) &&
			len(s.Items) == 2 &&
			s.Items[0].LineTotal.Equal(dec("200")) &&
			s.PaymentMethod == models.PaymentCash &&
			s.PaymentStatus == models.PaymentPaid &&
			*s.CreatedBy == 5
	})).Return(nil).Once()

	sale, err := f.svc.CreateSale(ctx, 5, scenarioRequest())
	require.NoError(t, err)
	assert.Equal(t, 301, sale.ID)
	assert.Regexp(t, `^INV-20240309-[0-9A-F]{8}$`, sale.InvoiceNumber)
	assert.Equal(t, 1, f.refresher.calls)
	f.sales.AssertExpectations(t)
}

func TestSaleService_CreateSale_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *CreateSaleRequest)
		wantErr error
	}{
		{"unknown product", func(r *CreateSaleRequest) { r.Items[1].ProductID = 404 }, utils.ErrProductNotFound},
		{"stale unit price", func(r *CreateSaleRequest) { r.Items[0].UnitPrice = price("90") }, utils.ErrPriceMismatch},
		{"claimed total differs", func(r *CreateSaleRequest) { r.Totals.Total = dec("250") }, utils.ErrTotalsMismatch},
		{"claimed tax differs", func(r *CreateSaleRequest) { r.Totals.TaxAmount = dec("45") }, utils.ErrTotalsMismatch},
		{"empty items", func(r *CreateSaleRequest) { r.Items = nil; r.Totals = nil }, utils.ErrEmptyItems},
		{"full discount", func(r *CreateSaleRequest) { r.DiscountPercent = dec("100"); r.Totals = nil }, utils.ErrNonPositiveTotal},
		{"empty items with claimed totals", func(r *CreateSaleRequest) { r.Items = nil }, utils.ErrEmptyItems},
		{"full discount with claimed totals", func(r *CreateSaleRequest) { r.DiscountPercent = dec("100") }, utils.ErrNonPositiveTotal},
		{"discount above 100", func(r *CreateSaleRequest) { r.DiscountPercent = dec("120") }, utils.ErrRateOutOfRange},
		{"zero quantity", func(r *CreateSaleRequest) { r.Items[0].Quantity = 0 }, utils.ErrValidation},
		{"bad payment method", func(r *CreateSaleRequest) { r.PaymentMethod = "Cheque" }, utils.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.TODO()
			f := newSaleFixture()
			f.stockCatalog(ctx)
			req := scenarioRequest()
			tt.mutate(req)

			_, err := f.svc.CreateSale(ctx, 5, req)
			assert.ErrorIs(t, err, tt.wantErr)
			f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Zero(t, f.refresher.calls)
		})
	}
}

func TestSaleService_CreateSale_InsufficientStock(t *testing.T) {
	ctx := context.TODO()
	f := newSaleFixture()
	f.stockCatalog(ctx)
	f.sales.On("Create", ctx, mock.Anything).Return(fmt.Errorf("product 1: %w", utils.ErrInsufficientStock)).Once()

	_, err := f.svc.CreateSale(ctx, 5, scenarioRequest())
	assert.ErrorIs(t, err, utils.ErrInsufficientStock)
	assert.Zero(t, f.refresher.calls)
}

func TestSaleService_RecordSale_UnknownCustomer(t *testing.T) {
	ctx := context.TODO()
	f := newSaleFixture()
	f.customers.On("GetByID", ctx, 77).Return(nil, sql.ErrNoRows).Once()

	sale := &pricing.Sale{Items: []pricing.LineItem{{ProductID: 1, Name: "Knee Brace", UnitPrice: dec("100"), Quantity: 1}}}
	customerID := 77
	_, err := f.svc.RecordSale(ctx, 5, sale, SaleDetails{CustomerID: &customerID})
	assert.ErrorIs(t, err, utils.ErrCustomerNotFound)
	f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSaleService_RecordSale_TotalBelowOneCent(t *testing.T) {
	ctx := context.TODO()
	f := newSaleFixture()

	sale := &pricing.Sale{
		Items:        []pricing.LineItem{{ProductID: 1, Name: "Washer", UnitPrice: dec("0.01"), Quantity: 1}},
		DiscountRate: dec("0.9"),
	}
	require.True(t, sale.Totals().Total.IsPositive())

	_, err := f.svc.RecordSale(ctx, 5, sale, SaleDetails{})
	assert.ErrorIs(t, err, utils.ErrNonPositiveTotal)
	f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSaleService_GetSale_NotFound(t *testing.T) {
	ctx := context.TODO()
	f := newSaleFixture()
	f.sales.On("GetByID", ctx, 9).Return(nil, sql.ErrNoRows).Once()

	_, err := f.svc.GetSale(ctx, 9)
	assert.ErrorIs(t, err, utils.ErrSaleNotFound)
}
