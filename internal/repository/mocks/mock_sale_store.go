package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/repository"
)

type MockSaleStore struct {
	mock.Mock
}

func (m *MockSaleStore) Create(ctx context.Context, s *models.Sale) error {
	args := m.Called(ctx, s)
	if s != nil && args.Error(0) == nil {
		s.ID = 301
	}
	return args.Error(0)
}

func (m *MockSaleStore) GetByID(ctx context.Context, id int) (*models.Sale, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*models.Sale), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSaleStore) GetAllPaged(ctx context.Context, f repository.SaleFilter) ([]models.Sale, int, error) {
	args := m.Called(ctx, f)
	if s := args.Get(0); s != nil {
		return s.([]models.Sale), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}
