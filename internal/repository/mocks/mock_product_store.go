package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/repository"
)

type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) GetAllPaged(ctx context.Context, f repository.ProductFilter) ([]models.Product, int, error) {
	args := m.Called(ctx, f)
	if p := args.Get(0); p != nil {
		return p.([]models.Product), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockProductStore) ListLowStock(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) GetByID(ctx context.Context, id int) (*models.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) Create(ctx context.Context, p *models.Product) error {
	args := m.Called(ctx, p)
	if p != nil && args.Error(0) == nil {
		p.ID = 101
	}
	return args.Error(0)
}

func (m *MockProductStore) Update(ctx context.Context, p *models.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductStore) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
