package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/repository"
)

type MockCustomerStore struct {
	mock.Mock
}

func (m *MockCustomerStore) GetAllPaged(ctx context.Context, f repository.CustomerFilter) ([]models.Customer, int, error) {
	args := m.Called(ctx, f)
	if c := args.Get(0); c != nil {
		return c.([]models.Customer), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockCustomerStore) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerStore) Create(ctx context.Context, c *models.Customer) error {
	args := m.Called(ctx, c)
	if c != nil && args.Error(0) == nil {
		c.ID = 201
	}
	return args.Error(0)
}

func (m *MockCustomerStore) Update(ctx context.Context, c *models.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerStore) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
