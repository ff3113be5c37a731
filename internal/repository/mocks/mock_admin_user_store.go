package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/repository"
)

type MockAdminUserStore struct {
	mock.Mock
}

func (m *MockAdminUserStore) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.AdminUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminUserStore) GetByID(ctx context.Context, id int) (*models.AdminUser, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.AdminUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminUserStore) GetAllPaged(ctx context.Context, f repository.UserFilter) ([]models.AdminUser, int, error) {
	args := m.Called(ctx, f)
	if u := args.Get(0); u != nil {
		return u.([]models.AdminUser), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockAdminUserStore) Create(ctx context.Context, user *models.AdminUser) error {
	args := m.Called(ctx, user)
	if user != nil && args.Error(0) == nil {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockAdminUserStore) Update(ctx context.Context, user *models.AdminUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAdminUserStore) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAdminUserStore) CountActiveAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
