package repository

import (
	"context"

	"github.com/GTDGit/taskify_api/internal/models"
)

// ProductStore is implemented by ProductRepository.
type ProductStore interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetAllPaged(ctx context.Context, f ProductFilter) ([]models.Product, int, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int) error
}

// CustomerStore is implemented by CustomerRepository.
type CustomerStore interface {
	GetAllPaged(ctx context.Context, f CustomerFilter) ([]models.Customer, int, error)
	GetByID(ctx context.Context, id int) (*models.Customer, error)
	Create(ctx context.Context, c *models.Customer) error
	Update(ctx context.Context, c *models.Customer) error
	Delete(ctx context.Context, id int) error
}

// SaleStore is implemented by SaleRepository.
type SaleStore interface {
	Create(ctx context.Context, s *models.Sale) error
	GetByID(ctx context.Context, id int) (*models.Sale, error)
	GetAllPaged(ctx context.Context, f SaleFilter) ([]models.Sale, int, error)
}

// AdminUserStore is implemented by AdminUserRepository.
type AdminUserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	GetByID(ctx context.Context, id int) (*models.AdminUser, error)
	GetAllPaged(ctx context.Context, f UserFilter) ([]models.AdminUser, int, error)
	Create(ctx context.Context, user *models.AdminUser) error
	Update(ctx context.Context, user *models.AdminUser) error
	Delete(ctx context.Context, id int) error
	CountActiveAdmins(ctx context.Context) (int, error)
}

var (
	_ ProductStore   = (*ProductRepository)(nil)
	_ CustomerStore  = (*CustomerRepository)(nil)
	_ SaleStore      = (*SaleRepository)(nil)
	_ AdminUserStore = (*AdminUserRepository)(nil)
)
