package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/repository"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// CustomerService handles customer business logic.
type CustomerService struct {
	customerRepo repository.CustomerStore
}

// NewCustomerService constructs a CustomerService.
func NewCustomerService(customerRepo repository.CustomerStore) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CustomerRequest is the payload for creating or replacing a customer.
type CustomerRequest struct {
	Name            string                 `json:"name"`
	Age             int                    `json:"age"`
	Gender          models.Gender          `json:"gender"`
	Phone           string                 `json:"phone"`
	Email           string                 `json:"email"`
	Address         models.Address         `json:"address"`
	DoctorReference models.DoctorReference `json:"doctorReference"`
	MedicalHistory  string                 `json:"medicalHistory"`
}

func (r *CustomerRequest) apply(c *models.Customer) {
	c.Name = strings.TrimSpace(r.Name)
	c.Age = r.Age
	c.Gender = r.Gender
	c.Phone = strings.TrimSpace(r.Phone)
	c.Email = strings.TrimSpace(r.Email)
	c.Address = r.Address
	c.DoctorReference = r.DoctorReference
	c.MedicalHistory = r.MedicalHistory
}

// ListCustomers returns a page of customers matching the search.
func (s *CustomerService) ListCustomers(ctx context.Context, f repository.CustomerFilter) ([]models.Customer, int, error) {
	return s.customerRepo.GetAllPaged(ctx, f)
}

// GetCustomer returns a customer by id.
func (s *CustomerService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	c, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.ErrCustomerNotFound
		}
		return nil, err
	}
	return c, nil
}

// CreateCustomer validates and stores a new customer.
func (s *CustomerService) CreateCustomer(ctx context.Context, req *CustomerRequest) (*models.Customer, error) {
	c := &models.Customer{}
	req.apply(c)
	if err := validateCustomer(c); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	log.Info().Int("customer_id", c.ID).Msg("Customer created")
	return c, nil
}

// UpdateCustomer replaces a customer's details.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int, req *CustomerRequest) (*models.Customer, error) {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(c)
	if err := validateCustomer(c); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Update(ctx, c); err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// DeleteCustomer removes a customer.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return utils.ErrCustomerNotFound
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func validateCustomer(c *models.Customer) error {
	switch {
	case c.Name == "":
		return utils.Invalid("name", "is required")
	case c.Age <= 0:
		return utils.Invalid("age", "must be greater than 0")
	case !c.Gender.Valid():
		return utils.Invalid("gender", "must be one of Male, Female, Other")
	case c.Phone == "":
		return utils.Invalid("phone", "is required")
	}
	return nil
}
