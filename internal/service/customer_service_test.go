package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/repository/mocks"
	"github.com/GTDGit/taskify_api/internal/utils"
)

func validCustomerRequest() *CustomerRequest {
	return &CustomerRequest{
		Name:   "  Asha Rao ",
		Age:    42,
		Gender: models.GenderFemale,
		Phone:  "+91 98450 00000",
		Address: models.Address{
			City:    "Bengaluru",
			Country: "India",
		},
	}
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	ctx := context.TODO()
	repo := new(mocks.MockCustomerStore)
	svc := NewCustomerService(repo)

	repo.On("Create", ctx, mock.MatchedBy(func(c *models.Customer) bool {
		return c.Name == "Asha Rao" && c.Address.City == "Bengaluru"
	})).Return(nil).Once()

	c, err := svc.CreateCustomer(ctx, validCustomerRequest())
	require.NoError(t, err)
	assert.Equal(t, 201, c.ID)
	repo.AssertExpectations(t)
}

func TestCustomerService_CreateCustomerValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CustomerRequest)
		field  string
	}{
		{"blank name", func(r *CustomerRequest) { r.Name = "   " }, "name"},
		{"zero age", func(r *CustomerRequest) { r.Age = 0 }, "age"},
		{"unknown gender", func(r *CustomerRequest) { r.Gender = "Unknown" }, "gender"},
		{"missing phone", func(r *CustomerRequest) { r.Phone = "" }, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockCustomerStore)
			svc := NewCustomerService(repo)

			req := validCustomerRequest()
			tt.mutate(req)
			_, err := svc.CreateCustomer(context.TODO(), req)

			var verr *utils.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, utils.ErrValidation)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCustomerService_NotFound(t *testing.T) {
	ctx := context.TODO()
	repo := new(mocks.MockCustomerStore)
	svc := NewCustomerService(repo)

	repo.On("GetByID", ctx, 9).Return(nil, sql.ErrNoRows)
	repo.On("Delete", ctx, 9).Return(sql.ErrNoRows)

	_, err := svc.GetCustomer(ctx, 9)
	assert.ErrorIs(t, err, utils.ErrCustomerNotFound)

	_, err = svc.UpdateCustomer(ctx, 9, validCustomerRequest())
	assert.ErrorIs(t, err, utils.ErrCustomerNotFound)

	assert.ErrorIs(t, svc.DeleteCustomer(ctx, 9), utils.ErrCustomerNotFound)
}

func TestCustomerService_UpdateCustomer(t *testing.T) {
	ctx := context.TODO()
	repo := new(mocks.MockCustomerStore)
	svc := NewCustomerService(repo)

	repo.On("GetByID", ctx, 4).Return(&models.Customer{ID: 4, Name: "Old", Age: 30, Gender: models.GenderMale, Phone: "1"}, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(c *models.Customer) bool {
		return c.ID == 4 && c.Name == "Asha Rao" && c.Gender == models.GenderFemale
	})).Return(nil).Once()

	c, err := svc.UpdateCustomer(ctx, 4, validCustomerRequest())
	require.NoError(t, err)
	assert.Equal(t, 42, c.Age)
	repo.AssertExpectations(t)
}
