package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/taskify_api/internal/repository"
	"github.com/GTDGit/taskify_api/internal/service"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// CustomerHandler handles customer endpoints.
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// GetCustomers handles GET /v1/customers?search=&page=&limit=
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	page, limit := utils.ParsePagination(c)
	customers, total, err := h.customerService.ListCustomers(c.Request.Context(), repository.CustomerFilter{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Customers retrieved successfully", customers, page, limit, total)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Customer retrieved successfully", customer)
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	customer, err := h.customerService.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Customer created successfully", customer)
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Customer updated successfully", customer)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Customer deleted successfully", nil)
}
