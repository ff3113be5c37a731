package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/taskify_api/internal/middleware"
	"github.com/GTDGit/taskify_api/internal/repository"
	"github.com/GTDGit/taskify_api/internal/service"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// SaleHandler handles recorded sales.
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler constructs a SaleHandler.
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// GetSales handles GET /v1/sales?customerId=&page=&limit=
func (h *SaleHandler) GetSales(c *gin.Context) {
	page, limit := utils.ParsePagination(c)
	f := repository.SaleFilter{Page: page, Limit: limit}
	if v := c.Query("customerId"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(c, "Invalid customerId")
			return
		}
		f.CustomerID = n
	}

	sales, total, err := h.saleService.ListSales(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Sales retrieved successfully", sales, page, limit, total)
}

// GetSale handles GET /v1/sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Sale retrieved successfully", sale)
}

// CreateSale handles POST /v1/sales. Totals are recomputed server-side.
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req service.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	sale, err := h.saleService.CreateSale(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Sale created successfully", sale)
}
