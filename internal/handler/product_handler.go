package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/taskify_api/internal/repository"
	"github.com/GTDGit/taskify_api/internal/service"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// ProductHandler handles product-related HTTP endpoints.
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GetProducts handles GET /v1/products?search=&category=&page=&limit=
func (h *ProductHandler) GetProducts(c *gin.Context) {
	page, limit := utils.ParsePagination(c)
	products, total, err := h.productService.ListProducts(c.Request.Context(), repository.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", products, page, limit, total)
}

// GetLowStock handles GET /v1/products/low-stock
func (h *ProductHandler) GetLowStock(c *gin.Context) {
	products, err := h.productService.ListLowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Low stock products retrieved successfully", products)
}

// GetProduct handles GET /v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	p, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved successfully", p)
}

// CreateProduct handles POST /v1/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	p, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Product created successfully", p)
}

// UpdateProduct handles PUT /v1/products/:id (partial update)
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	p, err := h.productService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product updated successfully", p)
}

// DeleteProduct handles DELETE /v1/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product deleted successfully", nil)
}
