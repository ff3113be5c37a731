package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/taskify_api/internal/middleware"
	"github.com/GTDGit/taskify_api/internal/service"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// AlertHandler exposes the caller's stock alert session.
type AlertHandler struct {
	alertService *service.AlertService
}

// NewAlertHandler constructs an AlertHandler.
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// GetAlerts handles GET /v1/alerts
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.alertService.List(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Alerts retrieved successfully", alerts)
}

// CreateAlert handles POST /v1/alerts for general notices.
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var req service.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	a, err := h.alertService.Create(c.Request.Context(), middleware.Owner(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Alert created", a)
}

// Reconcile handles POST /v1/alerts/reconcile and returns the low-stock products.
func (h *AlertHandler) Reconcile(c *gin.Context) {
	low, err := h.alertService.Reconcile(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Alerts reconciled", low)
}

// DismissAlert handles DELETE /v1/alerts/:id
func (h *AlertHandler) DismissAlert(c *gin.Context) {
	if err := h.alertService.Dismiss(middleware.Owner(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Alert dismissed", nil)
}

// DismissAll handles DELETE /v1/alerts
func (h *AlertHandler) DismissAll(c *gin.Context) {
	h.alertService.DismissAll(middleware.Owner(c))
	utils.Success(c, http.StatusOK, "All alerts dismissed", nil)
}

// DismissForProduct handles DELETE /v1/alerts/product/:productId
func (h *AlertHandler) DismissForProduct(c *gin.Context) {
	productID, ok := pathInt(c, "productId")
	if !ok {
		return
	}
	n := h.alertService.DismissForProduct(middleware.Owner(c), productID)
	utils.Success(c, http.StatusOK, "Product alerts dismissed", gin.H{"dismissed": n})
}
