package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/taskify_api/internal/middleware"
	"github.com/GTDGit/taskify_api/internal/service"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// DraftHandler exposes the sale calculator on server-held drafts.
type DraftHandler struct {
	draftService *service.DraftService
}

// NewDraftHandler constructs a DraftHandler.
func NewDraftHandler(draftService *service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

func (h *DraftHandler) CreateDraft(c *gin.Context) {
	d, err := h.draftService.CreateDraft(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Draft created successfully", d)
}

func (h *DraftHandler) GetDraft(c *gin.Context) {
	d, err := h.draftService.GetDraft(c.Request.Context(), middleware.Owner(c), c.Param("draftId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Draft retrieved successfully", d)
}

func (h *DraftHandler) DiscardDraft(c *gin.Context) {
	if err := h.draftService.Discard(c.Request.Context(), middleware.Owner(c), c.Param("draftId")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Draft discarded", nil)
}

// AddItem handles POST /v1/sales/drafts/:draftId/items {"productId": 1}
func (h *DraftHandler) AddItem(c *gin.Context) {
	var req struct {
		ProductID int `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId is required")
		return
	}
	d, err := h.draftService.AddProduct(c.Request.Context(), middleware.Owner(c), c.Param("draftId"), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Item added", d)
}

// SetQuantity handles PUT /v1/sales/drafts/:draftId/items/:index {"quantity": 3}
func (h *DraftHandler) SetQuantity(c *gin.Context) {
	index, ok := pathInt(c, "index")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	d, err := h.draftService.SetQuantity(c.Request.Context(), middleware.Owner(c), c.Param("draftId"), index, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Quantity updated", d)
}

func (h *DraftHandler) RemoveItem(c *gin.Context) {
	index, ok := pathInt(c, "index")
	if !ok {
		return
	}
	d, err := h.draftService.RemoveItem(c.Request.Context(), middleware.Owner(c), c.Param("draftId"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Item removed", d)
}

func (h *DraftHandler) SetRates(c *gin.Context) {
	var req service.RatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	d, err := h.draftService.SetRates(c.Request.Context(), middleware.Owner(c), c.Param("draftId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Rates updated", d)
}

func (h *DraftHandler) SetDetails(c *gin.Context) {
	var req service.SaleDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	d, err := h.draftService.SetDetails(c.Request.Context(), middleware.Owner(c), c.Param("draftId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Details updated", d)
}

func (h *DraftHandler) SubmitDraft(c *gin.Context) {
	sale, err := h.draftService.Submit(c.Request.Context(), middleware.Owner(c), c.Param("draftId"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Sale created successfully", sale)
}
