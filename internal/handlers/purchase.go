// internal/handlers/purchase.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/gamevault/gamevault-backend/internal/models"
	"github.com/gamevault/gamevault-backend/internal/services"
	"github.com/gamevault/gamevault-backend/internal/utils"
)

type PurchaseHandler struct {
	purchaseService *services.PurchaseService
}

func NewPurchaseHandler(purchaseService *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

type CreatePurchaseRequest struct {
	ListingID string `json:"listing_id" validate:"required,uuid"`
}

type UpdatePurchaseStatusRequest struct {
	Status         string `json:"status" validate:"required,oneof=completed cancelled"`
	AccountDetails string `json:"account_details"`
}

// POST /purchases
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	listingID, ok := parseUUIDField(c, req.ListingID, "listing_id")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.Create(c.Request.Context(), buyerID, listingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, purchase)
}

// GET /purchases
func (h *PurchaseHandler) GetMyPurchases(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}

	purchases, err := h.purchaseService.ListForBuyer(c.Request.Context(), buyerID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, purchases)
}

// GET /purchases/:id
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	role, _ := utils.GetUserRoleFromContext(c)

	purchase, err := h.purchaseService.GetByID(c.Request.Context(), userID, models.UserRole(role), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, purchase)
}

// PUT /purchases/:id/status — the seller either delivers the account details
// (completed) or declines the order (cancelled, refunding the buyer).
func (h *PurchaseHandler) UpdatePurchaseStatus(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePurchaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	var purchase *models.Purchase
	var err error

	switch models.PurchaseStatus(req.Status) {
	case models.PurchaseStatusCompleted:
		purchase, err = h.purchaseService.Fulfill(c.Request.Context(), sellerID, id, req.AccountDetails)
	case models.PurchaseStatusCancelled:
		purchase, err = h.purchaseService.Cancel(c.Request.Context(), sellerID, id)
	default:
		utils.BadRequestResponse(c, "Unsupported status", nil)
		return
	}

	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, purchase)
}

// POST /purchases/:id/confirm
func (h *PurchaseHandler) ConfirmPurchase(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.Confirm(c.Request.Context(), buyerID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, purchase)
}

// GET /sales — the seller's side of the order book.
func (h *PurchaseHandler) GetMySales(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	sales, err := h.purchaseService.ListForSeller(c.Request.Context(), sellerID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, sales)
}
