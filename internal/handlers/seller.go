// internal/handlers/seller.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gamevault/gamevault-backend/internal/services"
	"github.com/gamevault/gamevault-backend/internal/utils"
)

type SellerHandler struct {
	withdrawalService *services.WithdrawalService
}

func NewSellerHandler(withdrawalService *services.WithdrawalService) *SellerHandler {
	return &SellerHandler{withdrawalService: withdrawalService}
}

type RequestWithdrawalRequest struct {
	Amount      string `json:"amount" validate:"required"`
	GcashNumber string `json:"gcash_number" validate:"required,gcash_number"`
}

// GET /seller/balance
func (h *SellerHandler) GetBalance(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	balance, err := h.withdrawalService.GetBalance(c.Request.Context(), sellerID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, balance)
}

// POST /seller/withdrawals
func (h *SellerHandler) RequestWithdrawal(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		utils.BadRequestResponse(c, "Invalid amount", nil)
		return
	}

	withdrawal, err := h.withdrawalService.Request(c.Request.Context(), sellerID, amount, req.GcashNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, withdrawal)
}

// GET /seller/withdrawals
func (h *SellerHandler) GetMyWithdrawals(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	withdrawals, err := h.withdrawalService.ListForSeller(c.Request.Context(), sellerID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, withdrawals)
}
