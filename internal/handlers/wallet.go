// internal/handlers/wallet.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gamevault/gamevault-backend/internal/services"
	"github.com/gamevault/gamevault-backend/internal/utils"
)

type WalletHandler struct {
	paymentService *services.PaymentService
	storageService *services.StorageService
}

func NewWalletHandler(paymentService *services.PaymentService, storageService *services.StorageService) *WalletHandler {
	return &WalletHandler{
		paymentService: paymentService,
		storageService: storageService,
	}
}

type SubmitTopUpRequest struct {
	Amount      string `json:"amount" validate:"required"`
	ReferenceNo string `json:"reference_no" validate:"required,min=4,max=64"`
	ReceiptURL  string `json:"receipt_url" validate:"max=512"`
}

// GET /wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	wallet, err := h.paymentService.GetWallet(c.Request.Context(), userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, wallet)
}

// POST /wallet/topups
func (h *WalletHandler) SubmitTopUp(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SubmitTopUpRequest
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

	payment, err := h.paymentService.SubmitTopUp(c.Request.Context(), userID, amount, req.ReferenceNo, req.ReceiptURL)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, payment)
}

// GET /wallet/topups
func (h *WalletHandler) GetMyTopUps(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	payments, err := h.paymentService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, payments)
}

// POST /uploads — receipt screenshots and listing images.
func (h *WalletHandler) UploadFile(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "file is required", nil)
		return
	}
	defer file.Close()

	category := c.DefaultPostForm("category", "receipts")
	options := h.storageService.GetDefaultUploadOptions(category)

	if err := h.storageService.ValidateImage(file); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, result)
}
