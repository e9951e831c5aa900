// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/gamevault/gamevault-backend/internal/services"
	"github.com/gamevault/gamevault-backend/internal/utils"
)

type AdminHandler struct {
	paymentService    *services.PaymentService
	withdrawalService *services.WithdrawalService
}

func NewAdminHandler(paymentService *services.PaymentService, withdrawalService *services.WithdrawalService) *AdminHandler {
	return &AdminHandler{
		paymentService:    paymentService,
		withdrawalService: withdrawalService,
	}
}

type ReviewRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}

// GET /admin/payments/pending
func (h *AdminHandler) GetPendingPayments(c *gin.Context) {
	payments, err := h.paymentService.ListPending(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, payments)
}

// POST /admin/payments/:id/approve
func (h *AdminHandler) ApprovePayment(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	c.ShouldBindJSON(&req)

	payment, err := h.paymentService.Approve(c.Request.Context(), adminID, id, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, payment)
}

// POST /admin/payments/:id/reject
func (h *AdminHandler) RejectPayment(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	c.ShouldBindJSON(&req)

	payment, err := h.paymentService.Reject(c.Request.Context(), adminID, id, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, payment)
}

// GET /admin/withdrawals/pending
func (h *AdminHandler) GetPendingWithdrawals(c *gin.Context) {
	withdrawals, err := h.withdrawalService.ListPending(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, withdrawals)
}

// POST /admin/withdrawals/:id/pay
func (h *AdminHandler) MarkWithdrawalPaid(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	c.ShouldBindJSON(&req)

	withdrawal, err := h.withdrawalService.MarkPaid(c.Request.Context(), adminID, id, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, withdrawal)
}

// POST /admin/withdrawals/:id/reject
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	c.ShouldBindJSON(&req)

	withdrawal, err := h.withdrawalService.Reject(c.Request.Context(), adminID, id, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, withdrawal)
}
