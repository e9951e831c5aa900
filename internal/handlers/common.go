// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gamevault/gamevault-backend/internal/apperrors"
	"github.com/gamevault/gamevault-backend/internal/utils"
)

// currentUserID pulls the authenticated user out of the gin context. Handlers
// behind AuthRequired can rely on it being present.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return userID, true
}

func parseUUIDField(c *gin.Context, value, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service-layer errors onto HTTP statuses:
// not-found -> 404, ownership violations -> 403, bad transitions -> 409,
// insufficient funds/balance -> 400 with the exact numbers in details.
func respondServiceError(c *gin.Context, err error) {
	var notFound *apperrors.NotFoundError
	var insufficientFunds *apperrors.InsufficientFundsError
	var insufficientBalance *apperrors.InsufficientBalanceError

	switch {
	case errors.As(err, &notFound):
		utils.NotFoundResponse(c, notFound.Resource)
	case errors.Is(err, apperrors.ErrUnauthorized):
		utils.ForbiddenResponse(c, err.Error())
	case apperrors.IsInvalidState(err):
		utils.ConflictResponse(c, err.Error())
	case errors.As(err, &insufficientFunds):
		utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_FUNDS", err.Error(), gin.H{
			"required":  insufficientFunds.Required,
			"available": insufficientFunds.Available,
		})
	case errors.As(err, &insufficientBalance):
		utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_BALANCE", err.Error(), gin.H{
			"requested": insufficientBalance.Requested,
			"available": insufficientBalance.Available,
		})
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
