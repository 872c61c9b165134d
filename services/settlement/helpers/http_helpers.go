package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, auctionerrors.ErrEscrowNotFound):
		return http.StatusNotFound, "escrow not found"
	case errors.Is(err, auctionerrors.ErrWithdrawalNotFound):
		return http.StatusNotFound, "withdrawal not found"
	case errors.Is(err, auctionerrors.ErrWalletNotFound):
		return http.StatusNotFound, "wallet not found"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid request details"
	case errors.Is(err, auctionerrors.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient available balance"
	case errors.Is(err, auctionerrors.ErrEscrowAlreadyReleased):
		return http.StatusConflict, "escrow has already been released"
	case errors.Is(err, auctionerrors.ErrEscrowNotHolding):
		return http.StatusConflict, "escrow is not holding funds"
	case errors.Is(err, auctionerrors.ErrWithdrawalNotPending):
		return http.StatusConflict, "withdrawal is not pending"
	case errors.Is(err, auctionerrors.ErrLockTimeout):
		return http.StatusServiceUnavailable, "resource is busy, retry shortly"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// ToEscrowResponse converts an escrow model into its response DTO
func ToEscrowResponse(e model.Escrow) EscrowResponse {
	resp := EscrowResponse{
		EscrowID:      e.EscrowID,
		OrderID:       e.OrderID,
		BuyerID:       e.BuyerID,
		SellerID:      e.SellerID,
		AmountCents:   e.AmountCents,
		Status:        string(e.Status),
		ReleaseDate:   e.ReleaseDate.UTC().Format(time.RFC3339),
		ReleaseReason: e.ReleaseReason,
		DisputeID:     e.DisputeID,
	}
	if e.ReleasedAt != nil {
		resp.ReleasedAt = e.ReleasedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// ToWithdrawalResponse converts a withdrawal model into its response DTO
func ToWithdrawalResponse(wd model.Withdrawal) WithdrawalResponse {
	resp := WithdrawalResponse{
		WithdrawalID: wd.WithdrawalID,
		SellerID:     wd.SellerID,
		AmountCents:  wd.AmountCents,
		Status:       string(wd.Status),
		Note:         wd.Note,
		CreatedAt:    wd.CreatedAt.UTC().Format(time.RFC3339),
	}
	if wd.ResolvedAt != nil {
		resp.ResolvedAt = wd.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
