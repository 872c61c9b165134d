package handler

import (
	"context"
	"fmt"
	"net/http"

	model "auction-house/internal/models"
	"auction-house/services/settlement/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type SettlementServiceInterface interface {
	ConfirmDelivery(ctx context.Context, orderID string) (model.Escrow, error)
	LockFundsForDispute(ctx context.Context, orderID string) (model.Escrow, error)
	ReleaseEscrow(ctx context.Context, escrowID string) (model.Escrow, error)
	RequestWithdrawal(ctx context.Context, sellerID string, amountCents int64) (model.Withdrawal, error)
	ApproveWithdrawal(ctx context.Context, withdrawalID string) (model.Withdrawal, error)
	RejectWithdrawal(ctx context.Context, withdrawalID, note string) (model.Withdrawal, error)
}

type SettlementHandler struct {
	service SettlementServiceInterface
}

func NewSettlementHandler(service SettlementServiceInterface) *SettlementHandler {
	return &SettlementHandler{service: service}
}

// ConfirmDeliveryHandler handles POST /orders/:order_id/confirm-delivery
func (h *SettlementHandler) ConfirmDeliveryHandler(c *gin.Context) {
	orderID := c.Param("order_id")

	escrow, err := h.service.ConfirmDelivery(c.Request.Context(), orderID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("ConfirmDeliveryHandler: failed to confirm delivery", map[string]any{
			"handler":  "ConfirmDeliveryHandler",
			"order_id": orderID,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToEscrowResponse(escrow), "delivery confirmed, escrow released")
	helpers.LogSuccess("ConfirmDeliveryHandler", "delivery confirmed, escrow released", map[string]any{
		"order_id":  orderID,
		"escrow_id": escrow.EscrowID,
	})
}

// OpenDisputeHandler handles POST /orders/:order_id/dispute
func (h *SettlementHandler) OpenDisputeHandler(c *gin.Context) {
	orderID := c.Param("order_id")

	escrow, err := h.service.LockFundsForDispute(c.Request.Context(), orderID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("OpenDisputeHandler: failed to open dispute", map[string]any{
			"handler":  "OpenDisputeHandler",
			"order_id": orderID,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToEscrowResponse(escrow), "dispute opened, funds locked")
	helpers.LogSuccess("OpenDisputeHandler", "dispute opened, funds locked", map[string]any{
		"order_id":   orderID,
		"escrow_id":  escrow.EscrowID,
		"dispute_id": escrow.DisputeID,
	})
}

// ReleaseEscrowHandler handles POST /escrows/:escrow_id/release
func (h *SettlementHandler) ReleaseEscrowHandler(c *gin.Context) {
	escrowID := c.Param("escrow_id")

	escrow, err := h.service.ReleaseEscrow(c.Request.Context(), escrowID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("ReleaseEscrowHandler: failed to release escrow", map[string]any{
			"handler":   "ReleaseEscrowHandler",
			"escrow_id": escrowID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToEscrowResponse(escrow), "escrow released successfully")
	helpers.LogSuccess("ReleaseEscrowHandler", "escrow released successfully", map[string]any{
		"escrow_id": escrowID,
		"seller_id": escrow.SellerID,
	})
}

// RequestWithdrawalHandler handles POST /withdrawals
func (h *SettlementHandler) RequestWithdrawalHandler(c *gin.Context) {
	var req helpers.RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RequestWithdrawalHandler", err)
		return
	}

	wd, err := h.service.RequestWithdrawal(c.Request.Context(), req.SellerID, req.AmountCents)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("RequestWithdrawalHandler: failed to request withdrawal", map[string]any{
			"handler":   "RequestWithdrawalHandler",
			"seller_id": req.SellerID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToWithdrawalResponse(wd), "withdrawal requested successfully")
	helpers.LogSuccess("RequestWithdrawalHandler", "withdrawal requested successfully", map[string]any{
		"withdrawal_id": wd.WithdrawalID,
		"seller_id":     req.SellerID,
		"amount_cents":  wd.AmountCents,
	})
}

// ApproveWithdrawalHandler handles POST /withdrawals/:withdrawal_id/approve
func (h *SettlementHandler) ApproveWithdrawalHandler(c *gin.Context) {
	withdrawalID := c.Param("withdrawal_id")

	wd, err := h.service.ApproveWithdrawal(c.Request.Context(), withdrawalID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("ApproveWithdrawalHandler: failed to approve withdrawal", map[string]any{
			"handler":       "ApproveWithdrawalHandler",
			"withdrawal_id": withdrawalID,
			"error":         err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToWithdrawalResponse(wd), "withdrawal approved successfully")
	helpers.LogSuccess("ApproveWithdrawalHandler", "withdrawal approved successfully", map[string]any{
		"withdrawal_id": withdrawalID,
		"seller_id":     wd.SellerID,
	})
}

// RejectWithdrawalHandler handles POST /withdrawals/:withdrawal_id/reject
func (h *SettlementHandler) RejectWithdrawalHandler(c *gin.Context) {
	withdrawalID := c.Param("withdrawal_id")

	var req helpers.RejectWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RejectWithdrawalHandler", err)
		return
	}

	wd, err := h.service.RejectWithdrawal(c.Request.Context(), withdrawalID, req.Note)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("RejectWithdrawalHandler: failed to reject withdrawal", map[string]any{
			"handler":       "RejectWithdrawalHandler",
			"withdrawal_id": withdrawalID,
			"error":         err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToWithdrawalResponse(wd), "withdrawal rejected successfully")
	helpers.LogSuccess("RejectWithdrawalHandler", "withdrawal rejected successfully", map[string]any{
		"withdrawal_id": withdrawalID,
		"seller_id":     wd.SellerID,
	})
}
