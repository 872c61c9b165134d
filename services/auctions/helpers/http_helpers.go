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
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrWalletNotFound):
		return http.StatusNotFound, "wallet not found"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for auction"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrSellerCannotBid):
		return http.StatusForbidden, "seller cannot bid on own auction"
	case errors.Is(err, auctionerrors.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient available balance"
	case errors.Is(err, auctionerrors.ErrAuctionNotActive):
		return http.StatusConflict, "auction is not active"
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		return http.StatusConflict, "auction has already ended"
	case errors.Is(err, auctionerrors.ErrAuctionEndedByTime):
		return http.StatusConflict, "auction end time has passed"
	case errors.Is(err, auctionerrors.ErrLockTimeout):
		return http.StatusServiceUnavailable, "auction is busy, retry shortly"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// ToBidResponse converts a bid model into its response DTO
func ToBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:       b.BidID,
		AuctionID:   b.AuctionID,
		BidderID:    b.BidderID,
		AmountCents: b.AmountCents,
		MaxBidCents: b.MaxBidCents,
		IsWinning:   b.IsWinning,
		IsAutomatic: b.IsAutomatic,
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToAuctionResponse converts an auction model into its response DTO
func ToAuctionResponse(a model.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:          a.AuctionID,
		SellerID:           a.SellerID,
		Title:              a.Title,
		StartingPriceCents: a.StartingPriceCents,
		CurrentPriceCents:  a.CurrentPriceCents,
		BidIncrementCents:  a.BidIncrementCents,
		Status:             string(a.Status),
		WinnerID:           a.WinnerID,
		WinningBidID:       a.WinningBidID,
		BidCount:           a.BidCount,
		EndTime:            a.EndTime.UTC().Format(time.RFC3339),
	}
}
