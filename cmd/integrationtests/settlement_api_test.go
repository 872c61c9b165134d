package integrationtests

import (
	"net/http"
	"testing"
	"time"

	model "auction-house/internal/models"
	"auction-house/internal/repository"
	settlementhelpers "auction-house/services/settlement/helpers"

	"github.com/stretchr/testify/require"
)

// seedSettledSale puts an order and its holding escrow directly into
// the store, as if an auction had just settled.
func seedSettledSale(store *repository.MemoryStore, orderID, escrowID string, amountCents int64) {
	now := time.Now().UTC()
	store.AddWallet(model.Wallet{UserID: "buyer1"})
	store.AddWallet(model.Wallet{UserID: "seller1"})
	store.AddOrder(model.Order{
		OrderID:     orderID,
		BuyerID:     "buyer1",
		SellerID:    "seller1",
		AmountCents: amountCents,
		Status:      model.OrderPaid,
		CreatedAt:   now,
	})
	store.AddEscrow(model.Escrow{
		EscrowID:    escrowID,
		OrderID:     orderID,
		BuyerID:     "buyer1",
		SellerID:    "seller1",
		AmountCents: amountCents,
		Status:      model.EscrowHolding,
		ReleaseDate: now.Add(7 * 24 * time.Hour),
		CreatedAt:   now,
	})
}

// A dispute freezes the escrow so neither confirmation nor manual
// release can move the funds.
func TestSettlementFlow_Dispute(t *testing.T) {
	router, store := SetupTestEnv()
	seedSettledSale(store, "order1", "escrow1", 1500)

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/orders/order1/dispute", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := ResponseData(t, resp)
	require.Equal(t, "disputed", data["status"])
	require.NotEmpty(t, data["dispute_id"])

	// the frozen escrow rejects every release path
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/orders/order1/confirm-delivery", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/escrows/escrow1/release", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// a second dispute is also a conflict
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/orders/order1/dispute", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// seller never saw the money
	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/wallets/seller1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = ResponseData(t, resp)
	require.Equal(t, float64(0), data["total_cents"])
}

// Manual release pays the seller and closes the order.
func TestSettlementFlow_ManualRelease(t *testing.T) {
	router, store := SetupTestEnv()
	seedSettledSale(store, "order1", "escrow1", 2500)

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/escrows/escrow1/release", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := ResponseData(t, resp)
	require.Equal(t, "released", data["status"])
	require.Equal(t, "manual_release", data["release_reason"])

	// a second release is a conflict
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/escrows/escrow1/release", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/wallets/seller1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = ResponseData(t, resp)
	require.Equal(t, float64(2500), data["available_cents"])
}

// Withdrawal lifecycle over HTTP: request, reject, request, approve.
func TestSettlementFlow_Withdrawals(t *testing.T) {
	router, store := SetupTestEnv()
	store.AddWallet(model.Wallet{UserID: "seller1", TotalCents: 5000, AvailableCents: 5000})

	// request more than available
	_, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/withdrawals",
		settlementhelpers.RequestWithdrawalRequest{SellerID: "seller1", AmountCents: 9000})
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	// request a valid amount
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/withdrawals",
		settlementhelpers.RequestWithdrawalRequest{SellerID: "seller1", AmountCents: 2000})
	require.Equal(t, http.StatusCreated, w.Code)
	data := ResponseData(t, resp)
	require.Equal(t, "pending", data["status"])
	firstID := data["withdrawal_id"].(string)

	// the hold moved funds out of the spendable balance
	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/wallets/seller1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = ResponseData(t, resp)
	require.Equal(t, float64(3000), data["available_cents"])
	require.Equal(t, float64(2000), data["pending_withdrawal_cents"])

	// reject it, funds come back
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/withdrawals/"+firstID+"/reject",
		settlementhelpers.RejectWithdrawalRequest{Note: "bank account mismatch"})
	require.Equal(t, http.StatusOK, w.Code)
	data = ResponseData(t, resp)
	require.Equal(t, "rejected", data["status"])
	require.Equal(t, "bank account mismatch", data["note"])

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/wallets/seller1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = ResponseData(t, resp)
	require.Equal(t, float64(5000), data["available_cents"])
	require.Equal(t, float64(0), data["pending_withdrawal_cents"])

	// rejecting again is a conflict
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/withdrawals/"+firstID+"/reject",
		settlementhelpers.RejectWithdrawalRequest{})
	require.Equal(t, http.StatusConflict, w.Code)

	// request again and approve, the payout leaves the wallet
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/withdrawals",
		settlementhelpers.RequestWithdrawalRequest{SellerID: "seller1", AmountCents: 2000})
	require.Equal(t, http.StatusCreated, w.Code)
	secondID := ResponseData(t, resp)["withdrawal_id"].(string)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/withdrawals/"+secondID+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = ResponseData(t, resp)
	require.Equal(t, "approved", data["status"])
	require.NotEmpty(t, data["resolved_at"])

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/wallets/seller1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = ResponseData(t, resp)
	require.Equal(t, float64(3000), data["total_cents"])
	require.Equal(t, float64(3000), data["available_cents"])
	require.Equal(t, float64(0), data["pending_withdrawal_cents"])
}
