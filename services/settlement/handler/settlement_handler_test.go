package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/services/settlement/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Test ConfirmDeliveryHandler
func TestConfirmDeliveryHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockSettlementServiceInterface(ctrl)
	handler := NewSettlementHandler(mockService)

	// Initialize Gin in test mode
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/orders/:order_id/confirm-delivery", handler.ConfirmDeliveryHandler)

	now := time.Now().UTC()

	tests := []struct {
		name           string
		orderID        string
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name:    "success_releases_escrow",
			orderID: "order1",
			mockSetup: func() {
				mockService.EXPECT().
					ConfirmDelivery(gomock.Any(), "order1").
					Return(model.Escrow{
						EscrowID:      uuid.NewString(),
						OrderID:       "order1",
						BuyerID:       "bob",
						SellerID:      "seller1",
						AmountCents:   1500,
						Status:        model.EscrowReleased,
						ReleaseDate:   now,
						ReleaseReason: model.ReleaseDeliveryConfirmed,
						ReleasedAt:    &now,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "delivery confirmed, escrow released",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "order1", data["order_id"])
				require.Equal(t, "released", data["status"])
				require.Equal(t, "delivery_confirmed", data["release_reason"])
				require.NotEmpty(t, data["released_at"])
			},
		},
		{
			name:    "order_not_found",
			orderID: "ghost",
			mockSetup: func() {
				mockService.EXPECT().
					ConfirmDelivery(gomock.Any(), "ghost").
					Return(model.Escrow{}, auctionerrors.ErrOrderNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "order not found",
		},
		{
			name:    "escrow_already_released",
			orderID: "order2",
			mockSetup: func() {
				mockService.EXPECT().
					ConfirmDelivery(gomock.Any(), "order2").
					Return(model.Escrow{}, auctionerrors.ErrEscrowAlreadyReleased)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "escrow has already been released",
		},
		{
			name:    "escrow_disputed",
			orderID: "order3",
			mockSetup: func() {
				mockService.EXPECT().
					ConfirmDelivery(gomock.Any(), "order3").
					Return(model.Escrow{}, auctionerrors.ErrEscrowNotHolding)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "escrow is not holding funds",
		},
		{
			name:    "service_generic_error",
			orderID: "order4",
			mockSetup: func() {
				mockService.EXPECT().
					ConfirmDelivery(gomock.Any(), "order4").
					Return(model.Escrow{}, errors.New("database failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%s/confirm-delivery", tc.orderID), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			err := json.Unmarshal(w.Body.Bytes(), &resp)
			require.NoError(t, err)

			require.Contains(t, resp["message"], tc.expectedMsg)

			if tc.validateData != nil && w.Code == http.StatusOK {
				data := resp["data"].(map[string]any)
				tc.validateData(t, data)
			}
		})
	}
}

// Test OpenDisputeHandler
func TestOpenDisputeHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockSettlementServiceInterface(ctrl)
	handler := NewSettlementHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/orders/:order_id/dispute", handler.OpenDisputeHandler)

	now := time.Now().UTC()

	tests := []struct {
		name           string
		orderID        string
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name:    "success_locks_funds",
			orderID: "order1",
			mockSetup: func() {
				mockService.EXPECT().
					LockFundsForDispute(gomock.Any(), "order1").
					Return(model.Escrow{
						EscrowID:    uuid.NewString(),
						OrderID:     "order1",
						BuyerID:     "bob",
						SellerID:    "seller1",
						AmountCents: 1500,
						Status:      model.EscrowDisputed,
						ReleaseDate: now,
						DisputeID:   uuid.NewString(),
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "dispute opened, funds locked",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "disputed", data["status"])
				disputeID := data["dispute_id"].(string)
				_, err := uuid.Parse(disputeID)
				require.NoError(t, err, "DisputeID should be a valid UUID")
			},
		},
		{
			name:    "already_released",
			orderID: "order2",
			mockSetup: func() {
				mockService.EXPECT().
					LockFundsForDispute(gomock.Any(), "order2").
					Return(model.Escrow{}, auctionerrors.ErrEscrowAlreadyReleased)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "escrow has already been released",
		},
		{
			name:    "already_disputed",
			orderID: "order3",
			mockSetup: func() {
				mockService.EXPECT().
					LockFundsForDispute(gomock.Any(), "order3").
					Return(model.Escrow{}, auctionerrors.ErrEscrowNotHolding)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "escrow is not holding funds",
		},
		{
			name:    "order_not_found",
			orderID: "ghost",
			mockSetup: func() {
				mockService.EXPECT().
					LockFundsForDispute(gomock.Any(), "ghost").
					Return(model.Escrow{}, auctionerrors.ErrOrderNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "order not found",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%s/dispute", tc.orderID), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			err := json.Unmarshal(w.Body.Bytes(), &resp)
			require.NoError(t, err)

			require.Contains(t, resp["message"], tc.expectedMsg)

			if tc.validateData != nil && w.Code == http.StatusOK {
				data := resp["data"].(map[string]any)
				tc.validateData(t, data)
			}
		})
	}
}

// Test ReleaseEscrowHandler
func TestReleaseEscrowHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockSettlementServiceInterface(ctrl)
	handler := NewSettlementHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/escrows/:escrow_id/release", handler.ReleaseEscrowHandler)

	now := time.Now().UTC()

	tests := []struct {
		name           string
		escrowID       string
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name:     "success_manual_release",
			escrowID: "escrow1",
			mockSetup: func() {
				mockService.EXPECT().
					ReleaseEscrow(gomock.Any(), "escrow1").
					Return(model.Escrow{
						EscrowID:      "escrow1",
						OrderID:       "order1",
						SellerID:      "seller1",
						AmountCents:   1500,
						Status:        model.EscrowReleased,
						ReleaseDate:   now,
						ReleaseReason: model.ReleaseManual,
						ReleasedAt:    &now,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "escrow released successfully",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "released", data["status"])
				require.Equal(t, "manual_release", data["release_reason"])
			},
		},
		{
			name:     "already_released",
			escrowID: "escrow2",
			mockSetup: func() {
				mockService.EXPECT().
					ReleaseEscrow(gomock.Any(), "escrow2").
					Return(model.Escrow{}, auctionerrors.ErrEscrowAlreadyReleased)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "escrow has already been released",
		},
		{
			name:     "escrow_not_found",
			escrowID: "ghost",
			mockSetup: func() {
				mockService.EXPECT().
					ReleaseEscrow(gomock.Any(), "ghost").
					Return(model.Escrow{}, auctionerrors.ErrEscrowNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "escrow not found",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/escrows/%s/release", tc.escrowID), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			err := json.Unmarshal(w.Body.Bytes(), &resp)
			require.NoError(t, err)

			require.Contains(t, resp["message"], tc.expectedMsg)

			if tc.validateData != nil && w.Code == http.StatusOK {
				data := resp["data"].(map[string]any)
				tc.validateData(t, data)
			}
		})
	}
}

// Test RequestWithdrawalHandler
func TestRequestWithdrawalHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockSettlementServiceInterface(ctrl)
	handler := NewSettlementHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/withdrawals", handler.RequestWithdrawalHandler)

	now := time.Now().UTC()

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name: "success",
			requestBody: helpers.RequestWithdrawalRequest{
				SellerID:    "seller1",
				AmountCents: 1000,
			},
			mockSetup: func() {
				mockService.EXPECT().
					RequestWithdrawal(gomock.Any(), "seller1", int64(1000)).
					Return(model.Withdrawal{
						WithdrawalID: uuid.NewString(),
						SellerID:     "seller1",
						AmountCents:  1000,
						Status:       model.WithdrawalPending,
						CreatedAt:    now,
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "withdrawal requested successfully",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "seller1", data["seller_id"])
				require.Equal(t, float64(1000), data["amount_cents"])
				require.Equal(t, "pending", data["status"])
			},
		},
		{
			name:           "invalid_json",
			requestBody:    `{invalid json}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "missing_seller_id",
			requestBody: helpers.RequestWithdrawalRequest{
				SellerID:    "",
				AmountCents: 1000,
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "invalid_amount_zero",
			requestBody: helpers.RequestWithdrawalRequest{
				SellerID:    "seller1",
				AmountCents: 0,
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "insufficient_funds",
			requestBody: helpers.RequestWithdrawalRequest{
				SellerID:    "seller1",
				AmountCents: 999999,
			},
			mockSetup: func() {
				mockService.EXPECT().
					RequestWithdrawal(gomock.Any(), "seller1", int64(999999)).
					Return(model.Withdrawal{}, auctionerrors.ErrInsufficientFunds)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedMsg:    "insufficient available balance",
		},
		{
			name: "wallet_not_found",
			requestBody: helpers.RequestWithdrawalRequest{
				SellerID:    "ghost",
				AmountCents: 1000,
			},
			mockSetup: func() {
				mockService.EXPECT().
					RequestWithdrawal(gomock.Any(), "ghost", int64(1000)).
					Return(model.Withdrawal{}, auctionerrors.ErrWalletNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "wallet not found",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var reqBody []byte
			var err error
			switch v := tc.requestBody.(type) {
			case string:
				reqBody = []byte(v)
			default:
				reqBody, err = json.Marshal(v)
				require.NoError(t, err)
			}

			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/withdrawals", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			err = json.Unmarshal(w.Body.Bytes(), &resp)
			require.NoError(t, err)

			require.Contains(t, resp["message"], tc.expectedMsg)

			if tc.validateData != nil && w.Code == http.StatusCreated {
				data := resp["data"].(map[string]any)
				tc.validateData(t, data)
			}
		})
	}
}

// Test ApproveWithdrawalHandler and RejectWithdrawalHandler
func TestResolveWithdrawalHandlers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockSettlementServiceInterface(ctrl)
	handler := NewSettlementHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/withdrawals/:withdrawal_id/approve", handler.ApproveWithdrawalHandler)
	router.POST("/withdrawals/:withdrawal_id/reject", handler.RejectWithdrawalHandler)

	now := time.Now().UTC()

	t.Run("approve_success", func(t *testing.T) {
		mockService.EXPECT().
			ApproveWithdrawal(gomock.Any(), "wd1").
			Return(model.Withdrawal{
				WithdrawalID: "wd1",
				SellerID:     "seller1",
				AmountCents:  1000,
				Status:       model.WithdrawalApproved,
				CreatedAt:    now,
				ResolvedAt:   &now,
			}, nil)

		req := httptest.NewRequest(http.MethodPost, "/withdrawals/wd1/approve", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Contains(t, resp["message"], "withdrawal approved successfully")

		data := resp["data"].(map[string]any)
		require.Equal(t, "approved", data["status"])
		require.NotEmpty(t, data["resolved_at"])
	})

	t.Run("approve_not_pending", func(t *testing.T) {
		mockService.EXPECT().
			ApproveWithdrawal(gomock.Any(), "wd2").
			Return(model.Withdrawal{}, auctionerrors.ErrWithdrawalNotPending)

		req := httptest.NewRequest(http.MethodPost, "/withdrawals/wd2/approve", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusConflict, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Contains(t, resp["message"], "withdrawal is not pending")
	})

	t.Run("approve_not_found", func(t *testing.T) {
		mockService.EXPECT().
			ApproveWithdrawal(gomock.Any(), "ghost").
			Return(model.Withdrawal{}, auctionerrors.ErrWithdrawalNotFound)

		req := httptest.NewRequest(http.MethodPost, "/withdrawals/ghost/approve", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Contains(t, resp["message"], "withdrawal not found")
	})

	t.Run("reject_success_with_note", func(t *testing.T) {
		mockService.EXPECT().
			RejectWithdrawal(gomock.Any(), "wd3", "bank account mismatch").
			Return(model.Withdrawal{
				WithdrawalID: "wd3",
				SellerID:     "seller1",
				AmountCents:  1000,
				Status:       model.WithdrawalRejected,
				Note:         "bank account mismatch",
				CreatedAt:    now,
				ResolvedAt:   &now,
			}, nil)

		body, err := json.Marshal(helpers.RejectWithdrawalRequest{Note: "bank account mismatch"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/withdrawals/wd3/reject", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Contains(t, resp["message"], "withdrawal rejected successfully")

		data := resp["data"].(map[string]any)
		require.Equal(t, "rejected", data["status"])
		require.Equal(t, "bank account mismatch", data["note"])
	})

	t.Run("reject_not_pending", func(t *testing.T) {
		mockService.EXPECT().
			RejectWithdrawal(gomock.Any(), "wd4", "").
			Return(model.Withdrawal{}, auctionerrors.ErrWithdrawalNotPending)

		body := []byte(`{}`)
		req := httptest.NewRequest(http.MethodPost, "/withdrawals/wd4/reject", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusConflict, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Contains(t, resp["message"], "withdrawal is not pending")
	})
}
