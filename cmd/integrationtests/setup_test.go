package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	auction "auction-house/internal/auctionService"
	escrow "auction-house/internal/escrowService"
	model "auction-house/internal/models"
	"auction-house/internal/notify"
	"auction-house/internal/realtime"
	"auction-house/internal/repository"
	"auction-house/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupTestEnv initializes the router over an in-memory store for
// integration testing and returns both so tests can seed and inspect
// state directly.
func SetupTestEnv() (*gin.Engine, *repository.MemoryStore) {
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	auctionSvc := auction.NewAuctionService(store, notify.Nop{}, realtime.Nop{}, auction.Config{})
	settlementSvc := escrow.NewEscrowService(store, notify.Nop{}, auction.DefaultHoldPeriod)
	router := server.SetupRouter(auctionSvc, settlementSvc)
	return router, store
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// ResponseData extracts the data envelope as an object.
func ResponseData(t *testing.T, resp map[string]any) map[string]any {
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}

// SeedActiveAuction adds an active auction ending well in the future.
func SeedActiveAuction(store *repository.MemoryStore, auctionID, sellerID string, startCents, incrementCents, reserveCents int64) {
	now := time.Now().UTC()
	store.AddAuction(model.Auction{
		AuctionID:          auctionID,
		SellerID:           sellerID,
		Title:              "integration test lot",
		StartingPriceCents: startCents,
		BidIncrementCents:  incrementCents,
		ReservePriceCents:  reserveCents,
		Status:             model.AuctionActive,
		StartTime:          now.Add(-time.Hour),
		EndTime:            now.Add(24 * time.Hour),
		CreatedAt:          now,
	})
}

// FindOrderID digs the created order out of the payment ledger entry.
func FindOrderID(t *testing.T, store *repository.MemoryStore, buyerID string) string {
	t.Helper()
	for _, e := range store.LedgerEntries() {
		if e.Kind == model.EntryOrderPayment && e.UserID == buyerID {
			return e.Reference
		}
	}
	t.Fatal("no order payment ledger entry found for " + buyerID)
	return ""
}
