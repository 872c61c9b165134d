package helpers

// Request/Response DTOs
type RequestWithdrawalRequest struct {
	SellerID    string `json:"seller_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
}

type RejectWithdrawalRequest struct {
	Note string `json:"note"`
}

type EscrowResponse struct {
	EscrowID      string `json:"escrow_id"`
	OrderID       string `json:"order_id"`
	BuyerID       string `json:"buyer_id"`
	SellerID      string `json:"seller_id"`
	AmountCents   int64  `json:"amount_cents"`
	Status        string `json:"status"`
	ReleaseDate   string `json:"release_date"`
	ReleaseReason string `json:"release_reason,omitempty"`
	DisputeID     string `json:"dispute_id,omitempty"`
	ReleasedAt    string `json:"released_at,omitempty"`
}

type WithdrawalResponse struct {
	WithdrawalID string `json:"withdrawal_id"`
	SellerID     string `json:"seller_id"`
	AmountCents  int64  `json:"amount_cents"`
	Status       string `json:"status"`
	Note         string `json:"note,omitempty"`
	CreatedAt    string `json:"created_at"`
	ResolvedAt   string `json:"resolved_at,omitempty"`
}
