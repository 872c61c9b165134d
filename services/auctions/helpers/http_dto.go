package helpers

// Request/Response DTOs
type PlaceBidRequest struct {
	BidderID    string `json:"bidder_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	MaxBidCents int64  `json:"max_bid_cents" binding:"omitempty,gt=0"`
}

type BidResponse struct {
	BidID       string `json:"bid_id"`
	AuctionID   string `json:"auction_id"`
	BidderID    string `json:"bidder_id"`
	AmountCents int64  `json:"amount_cents"`
	MaxBidCents int64  `json:"max_bid_cents,omitempty"`
	IsWinning   bool   `json:"is_winning"`
	IsAutomatic bool   `json:"is_automatic"`
	CreatedAt   string `json:"created_at"`
}

type AuctionResponse struct {
	AuctionID          string `json:"auction_id"`
	SellerID           string `json:"seller_id"`
	Title              string `json:"title"`
	StartingPriceCents int64  `json:"starting_price_cents"`
	CurrentPriceCents  int64  `json:"current_price_cents"`
	BidIncrementCents  int64  `json:"bid_increment_cents"`
	Status             string `json:"status"`
	WinnerID           string `json:"winner_id,omitempty"`
	WinningBidID       string `json:"winning_bid_id,omitempty"`
	BidCount           int    `json:"bid_count"`
	EndTime            string `json:"end_time"`
}

type WalletResponse struct {
	UserID                 string `json:"user_id"`
	TotalCents             int64  `json:"total_cents"`
	AvailableCents         int64  `json:"available_cents"`
	PendingWithdrawalCents int64  `json:"pending_withdrawal_cents"`
}
