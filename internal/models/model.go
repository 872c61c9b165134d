package models

import "time"

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	AuctionScheduled AuctionStatus = "scheduled"
	AuctionActive    AuctionStatus = "active"
	AuctionEnded     AuctionStatus = "ended"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderDelivered OrderStatus = "delivered"
	OrderDisputed  OrderStatus = "disputed"
	OrderCompleted OrderStatus = "completed"
	OrderRefunded  OrderStatus = "refunded"
)

// EscrowStatus is the state of platform-held funds for a paid order.
type EscrowStatus string

const (
	EscrowHolding  EscrowStatus = "holding"
	EscrowReleased EscrowStatus = "released"
	EscrowDisputed EscrowStatus = "disputed"
)

// Reasons recorded when an escrow is released.
const (
	ReleaseDeliveryConfirmed = "delivery_confirmed"
	ReleaseAuto              = "auto_release"
	ReleaseManual            = "manual_release"
)

// WithdrawalStatus is the state of a seller withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// Auction represents one product being sold competitively.
// CurrentPriceCents starts at StartingPriceCents and only increases
// while the auction is active.
type Auction struct {
	AuctionID          string        `json:"auction_id"`
	SellerID           string        `json:"seller_id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	StartingPriceCents int64         `json:"starting_price_cents"`
	CurrentPriceCents  int64         `json:"current_price_cents"`
	ReservePriceCents  int64         `json:"reserve_price_cents"` // 0 = no reserve
	BidIncrementCents  int64         `json:"bid_increment_cents"`
	StartTime          time.Time     `json:"start_time"`
	EndTime            time.Time     `json:"end_time"`
	AutoExtend         bool          `json:"auto_extend"`
	ExtensionDuration  time.Duration `json:"extension_duration"`
	Status             AuctionStatus `json:"status"`
	WinnerID           string        `json:"winner_id,omitempty"`
	WinningBidID       string        `json:"winning_bid_id,omitempty"`
	BidCount           int           `json:"bid_count"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Bid represents a user's bid on an auction. At most one bid per auction
// has IsWinning set at any time. FundsReserved tracks whether the bid
// still holds a reservation against the bidder's wallet.
type Bid struct {
	BidID         string    `json:"bid_id"`
	AuctionID     string    `json:"auction_id"`
	BidderID      string    `json:"bidder_id"`
	AmountCents   int64     `json:"amount_cents"`
	MaxBidCents   int64     `json:"max_bid_cents,omitempty"` // 0 = no proxy ceiling
	IsWinning     bool      `json:"is_winning"`
	IsAutomatic   bool      `json:"is_automatic"`
	FundsReserved bool      `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// Wallet is a per-user balance. Funds reserved against open bids equal
// TotalCents - AvailableCents - PendingWithdrawalCents.
type Wallet struct {
	UserID                 string    `json:"user_id"`
	TotalCents             int64     `json:"total_cents"`
	AvailableCents         int64     `json:"available_cents"`
	PendingWithdrawalCents int64     `json:"pending_withdrawal_cents"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Order links a buyer and seller for a concluded sale.
// AuctionID is empty for direct purchases.
type Order struct {
	OrderID     string      `json:"order_id"`
	AuctionID   string      `json:"auction_id,omitempty"`
	BuyerID     string      `json:"buyer_id"`
	SellerID    string      `json:"seller_id"`
	AmountCents int64       `json:"amount_cents"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Escrow holds a buyer's payment for one order until a release
// condition is met.
type Escrow struct {
	EscrowID      string       `json:"escrow_id"`
	OrderID       string       `json:"order_id"`
	BuyerID       string       `json:"buyer_id"`
	SellerID      string       `json:"seller_id"`
	AmountCents   int64        `json:"amount_cents"`
	Status        EscrowStatus `json:"status"`
	ReleaseDate   time.Time    `json:"release_date"`
	ReleaseReason string       `json:"release_reason,omitempty"`
	DisputeID     string       `json:"dispute_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	ReleasedAt    *time.Time   `json:"released_at,omitempty"`
}

// Withdrawal is a seller's request to cash out available balance.
type Withdrawal struct {
	WithdrawalID string           `json:"withdrawal_id"`
	SellerID     string           `json:"seller_id"`
	AmountCents  int64            `json:"amount_cents"`
	Status       WithdrawalStatus `json:"status"`
	Note         string           `json:"note,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	ResolvedAt   *time.Time       `json:"resolved_at,omitempty"`
}

// LedgerEntry is one row in the transactions table: a signed movement
// of funds attributed to a user, with a reference to its cause.
type LedgerEntry struct {
	EntryID     string    `json:"entry_id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"` // signed
	Kind        string    `json:"kind"`
	Reference   string    `json:"reference,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ledger entry kinds.
const (
	EntryBidReserved    = "bid_reserved"
	EntryBidReleased    = "bid_released"
	EntryOrderPayment   = "order_payment"
	EntryEscrowRelease  = "escrow_release"
	EntryWithdrawalHold = "withdrawal_hold"
	EntryWithdrawalPaid = "withdrawal_paid"
	EntryWithdrawalBack = "withdrawal_returned"
)
