package notify

import (
	"context"
	"time"
)

// Notification is the payload handed to the notification sink.
type Notification struct {
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	ActionURL string         `json:"action_url,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Notification types emitted by the core.
const (
	TypeBidPlaced       = "bid_placed"
	TypeOutbid          = "outbid"
	TypeAuctionWon      = "auction_won"
	TypeAuctionEnded    = "auction_ended"
	TypeReserveNotMet   = "reserve_not_met"
	TypeEscrowReleased  = "escrow_released"
	TypeDisputeOpened   = "dispute_opened"
	TypeWithdrawalState = "withdrawal_state"
)

// Notifier is a fire-and-forget notification sink. Implementations must
// never block the caller on delivery and must never surface delivery
// failures as errors: the owning state change has already committed.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Nop discards all notifications. Used in tests.
type Nop struct{}

func (Nop) Notify(ctx context.Context, n Notification) {}
