package repository

import (
	"context"
	"time"

	model "auction-house/internal/models"
)

// Store is the persistence boundary for the marketplace core.
//
// All correctness-critical invariants (single winning bid, non-negative
// available balance) are enforced inside Atomic: implementations must
// guarantee that two units of work touching the same auction serialize,
// and that a returned error leaves no partial state behind.
type Store interface {
	// Atomic runs fn as one unit of work. Mutations made through the Tx
	// are committed together on a nil return and discarded otherwise.
	Atomic(ctx context.Context, fn func(tx Tx) error) error

	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error)
	GetWallet(ctx context.Context, userID string) (model.Wallet, error)
	GetOrder(ctx context.Context, orderID string) (model.Order, error)
	GetEscrow(ctx context.Context, escrowID string) (model.Escrow, error)
	GetEscrowByOrder(ctx context.Context, orderID string) (model.Escrow, error)

	// Sweep queries. Results are candidate IDs only; the sweep re-checks
	// state under the lock before acting on each one.
	ExpiredAuctionIDs(ctx context.Context, now time.Time) ([]string, error)
	DueScheduledAuctionIDs(ctx context.Context, now time.Time) ([]string, error)
	ExpiredEscrowIDs(ctx context.Context, now time.Time) ([]string, error)
}

// Tx is the view of the store inside one atomic unit of work. Lock*
// methods acquire an exclusive lock on the row for the remainder of the
// transaction, serializing concurrent mutators of the same entity.
type Tx interface {
	LockAuction(ctx context.Context, auctionID string) (model.Auction, error)
	UpdateAuction(ctx context.Context, a model.Auction) error

	InsertBid(ctx context.Context, b model.Bid) error
	UpdateBid(ctx context.Context, b model.Bid) error
	WinningBid(ctx context.Context, auctionID string) (model.Bid, error)
	// ReservedBids returns all bids on the auction still holding a wallet
	// reservation.
	ReservedBids(ctx context.Context, auctionID string) ([]model.Bid, error)
	// StandingProxyBids returns non-winning bids with a proxy ceiling,
	// highest ceiling first (ties broken by earliest bid).
	StandingProxyBids(ctx context.Context, auctionID string) ([]model.Bid, error)

	LockWallet(ctx context.Context, userID string) (model.Wallet, error)
	UpdateWallet(ctx context.Context, w model.Wallet) error

	InsertOrder(ctx context.Context, o model.Order) error
	LockOrder(ctx context.Context, orderID string) (model.Order, error)
	UpdateOrder(ctx context.Context, o model.Order) error

	InsertEscrow(ctx context.Context, e model.Escrow) error
	LockEscrow(ctx context.Context, escrowID string) (model.Escrow, error)
	LockEscrowByOrder(ctx context.Context, orderID string) (model.Escrow, error)
	UpdateEscrow(ctx context.Context, e model.Escrow) error

	InsertWithdrawal(ctx context.Context, wd model.Withdrawal) error
	LockWithdrawal(ctx context.Context, withdrawalID string) (model.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, wd model.Withdrawal) error

	InsertLedgerEntry(ctx context.Context, e model.LedgerEntry) error
}
