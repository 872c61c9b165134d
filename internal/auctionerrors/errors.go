package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound    = errors.New("auction not found")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrEscrowNotFound     = errors.New("escrow not found")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrNoBids             = errors.New("no bids found for auction")
	// ErrLockTimeout signals transient contention; callers should retry
	// with backoff.
	ErrLockTimeout = errors.New("lock acquisition timed out")
)

// Bid placement errors
var (
	ErrInvalidBid         = errors.New("invalid bid")
	ErrBidTooLow          = errors.New("bid amount too low")
	ErrSellerCannotBid    = errors.New("seller cannot bid on own auction")
	ErrInsufficientFunds  = errors.New("insufficient available balance")
	ErrAuctionNotActive   = errors.New("auction is not active")
	ErrAuctionEnded       = errors.New("auction has already ended")
	ErrAuctionEndedByTime = errors.New("auction end time has passed")
)

// Settlement errors
var (
	ErrEscrowNotHolding      = errors.New("escrow is not holding funds")
	ErrEscrowAlreadyReleased = errors.New("escrow has already been released")
	ErrWithdrawalNotPending  = errors.New("withdrawal is not pending")
)
