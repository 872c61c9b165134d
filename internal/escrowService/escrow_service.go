package escrow

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/internal/notify"
	"auction-house/internal/repository"
	"auction-house/utils"
)

// EscrowService defines the business logic for holding and settling
// buyer funds. Releases move money to the seller's wallet; disputes
// freeze the escrow until an operator resolves it.
type EscrowService struct {
	store      repository.Store
	notifier   notify.Notifier
	holdPeriod time.Duration

	// now is swapped out by tests to control the clock.
	now func() time.Time
}

// NewEscrowService creates a new EscrowService instance
func NewEscrowService(store repository.Store, notifier notify.Notifier, holdPeriod time.Duration) *EscrowService {
	if holdPeriod <= 0 {
		holdPeriod = 7 * 24 * time.Hour
	}
	return &EscrowService{
		store:      store,
		notifier:   notifier,
		holdPeriod: holdPeriod,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateEscrow charges the buyer for a pending order and places the
// funds in escrow. Used for direct purchases; auction settlements
// create their escrow as part of ending the auction.
func (s *EscrowService) CreateEscrow(ctx context.Context, orderID string) (model.Escrow, error) {
	if orderID == "" {
		return model.Escrow{}, fmt.Errorf("service: %w - empty order ID", auctionerrors.ErrInvalidBid)
	}

	var created model.Escrow
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		now := s.now()

		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("service: failed to lock order %s: %w", orderID, err)
		}
		if o.Status != model.OrderPending {
			return fmt.Errorf("service: %w - order %s is %s", auctionerrors.ErrInvalidBid, orderID, o.Status)
		}

		w, err := tx.LockWallet(ctx, o.BuyerID)
		if err != nil {
			return fmt.Errorf("service: failed to lock wallet for buyer %s: %w", o.BuyerID, err)
		}
		if w.AvailableCents < o.AmountCents {
			return fmt.Errorf("service: %w - need %d cents, have %d available", auctionerrors.ErrInsufficientFunds, o.AmountCents, w.AvailableCents)
		}
		w.AvailableCents -= o.AmountCents
		w.TotalCents -= o.AmountCents
		w.UpdatedAt = now
		if err := tx.UpdateWallet(ctx, w); err != nil {
			return fmt.Errorf("service: failed to charge buyer %s: %w", o.BuyerID, err)
		}
		if err := tx.InsertLedgerEntry(ctx, model.LedgerEntry{
			EntryID:     utils.GenerateID(),
			UserID:      o.BuyerID,
			AmountCents: -o.AmountCents,
			Kind:        model.EntryOrderPayment,
			Reference:   o.OrderID,
			CreatedAt:   now,
		}); err != nil {
			return fmt.Errorf("service: failed to record payment for order %s: %w", o.OrderID, err)
		}

		o.Status = model.OrderPaid
		o.UpdatedAt = now
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return fmt.Errorf("service: failed to update order %s: %w", orderID, err)
		}

		created = model.Escrow{
			EscrowID:    utils.GenerateID(),
			OrderID:     o.OrderID,
			BuyerID:     o.BuyerID,
			SellerID:    o.SellerID,
			AmountCents: o.AmountCents,
			Status:      model.EscrowHolding,
			ReleaseDate: now.Add(s.holdPeriod),
			CreatedAt:   now,
		}
		if err := tx.InsertEscrow(ctx, created); err != nil {
			return fmt.Errorf("service: failed to create escrow for order %s: %w", orderID, err)
		}
		return nil
	})
	if err != nil {
		return model.Escrow{}, err
	}
	return created, nil
}

// ConfirmDelivery marks a paid order as delivered and releases its
// escrow to the seller immediately.
func (s *EscrowService) ConfirmDelivery(ctx context.Context, orderID string) (model.Escrow, error) {
	if orderID == "" {
		return model.Escrow{}, fmt.Errorf("service: %w - empty order ID", auctionerrors.ErrInvalidBid)
	}

	var released model.Escrow
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		now := s.now()

		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("service: failed to lock order %s: %w", orderID, err)
		}
		if o.Status == model.OrderDisputed {
			return fmt.Errorf("service: %w - order %s is disputed", auctionerrors.ErrEscrowNotHolding, orderID)
		}
		if o.Status != model.OrderPaid && o.Status != model.OrderDelivered {
			return fmt.Errorf("service: %w - order %s is %s", auctionerrors.ErrInvalidBid, orderID, o.Status)
		}
		o.Status = model.OrderDelivered
		o.UpdatedAt = now
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return fmt.Errorf("service: failed to update order %s: %w", orderID, err)
		}

		e, err := tx.LockEscrowByOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("service: failed to lock escrow for order %s: %w", orderID, err)
		}
		released, err = s.release(ctx, tx, e, model.ReleaseDeliveryConfirmed, now)
		return err
	})
	if err != nil {
		return model.Escrow{}, err
	}

	s.notifyReleased(ctx, released)
	return released, nil
}

// ReleaseEscrow releases a holding escrow to the seller on operator
// action. Releasing twice returns ErrEscrowAlreadyReleased; a disputed
// escrow returns ErrEscrowNotHolding.
func (s *EscrowService) ReleaseEscrow(ctx context.Context, escrowID string) (model.Escrow, error) {
	if escrowID == "" {
		return model.Escrow{}, fmt.Errorf("service: %w - empty escrow ID", auctionerrors.ErrInvalidBid)
	}

	var released model.Escrow
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		e, err := tx.LockEscrow(ctx, escrowID)
		if err != nil {
			return fmt.Errorf("service: failed to lock escrow %s: %w", escrowID, err)
		}
		released, err = s.release(ctx, tx, e, model.ReleaseManual, s.now())
		return err
	})
	if err != nil {
		return model.Escrow{}, err
	}

	s.notifyReleased(ctx, released)
	return released, nil
}

// AutoReleaseExpiredEscrows releases every holding escrow whose release
// date has passed. A failure on one escrow is logged and the sweep
// moves on.
func (s *EscrowService) AutoReleaseExpiredEscrows(ctx context.Context) (int, error) {
	ids, err := s.store.ExpiredEscrowIDs(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("service: failed to list expired escrows: %w", err)
	}

	count := 0
	for _, id := range ids {
		var released model.Escrow
		err := s.store.Atomic(ctx, func(tx repository.Tx) error {
			e, err := tx.LockEscrow(ctx, id)
			if err != nil {
				return err
			}
			// A concurrent release or dispute may have beaten the sweep.
			if e.Status != model.EscrowHolding {
				return nil
			}
			released, err = s.release(ctx, tx, e, model.ReleaseAuto, s.now())
			return err
		})
		if err != nil {
			utils.Error("sweep: failed to auto-release escrow", map[string]any{
				"escrow_id": id,
				"error":     err.Error(),
			})
			continue
		}
		if released.EscrowID == "" {
			continue
		}
		s.notifyReleased(ctx, released)
		count++
	}
	return count, nil
}

// LockFundsForDispute freezes a holding escrow while its order is in
// dispute. Frozen funds stay with the platform until resolution.
func (s *EscrowService) LockFundsForDispute(ctx context.Context, orderID string) (model.Escrow, error) {
	if orderID == "" {
		return model.Escrow{}, fmt.Errorf("service: %w - empty order ID", auctionerrors.ErrInvalidBid)
	}

	var disputed model.Escrow
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		now := s.now()

		e, err := tx.LockEscrowByOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("service: failed to lock escrow for order %s: %w", orderID, err)
		}
		if e.Status == model.EscrowReleased {
			return fmt.Errorf("service: %w", auctionerrors.ErrEscrowAlreadyReleased)
		}
		if e.Status != model.EscrowHolding {
			return fmt.Errorf("service: %w - escrow %s is %s", auctionerrors.ErrEscrowNotHolding, e.EscrowID, e.Status)
		}
		e.Status = model.EscrowDisputed
		e.DisputeID = utils.GenerateID()
		if err := tx.UpdateEscrow(ctx, e); err != nil {
			return fmt.Errorf("service: failed to update escrow %s: %w", e.EscrowID, err)
		}

		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("service: failed to lock order %s: %w", orderID, err)
		}
		o.Status = model.OrderDisputed
		o.UpdatedAt = now
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return fmt.Errorf("service: failed to update order %s: %w", orderID, err)
		}
		disputed = e
		return nil
	})
	if err != nil {
		return model.Escrow{}, err
	}

	for _, userID := range []string{disputed.SellerID, disputed.BuyerID} {
		s.notifier.Notify(ctx, notify.Notification{
			UserID:  userID,
			Type:    notify.TypeDisputeOpened,
			Title:   "Dispute opened",
			Message: "A dispute was opened and the order's funds are frozen",
			Data:    map[string]any{"order_id": disputed.OrderID, "dispute_id": disputed.DisputeID},
		})
	}
	return disputed, nil
}

// RequestWithdrawal moves part of a seller's available balance into a
// pending withdrawal awaiting operator review.
func (s *EscrowService) RequestWithdrawal(ctx context.Context, sellerID string, amountCents int64) (model.Withdrawal, error) {
	if sellerID == "" {
		return model.Withdrawal{}, fmt.Errorf("service: %w - empty seller ID", auctionerrors.ErrInvalidBid)
	}
	if amountCents <= 0 {
		return model.Withdrawal{}, fmt.Errorf("service: %w - non-positive withdrawal amount", auctionerrors.ErrInvalidBid)
	}

	var wd model.Withdrawal
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		now := s.now()

		w, err := tx.LockWallet(ctx, sellerID)
		if err != nil {
			return fmt.Errorf("service: failed to lock wallet for seller %s: %w", sellerID, err)
		}
		if w.AvailableCents < amountCents {
			return fmt.Errorf("service: %w - need %d cents, have %d available", auctionerrors.ErrInsufficientFunds, amountCents, w.AvailableCents)
		}
		w.AvailableCents -= amountCents
		w.PendingWithdrawalCents += amountCents
		w.UpdatedAt = now
		if err := tx.UpdateWallet(ctx, w); err != nil {
			return fmt.Errorf("service: failed to hold withdrawal funds for seller %s: %w", sellerID, err)
		}

		wd = model.Withdrawal{
			WithdrawalID: utils.GenerateID(),
			SellerID:     sellerID,
			AmountCents:  amountCents,
			Status:       model.WithdrawalPending,
			CreatedAt:    now,
		}
		if err := tx.InsertWithdrawal(ctx, wd); err != nil {
			return fmt.Errorf("service: failed to create withdrawal for seller %s: %w", sellerID, err)
		}
		return tx.InsertLedgerEntry(ctx, model.LedgerEntry{
			EntryID:     utils.GenerateID(),
			UserID:      sellerID,
			AmountCents: -amountCents,
			Kind:        model.EntryWithdrawalHold,
			Reference:   wd.WithdrawalID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return model.Withdrawal{}, err
	}
	return wd, nil
}

// ApproveWithdrawal pays out a pending withdrawal. The held funds leave
// the seller's wallet entirely.
func (s *EscrowService) ApproveWithdrawal(ctx context.Context, withdrawalID string) (model.Withdrawal, error) {
	return s.resolveWithdrawal(ctx, withdrawalID, model.WithdrawalApproved, "")
}

// RejectWithdrawal cancels a pending withdrawal and returns the held
// funds to the seller's available balance.
func (s *EscrowService) RejectWithdrawal(ctx context.Context, withdrawalID, note string) (model.Withdrawal, error) {
	return s.resolveWithdrawal(ctx, withdrawalID, model.WithdrawalRejected, note)
}

// GetEscrow returns one escrow by ID
func (s *EscrowService) GetEscrow(ctx context.Context, escrowID string) (model.Escrow, error) {
	if escrowID == "" {
		return model.Escrow{}, fmt.Errorf("service: %w - empty escrow ID", auctionerrors.ErrInvalidBid)
	}
	e, err := s.store.GetEscrow(ctx, escrowID)
	if err != nil {
		return model.Escrow{}, fmt.Errorf("service: failed to get escrow %s: %w", escrowID, err)
	}
	return e, nil
}

// GetOrder returns one order by ID
func (s *EscrowService) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	if orderID == "" {
		return model.Order{}, fmt.Errorf("service: %w - empty order ID", auctionerrors.ErrInvalidBid)
	}
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, fmt.Errorf("service: failed to get order %s: %w", orderID, err)
	}
	return o, nil
}

// release moves a holding escrow's funds to the seller's wallet and
// completes the order. Callers hold the escrow lock already.
func (s *EscrowService) release(ctx context.Context, tx repository.Tx, e model.Escrow, reason string, now time.Time) (model.Escrow, error) {
	if e.Status == model.EscrowReleased {
		return model.Escrow{}, fmt.Errorf("service: %w", auctionerrors.ErrEscrowAlreadyReleased)
	}
	if e.Status != model.EscrowHolding {
		return model.Escrow{}, fmt.Errorf("service: %w - escrow %s is %s", auctionerrors.ErrEscrowNotHolding, e.EscrowID, e.Status)
	}

	w, err := tx.LockWallet(ctx, e.SellerID)
	if err != nil {
		return model.Escrow{}, fmt.Errorf("service: failed to lock wallet for seller %s: %w", e.SellerID, err)
	}
	w.TotalCents += e.AmountCents
	w.AvailableCents += e.AmountCents
	w.UpdatedAt = now
	if err := tx.UpdateWallet(ctx, w); err != nil {
		return model.Escrow{}, fmt.Errorf("service: failed to credit seller %s: %w", e.SellerID, err)
	}
	if err := tx.InsertLedgerEntry(ctx, model.LedgerEntry{
		EntryID:     utils.GenerateID(),
		UserID:      e.SellerID,
		AmountCents: e.AmountCents,
		Kind:        model.EntryEscrowRelease,
		Reference:   e.EscrowID,
		CreatedAt:   now,
	}); err != nil {
		return model.Escrow{}, fmt.Errorf("service: failed to record release for escrow %s: %w", e.EscrowID, err)
	}

	e.Status = model.EscrowReleased
	e.ReleaseReason = reason
	released := now
	e.ReleasedAt = &released
	if err := tx.UpdateEscrow(ctx, e); err != nil {
		return model.Escrow{}, fmt.Errorf("service: failed to update escrow %s: %w", e.EscrowID, err)
	}

	o, err := tx.LockOrder(ctx, e.OrderID)
	if err != nil {
		return model.Escrow{}, fmt.Errorf("service: failed to lock order %s: %w", e.OrderID, err)
	}
	o.Status = model.OrderCompleted
	o.UpdatedAt = now
	if err := tx.UpdateOrder(ctx, o); err != nil {
		return model.Escrow{}, fmt.Errorf("service: failed to complete order %s: %w", e.OrderID, err)
	}
	return e, nil
}

func (s *EscrowService) resolveWithdrawal(ctx context.Context, withdrawalID string, outcome model.WithdrawalStatus, note string) (model.Withdrawal, error) {
	if withdrawalID == "" {
		return model.Withdrawal{}, fmt.Errorf("service: %w - empty withdrawal ID", auctionerrors.ErrInvalidBid)
	}

	var wd model.Withdrawal
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		now := s.now()

		var err error
		wd, err = tx.LockWithdrawal(ctx, withdrawalID)
		if err != nil {
			return fmt.Errorf("service: failed to lock withdrawal %s: %w", withdrawalID, err)
		}
		if wd.Status != model.WithdrawalPending {
			return fmt.Errorf("service: %w - withdrawal %s is %s", auctionerrors.ErrWithdrawalNotPending, withdrawalID, wd.Status)
		}

		w, err := tx.LockWallet(ctx, wd.SellerID)
		if err != nil {
			return fmt.Errorf("service: failed to lock wallet for seller %s: %w", wd.SellerID, err)
		}
		w.PendingWithdrawalCents -= wd.AmountCents
		kind := model.EntryWithdrawalPaid
		amount := -wd.AmountCents
		if outcome == model.WithdrawalApproved {
			w.TotalCents -= wd.AmountCents
		} else {
			w.AvailableCents += wd.AmountCents
			kind = model.EntryWithdrawalBack
			amount = wd.AmountCents
		}
		w.UpdatedAt = now
		if err := tx.UpdateWallet(ctx, w); err != nil {
			return fmt.Errorf("service: failed to settle withdrawal %s: %w", withdrawalID, err)
		}
		if err := tx.InsertLedgerEntry(ctx, model.LedgerEntry{
			EntryID:     utils.GenerateID(),
			UserID:      wd.SellerID,
			AmountCents: amount,
			Kind:        kind,
			Reference:   wd.WithdrawalID,
			CreatedAt:   now,
		}); err != nil {
			return fmt.Errorf("service: failed to record settlement for withdrawal %s: %w", withdrawalID, err)
		}

		wd.Status = outcome
		wd.Note = note
		wd.ResolvedAt = &now
		return tx.UpdateWithdrawal(ctx, wd)
	})
	if err != nil {
		return model.Withdrawal{}, err
	}

	s.notifier.Notify(ctx, notify.Notification{
		UserID:  wd.SellerID,
		Type:    notify.TypeWithdrawalState,
		Title:   "Withdrawal " + string(wd.Status),
		Message: fmt.Sprintf("Your withdrawal of %d cents was %s", wd.AmountCents, wd.Status),
		Data:    map[string]any{"withdrawal_id": wd.WithdrawalID},
	})
	return wd, nil
}

func (s *EscrowService) notifyReleased(ctx context.Context, e model.Escrow) {
	s.notifier.Notify(ctx, notify.Notification{
		UserID:  e.SellerID,
		Type:    notify.TypeEscrowReleased,
		Title:   "Escrow released",
		Message: fmt.Sprintf("%d cents from order %s are now in your wallet", e.AmountCents, e.OrderID),
		Data:    map[string]any{"escrow_id": e.EscrowID, "order_id": e.OrderID, "reason": e.ReleaseReason},
	})
}
