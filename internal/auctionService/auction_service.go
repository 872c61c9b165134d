package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/internal/notify"
	"auction-house/internal/realtime"
	"auction-house/internal/repository"
	"auction-house/utils"
)

// Defaults applied when the config leaves a knob unset.
const (
	DefaultExtendWindow = 5 * time.Minute
	DefaultHoldPeriod   = 7 * 24 * time.Hour
)

// Config tunes the timing behaviour of the auction core.
type Config struct {
	// ExtendWindow is how close to the end a bid must land to trigger
	// an auto-extension.
	ExtendWindow time.Duration
	// HoldPeriod is how long escrow holds funds after an auction ends
	// before they become eligible for auto-release.
	HoldPeriod time.Duration
}

// AuctionService defines the business logic for auction bidding and the
// auction lifecycle. All money mutations happen inside a single atomic
// unit of work per operation; notifications and realtime events are
// dispatched only after that unit commits.
type AuctionService struct {
	store    repository.Store
	notifier notify.Notifier
	events   realtime.Publisher

	extendWindow time.Duration
	holdPeriod   time.Duration

	// now is swapped out by tests to control the clock.
	now func() time.Time
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(store repository.Store, notifier notify.Notifier, events realtime.Publisher, cfg Config) *AuctionService {
	if cfg.ExtendWindow <= 0 {
		cfg.ExtendWindow = DefaultExtendWindow
	}
	if cfg.HoldPeriod <= 0 {
		cfg.HoldPeriod = DefaultHoldPeriod
	}
	return &AuctionService{
		store:        store,
		notifier:     notifier,
		events:       events,
		extendWindow: cfg.ExtendWindow,
		holdPeriod:   cfg.HoldPeriod,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// PlaceBid validates and records a user's bid on an auction. The whole
// operation is atomic: displacing the previous winning bid, reserving
// the bidder's funds, resolving standing proxy bids and extending the
// end time either all happen or none do.
//
// maxBidCents > 0 registers a proxy ceiling: the system will bid on the
// user's behalf, one increment at a time, up to that amount.
func (s *AuctionService) PlaceBid(ctx context.Context, auctionID, bidderID string, amountCents, maxBidCents int64) (model.Bid, error) {
	if err := validateBidInput(auctionID, bidderID, amountCents, maxBidCents); err != nil {
		return model.Bid{}, err
	}

	var (
		placed    model.Bid
		automatic []model.Bid
		displaced []model.Bid
		extended  bool
		newEnd    time.Time
		sellerID  string
	)
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		now := s.now()

		a, err := tx.LockAuction(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("service: failed to lock auction %s: %w", auctionID, err)
		}
		if err := bidableState(a, now); err != nil {
			return err
		}
		if bidderID == a.SellerID {
			return fmt.Errorf("service: %w", auctionerrors.ErrSellerCannotBid)
		}
		minBid := a.CurrentPriceCents + a.BidIncrementCents
		if amountCents < minBid {
			return fmt.Errorf("service: %w - minimum bid is %d cents", auctionerrors.ErrBidTooLow, minBid)
		}
		sellerID = a.SellerID

		placed, displaced, err = s.applyBid(ctx, tx, &a, bidderID, amountCents, maxBidCents, false)
		if err != nil {
			return err
		}

		var proxyDisplaced []model.Bid
		automatic, proxyDisplaced, err = s.resolveProxyBids(ctx, tx, &a)
		if err != nil {
			return err
		}
		displaced = append(displaced, proxyDisplaced...)

		if a.AutoExtend && a.EndTime.Sub(now) <= s.extendWindow {
			ext := a.ExtensionDuration
			if ext <= 0 {
				ext = s.extendWindow
			}
			a.EndTime = a.EndTime.Add(ext)
			extended = true
			newEnd = a.EndTime
		}

		if err := tx.UpdateAuction(ctx, a); err != nil {
			return fmt.Errorf("service: failed to update auction %s: %w", auctionID, err)
		}
		return nil
	})
	if err != nil {
		return model.Bid{}, err
	}

	s.events.NewBid(ctx, auctionID, placed)
	for _, b := range automatic {
		s.events.NewBid(ctx, auctionID, b)
	}
	if extended {
		s.events.AuctionExtended(ctx, auctionID, newEnd)
	}
	winnerID := placed.BidderID
	if len(automatic) > 0 {
		winnerID = automatic[len(automatic)-1].BidderID
	}
	s.notifyOutbid(ctx, auctionID, winnerID, displaced)
	s.notifier.Notify(ctx, notify.Notification{
		UserID:  sellerID,
		Type:    notify.TypeBidPlaced,
		Title:   "New bid on your auction",
		Message: fmt.Sprintf("A bid of %d cents was placed on your auction", placed.AmountCents),
		Data:    map[string]any{"auction_id": auctionID, "bid_id": placed.BidID},
	})

	return placed, nil
}

// EndAuction closes an active auction. With a winning bid meeting the
// reserve it converts the winner's reservation into payment, creates a
// paid order and an escrow holding the funds; otherwise every
// reservation is returned and the auction ends with no sale. Calling it
// on an already ended auction returns ErrAuctionEnded.
func (s *AuctionService) EndAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	var (
		ended      model.Auction
		winner     *model.Bid
		hadBids    bool
		reserveMet bool
	)
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		now := s.now()

		a, err := tx.LockAuction(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("service: failed to lock auction %s: %w", auctionID, err)
		}
		switch a.Status {
		case model.AuctionEnded:
			return fmt.Errorf("service: %w", auctionerrors.ErrAuctionEnded)
		case model.AuctionScheduled:
			return fmt.Errorf("service: %w - auction %s never started", auctionerrors.ErrAuctionNotActive, auctionID)
		}

		wb, err := tx.WinningBid(ctx, a.AuctionID)
		if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
			return fmt.Errorf("service: failed to load winning bid for auction %s: %w", auctionID, err)
		}
		hadBids = err == nil
		reserveMet = hadBids && (a.ReservePriceCents == 0 || wb.AmountCents >= a.ReservePriceCents)

		// Every reservation that does not convert into payment goes back
		// to its bidder.
		reserved, err := tx.ReservedBids(ctx, a.AuctionID)
		if err != nil {
			return fmt.Errorf("service: failed to load reserved bids for auction %s: %w", auctionID, err)
		}
		for _, b := range reserved {
			if reserveMet && b.BidID == wb.BidID {
				continue
			}
			if !reserveMet {
				b.IsWinning = false
			}
			if err := s.releaseReservation(ctx, tx, b, now); err != nil {
				return err
			}
		}

		if reserveMet {
			order := model.Order{
				OrderID:     utils.GenerateID(),
				AuctionID:   a.AuctionID,
				BuyerID:     wb.BidderID,
				SellerID:    a.SellerID,
				AmountCents: wb.AmountCents,
				Status:      model.OrderPaid,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.InsertOrder(ctx, order); err != nil {
				return fmt.Errorf("service: failed to create order for auction %s: %w", auctionID, err)
			}

			// The winner's reserved funds leave the wallet entirely.
			w, err := tx.LockWallet(ctx, wb.BidderID)
			if err != nil {
				return fmt.Errorf("service: failed to lock wallet for winner %s: %w", wb.BidderID, err)
			}
			w.TotalCents -= wb.AmountCents
			w.UpdatedAt = now
			if err := tx.UpdateWallet(ctx, w); err != nil {
				return fmt.Errorf("service: failed to charge winner %s: %w", wb.BidderID, err)
			}
			wb.FundsReserved = false
			if err := tx.UpdateBid(ctx, wb); err != nil {
				return fmt.Errorf("service: failed to settle winning bid %s: %w", wb.BidID, err)
			}
			if err := tx.InsertLedgerEntry(ctx, model.LedgerEntry{
				EntryID:     utils.GenerateID(),
				UserID:      wb.BidderID,
				AmountCents: -wb.AmountCents,
				Kind:        model.EntryOrderPayment,
				Reference:   order.OrderID,
				CreatedAt:   now,
			}); err != nil {
				return fmt.Errorf("service: failed to record payment for order %s: %w", order.OrderID, err)
			}

			escrow := model.Escrow{
				EscrowID:    utils.GenerateID(),
				OrderID:     order.OrderID,
				BuyerID:     wb.BidderID,
				SellerID:    a.SellerID,
				AmountCents: wb.AmountCents,
				Status:      model.EscrowHolding,
				ReleaseDate: now.Add(s.holdPeriod),
				CreatedAt:   now,
			}
			if err := tx.InsertEscrow(ctx, escrow); err != nil {
				return fmt.Errorf("service: failed to create escrow for order %s: %w", order.OrderID, err)
			}
			winner = &wb
		} else {
			a.WinnerID = ""
			a.WinningBidID = ""
		}

		a.Status = model.AuctionEnded
		a.UpdatedAt = now
		if err := tx.UpdateAuction(ctx, a); err != nil {
			return fmt.Errorf("service: failed to update auction %s: %w", auctionID, err)
		}
		ended = a
		return nil
	})
	if err != nil {
		return model.Auction{}, err
	}

	s.events.AuctionEnded(ctx, ended)
	switch {
	case winner != nil:
		s.notifier.Notify(ctx, notify.Notification{
			UserID:  winner.BidderID,
			Type:    notify.TypeAuctionWon,
			Title:   "You won the auction",
			Message: fmt.Sprintf("You won with a bid of %d cents", winner.AmountCents),
			Data:    map[string]any{"auction_id": ended.AuctionID},
		})
		s.notifier.Notify(ctx, notify.Notification{
			UserID:  ended.SellerID,
			Type:    notify.TypeAuctionEnded,
			Title:   "Your auction sold",
			Message: fmt.Sprintf("Your auction sold for %d cents", winner.AmountCents),
			Data:    map[string]any{"auction_id": ended.AuctionID},
		})
	case hadBids:
		s.notifier.Notify(ctx, notify.Notification{
			UserID:  ended.SellerID,
			Type:    notify.TypeReserveNotMet,
			Title:   "Reserve price not met",
			Message: "Your auction ended without meeting the reserve price",
			Data:    map[string]any{"auction_id": ended.AuctionID},
		})
	default:
		s.notifier.Notify(ctx, notify.Notification{
			UserID:  ended.SellerID,
			Type:    notify.TypeAuctionEnded,
			Title:   "Your auction ended",
			Message: "Your auction ended without any bids",
			Data:    map[string]any{"auction_id": ended.AuctionID},
		})
	}

	return ended, nil
}

// SweepExpiredAuctions ends every active auction whose end time has
// passed. A failure on one auction is logged and the sweep moves on;
// auctions already ended by a concurrent caller are skipped silently.
func (s *AuctionService) SweepExpiredAuctions(ctx context.Context) (int, error) {
	ids, err := s.store.ExpiredAuctionIDs(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("service: failed to list expired auctions: %w", err)
	}

	ended := 0
	for _, id := range ids {
		if _, err := s.EndAuction(ctx, id); err != nil {
			if errors.Is(err, auctionerrors.ErrAuctionEnded) {
				continue
			}
			utils.Error("sweep: failed to end expired auction", map[string]any{
				"auction_id": id,
				"error":      err.Error(),
			})
			continue
		}
		ended++
	}
	return ended, nil
}

// ActivateDueAuctions moves scheduled auctions whose start time has
// passed into the active state.
func (s *AuctionService) ActivateDueAuctions(ctx context.Context) (int, error) {
	ids, err := s.store.DueScheduledAuctionIDs(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("service: failed to list due auctions: %w", err)
	}

	activated := 0
	for _, id := range ids {
		changed := false
		err := s.store.Atomic(ctx, func(tx repository.Tx) error {
			a, err := tx.LockAuction(ctx, id)
			if err != nil {
				return err
			}
			if a.Status != model.AuctionScheduled || s.now().Before(a.StartTime) {
				return nil
			}
			a.Status = model.AuctionActive
			a.UpdatedAt = s.now()
			changed = true
			return tx.UpdateAuction(ctx, a)
		})
		if err != nil {
			utils.Error("sweep: failed to activate auction", map[string]any{
				"auction_id": id,
				"error":      err.Error(),
			})
			continue
		}
		if changed {
			activated++
		}
	}
	return activated, nil
}

// GetAuction returns one auction by ID
func (s *AuctionService) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	a, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// GetBidsForAuction returns all bids for a specific auction
func (s *AuctionService) GetBidsForAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	bids, err := s.store.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetWinningBid returns the current winning bid for a specific auction
func (s *AuctionService) GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error) {
	if auctionID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	wb, err := s.store.GetWinningBid(ctx, auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}
	return wb, nil
}

// GetWallet returns a user's wallet balances
func (s *AuctionService) GetWallet(ctx context.Context, userID string) (model.Wallet, error) {
	if userID == "" {
		return model.Wallet{}, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidBid)
	}
	w, err := s.store.GetWallet(ctx, userID)
	if err != nil {
		return model.Wallet{}, fmt.Errorf("service: failed to get wallet for user %s: %w", userID, err)
	}
	return w, nil
}

// applyBid makes bidderID the winning bidder at amountCents. The
// previous winning bid, if any, is demoted and its reservation
// returned; the new bidder's funds are reserved. The auction's price,
// bid count and winner fields are updated in place.
func (s *AuctionService) applyBid(ctx context.Context, tx repository.Tx, a *model.Auction, bidderID string, amountCents, maxBidCents int64, automatic bool) (model.Bid, []model.Bid, error) {
	now := s.now()

	var displaced []model.Bid
	prev, err := tx.WinningBid(ctx, a.AuctionID)
	switch {
	case err == nil:
		prev.IsWinning = false
		if err := tx.UpdateBid(ctx, prev); err != nil {
			return model.Bid{}, nil, fmt.Errorf("service: failed to demote bid %s: %w", prev.BidID, err)
		}
		if prev.FundsReserved {
			if err := s.releaseReservation(ctx, tx, prev, now); err != nil {
				return model.Bid{}, nil, err
			}
		}
		displaced = append(displaced, prev)
	case errors.Is(err, auctionerrors.ErrNoBids):
		// first bid on the auction
	default:
		return model.Bid{}, nil, fmt.Errorf("service: failed to load winning bid for auction %s: %w", a.AuctionID, err)
	}

	w, err := tx.LockWallet(ctx, bidderID)
	if err != nil {
		return model.Bid{}, nil, fmt.Errorf("service: failed to lock wallet for bidder %s: %w", bidderID, err)
	}
	if w.AvailableCents < amountCents {
		return model.Bid{}, nil, fmt.Errorf("service: %w - need %d cents, have %d available", auctionerrors.ErrInsufficientFunds, amountCents, w.AvailableCents)
	}
	w.AvailableCents -= amountCents
	w.UpdatedAt = now
	if err := tx.UpdateWallet(ctx, w); err != nil {
		return model.Bid{}, nil, fmt.Errorf("service: failed to reserve funds for bidder %s: %w", bidderID, err)
	}

	bid := model.Bid{
		BidID:         utils.GenerateID(),
		AuctionID:     a.AuctionID,
		BidderID:      bidderID,
		AmountCents:   amountCents,
		MaxBidCents:   maxBidCents,
		IsWinning:     true,
		IsAutomatic:   automatic,
		FundsReserved: true,
		CreatedAt:     now,
	}
	if err := tx.InsertBid(ctx, bid); err != nil {
		return model.Bid{}, nil, fmt.Errorf("service: failed to record bid for auction %s by user %s: %w", a.AuctionID, bidderID, err)
	}
	if err := tx.InsertLedgerEntry(ctx, model.LedgerEntry{
		EntryID:     utils.GenerateID(),
		UserID:      bidderID,
		AmountCents: -amountCents,
		Kind:        model.EntryBidReserved,
		Reference:   bid.BidID,
		CreatedAt:   now,
	}); err != nil {
		return model.Bid{}, nil, fmt.Errorf("service: failed to record reservation for bid %s: %w", bid.BidID, err)
	}

	a.CurrentPriceCents = amountCents
	a.BidCount++
	a.WinnerID = bidderID
	a.WinningBidID = bid.BidID
	a.UpdatedAt = now
	return bid, displaced, nil
}

// resolveProxyBids runs the proxy worklist until no standing proxy can
// beat the current price. Each round the highest-ceiling proxy raises
// by one increment, so two competing proxies bid each other up until
// the lower ceiling is exhausted. A proxy whose owner no longer has
// the funds for the next raise is skipped for the rest of the round.
func (s *AuctionService) resolveProxyBids(ctx context.Context, tx repository.Tx, a *model.Auction) ([]model.Bid, []model.Bid, error) {
	var placed, displaced []model.Bid
	skip := make(map[string]bool)

	for {
		proxies, err := tx.StandingProxyBids(ctx, a.AuctionID)
		if err != nil {
			return nil, nil, fmt.Errorf("service: failed to load proxy bids for auction %s: %w", a.AuctionID, err)
		}

		raise := a.CurrentPriceCents + a.BidIncrementCents
		var next *model.Bid
		for i := range proxies {
			p := &proxies[i]
			if p.BidderID == a.WinnerID || skip[p.BidderID] {
				continue
			}
			if p.MaxBidCents < raise {
				continue
			}
			next = p
			break
		}
		if next == nil {
			return placed, displaced, nil
		}

		// Check funds up front so a broke proxy never leaves the
		// transaction half applied.
		w, err := tx.LockWallet(ctx, next.BidderID)
		if err != nil {
			return nil, nil, fmt.Errorf("service: failed to lock wallet for proxy bidder %s: %w", next.BidderID, err)
		}
		if w.AvailableCents < raise {
			skip[next.BidderID] = true
			continue
		}

		b, d, err := s.applyBid(ctx, tx, a, next.BidderID, raise, next.MaxBidCents, true)
		if err != nil {
			return nil, nil, err
		}
		placed = append(placed, b)
		displaced = append(displaced, d...)
	}
}

// releaseReservation returns a bid's reserved funds to its bidder's
// available balance and records the movement.
func (s *AuctionService) releaseReservation(ctx context.Context, tx repository.Tx, b model.Bid, now time.Time) error {
	w, err := tx.LockWallet(ctx, b.BidderID)
	if err != nil {
		return fmt.Errorf("service: failed to lock wallet for bidder %s: %w", b.BidderID, err)
	}
	w.AvailableCents += b.AmountCents
	w.UpdatedAt = now
	if err := tx.UpdateWallet(ctx, w); err != nil {
		return fmt.Errorf("service: failed to release funds for bidder %s: %w", b.BidderID, err)
	}
	b.FundsReserved = false
	if err := tx.UpdateBid(ctx, b); err != nil {
		return fmt.Errorf("service: failed to update bid %s: %w", b.BidID, err)
	}
	if err := tx.InsertLedgerEntry(ctx, model.LedgerEntry{
		EntryID:     utils.GenerateID(),
		UserID:      b.BidderID,
		AmountCents: b.AmountCents,
		Kind:        model.EntryBidReleased,
		Reference:   b.BidID,
		CreatedAt:   now,
	}); err != nil {
		return fmt.Errorf("service: failed to record release for bid %s: %w", b.BidID, err)
	}
	return nil
}

// notifyOutbid tells each displaced bidder they lost the lead. The
// bidder holding the lead after proxy resolution is not notified, and
// each bidder is told at most once per placement.
func (s *AuctionService) notifyOutbid(ctx context.Context, auctionID, winnerID string, displaced []model.Bid) {
	seen := make(map[string]bool)
	for _, b := range displaced {
		if seen[b.BidderID] || b.BidderID == winnerID {
			continue
		}
		seen[b.BidderID] = true
		s.notifier.Notify(ctx, notify.Notification{
			UserID:  b.BidderID,
			Type:    notify.TypeOutbid,
			Title:   "You have been outbid",
			Message: "Another bidder has taken the lead on an auction you bid on",
			Data:    map[string]any{"auction_id": auctionID, "bid_id": b.BidID},
		})
	}
}

// bidableState checks that an auction can accept bids right now.
func bidableState(a model.Auction, now time.Time) error {
	switch a.Status {
	case model.AuctionScheduled:
		return fmt.Errorf("service: %w - auction %s has not started", auctionerrors.ErrAuctionNotActive, a.AuctionID)
	case model.AuctionEnded:
		return fmt.Errorf("service: %w", auctionerrors.ErrAuctionEnded)
	}
	if !now.Before(a.EndTime) {
		return fmt.Errorf("service: %w", auctionerrors.ErrAuctionEndedByTime)
	}
	return nil
}

// validateBidInput checks basic input validity before any locking.
func validateBidInput(auctionID, bidderID string, amountCents, maxBidCents int64) error {
	if auctionID == "" || bidderID == "" {
		return fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if amountCents <= 0 {
		return fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}
	if maxBidCents != 0 && maxBidCents < amountCents {
		return fmt.Errorf("service: %w - proxy ceiling below bid amount", auctionerrors.ErrInvalidBid)
	}
	return nil
}
