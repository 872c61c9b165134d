package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

const (
	auctionCols = `auction_id, seller_id, title, description, starting_price_cents, current_price_cents,
		reserve_price_cents, bid_increment_cents, start_time, end_time, auto_extend, extension_seconds,
		status, winner_id, winning_bid_id, bid_count, created_at, updated_at`
	bidCols = `bid_id, auction_id, bidder_id, amount_cents, max_bid_cents, is_winning, is_automatic,
		funds_reserved, created_at`
	walletCols = `user_id, total_cents, available_cents, pending_withdrawal_cents, updated_at`
	orderCols  = `order_id, auction_id, buyer_id, seller_id, amount_cents, status, created_at, updated_at`
	escrowCols = `escrow_id, order_id, buyer_id, seller_id, amount_cents, status, release_date,
		release_reason, dispute_id, created_at, released_at`
	withdrawalCols = `withdrawal_id, seller_id, amount_cents, status, note, created_at, resolved_at`
)

// pgTx implements repository.Tx on an open pgx transaction.
type pgTx struct {
	q querier
}

func (t *pgTx) LockAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	return getAuction(ctx, t.q, auctionID, " FOR UPDATE")
}

func (t *pgTx) UpdateAuction(ctx context.Context, a model.Auction) error {
	ct, err := t.q.Exec(ctx,
		`UPDATE auctions SET current_price_cents=$2, end_time=$3, status=$4, winner_id=$5,
			winning_bid_id=$6, bid_count=$7, updated_at=$8
		 WHERE auction_id=$1`,
		a.AuctionID, a.CurrentPriceCents, a.EndTime, string(a.Status), a.WinnerID,
		a.WinningBidID, a.BidCount, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to update auction %s: %w", a.AuctionID, mapErr(err))
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("repository: auction %s: %w", a.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

func (t *pgTx) InsertBid(ctx context.Context, b model.Bid) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO auction_bids (`+bidCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		b.BidID, b.AuctionID, b.BidderID, b.AmountCents, b.MaxBidCents, b.IsWinning,
		b.IsAutomatic, b.FundsReserved, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert bid %s: %w", b.BidID, mapErr(err))
	}
	return nil
}

func (t *pgTx) UpdateBid(ctx context.Context, b model.Bid) error {
	ct, err := t.q.Exec(ctx,
		`UPDATE auction_bids SET is_winning=$2, funds_reserved=$3 WHERE bid_id=$1`,
		b.BidID, b.IsWinning, b.FundsReserved)
	if err != nil {
		return fmt.Errorf("repository: failed to update bid %s: %w", b.BidID, mapErr(err))
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("repository: bid %s: %w", b.BidID, auctionerrors.ErrNoBids)
	}
	return nil
}

func (t *pgTx) WinningBid(ctx context.Context, auctionID string) (model.Bid, error) {
	b, err := scanBid(t.q.QueryRow(ctx,
		`SELECT `+bidCols+` FROM auction_bids WHERE auction_id=$1 AND is_winning`, auctionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Bid{}, fmt.Errorf("repository: no winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
		}
		return model.Bid{}, fmt.Errorf("repository: failed to get winning bid for auction %s: %w", auctionID, mapErr(err))
	}
	return b, nil
}

func (t *pgTx) ReservedBids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	rows, err := t.q.Query(ctx,
		`SELECT `+bidCols+` FROM auction_bids WHERE auction_id=$1 AND funds_reserved ORDER BY created_at`,
		auctionID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query reserved bids for auction %s: %w", auctionID, mapErr(err))
	}
	return scanBids(rows)
}

func (t *pgTx) StandingProxyBids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	rows, err := t.q.Query(ctx,
		`SELECT `+bidCols+` FROM auction_bids
		 WHERE auction_id=$1 AND NOT is_winning AND max_bid_cents > 0
		 ORDER BY max_bid_cents DESC, created_at`,
		auctionID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query proxy bids for auction %s: %w", auctionID, mapErr(err))
	}
	return scanBids(rows)
}

func (t *pgTx) LockWallet(ctx context.Context, userID string) (model.Wallet, error) {
	return getWallet(ctx, t.q, userID, " FOR UPDATE")
}

func (t *pgTx) UpdateWallet(ctx context.Context, w model.Wallet) error {
	ct, err := t.q.Exec(ctx,
		`UPDATE wallets SET total_cents=$2, available_cents=$3, pending_withdrawal_cents=$4, updated_at=$5
		 WHERE user_id=$1`,
		w.UserID, w.TotalCents, w.AvailableCents, w.PendingWithdrawalCents, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to update wallet for user %s: %w", w.UserID, mapErr(err))
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("repository: wallet for user %s: %w", w.UserID, auctionerrors.ErrWalletNotFound)
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o model.Order) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO orders (`+orderCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.OrderID, o.AuctionID, o.BuyerID, o.SellerID, o.AmountCents, string(o.Status),
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order %s: %w", o.OrderID, mapErr(err))
	}
	return nil
}

func (t *pgTx) LockOrder(ctx context.Context, orderID string) (model.Order, error) {
	return getOrder(ctx, t.q, orderID, " FOR UPDATE")
}

func (t *pgTx) UpdateOrder(ctx context.Context, o model.Order) error {
	ct, err := t.q.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=$3 WHERE order_id=$1`,
		o.OrderID, string(o.Status), o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to update order %s: %w", o.OrderID, mapErr(err))
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("repository: order %s: %w", o.OrderID, auctionerrors.ErrOrderNotFound)
	}
	return nil
}

func (t *pgTx) InsertEscrow(ctx context.Context, e model.Escrow) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO escrows (`+escrowCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		e.EscrowID, e.OrderID, e.BuyerID, e.SellerID, e.AmountCents, string(e.Status),
		e.ReleaseDate, e.ReleaseReason, e.DisputeID, e.CreatedAt, e.ReleasedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert escrow %s: %w", e.EscrowID, mapErr(err))
	}
	return nil
}

func (t *pgTx) LockEscrow(ctx context.Context, escrowID string) (model.Escrow, error) {
	return getEscrow(ctx, t.q,
		`SELECT `+escrowCols+` FROM escrows WHERE escrow_id=$1 FOR UPDATE`, "escrow", escrowID)
}

func (t *pgTx) LockEscrowByOrder(ctx context.Context, orderID string) (model.Escrow, error) {
	return getEscrow(ctx, t.q,
		`SELECT `+escrowCols+` FROM escrows WHERE order_id=$1 FOR UPDATE`, "escrow for order", orderID)
}

func (t *pgTx) UpdateEscrow(ctx context.Context, e model.Escrow) error {
	ct, err := t.q.Exec(ctx,
		`UPDATE escrows SET status=$2, release_reason=$3, dispute_id=$4, released_at=$5
		 WHERE escrow_id=$1`,
		e.EscrowID, string(e.Status), e.ReleaseReason, e.DisputeID, e.ReleasedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to update escrow %s: %w", e.EscrowID, mapErr(err))
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("repository: escrow %s: %w", e.EscrowID, auctionerrors.ErrEscrowNotFound)
	}
	return nil
}

func (t *pgTx) InsertWithdrawal(ctx context.Context, wd model.Withdrawal) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO withdrawals (`+withdrawalCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		wd.WithdrawalID, wd.SellerID, wd.AmountCents, string(wd.Status), wd.Note,
		wd.CreatedAt, wd.ResolvedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert withdrawal %s: %w", wd.WithdrawalID, mapErr(err))
	}
	return nil
}

func (t *pgTx) LockWithdrawal(ctx context.Context, withdrawalID string) (model.Withdrawal, error) {
	wd, err := scanWithdrawal(t.q.QueryRow(ctx,
		`SELECT `+withdrawalCols+` FROM withdrawals WHERE withdrawal_id=$1 FOR UPDATE`, withdrawalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Withdrawal{}, fmt.Errorf("repository: withdrawal %s: %w", withdrawalID, auctionerrors.ErrWithdrawalNotFound)
		}
		return model.Withdrawal{}, fmt.Errorf("repository: failed to lock withdrawal %s: %w", withdrawalID, mapErr(err))
	}
	return wd, nil
}

func (t *pgTx) UpdateWithdrawal(ctx context.Context, wd model.Withdrawal) error {
	ct, err := t.q.Exec(ctx,
		`UPDATE withdrawals SET status=$2, note=$3, resolved_at=$4 WHERE withdrawal_id=$1`,
		wd.WithdrawalID, string(wd.Status), wd.Note, wd.ResolvedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to update withdrawal %s: %w", wd.WithdrawalID, mapErr(err))
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("repository: withdrawal %s: %w", wd.WithdrawalID, auctionerrors.ErrWithdrawalNotFound)
	}
	return nil
}

func (t *pgTx) InsertLedgerEntry(ctx context.Context, e model.LedgerEntry) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO transactions (entry_id, user_id, amount_cents, kind, reference, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.EntryID, e.UserID, e.AmountCents, e.Kind, e.Reference, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert ledger entry %s: %w", e.EntryID, mapErr(err))
	}
	return nil
}

func getAuction(ctx context.Context, q querier, auctionID, suffix string) (model.Auction, error) {
	a, err := scanAuction(q.QueryRow(ctx,
		`SELECT `+auctionCols+` FROM auctions WHERE auction_id=$1`+suffix, auctionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Auction{}, fmt.Errorf("repository: auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
		}
		return model.Auction{}, fmt.Errorf("repository: failed to get auction %s: %w", auctionID, mapErr(err))
	}
	return a, nil
}

func getWallet(ctx context.Context, q querier, userID, suffix string) (model.Wallet, error) {
	var w model.Wallet
	err := q.QueryRow(ctx,
		`SELECT `+walletCols+` FROM wallets WHERE user_id=$1`+suffix, userID).
		Scan(&w.UserID, &w.TotalCents, &w.AvailableCents, &w.PendingWithdrawalCents, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Wallet{}, fmt.Errorf("repository: wallet for user %s: %w", userID, auctionerrors.ErrWalletNotFound)
		}
		return model.Wallet{}, fmt.Errorf("repository: failed to get wallet for user %s: %w", userID, mapErr(err))
	}
	return w, nil
}

func getOrder(ctx context.Context, q querier, orderID, suffix string) (model.Order, error) {
	var (
		o      model.Order
		status string
	)
	err := q.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE order_id=$1`+suffix, orderID).
		Scan(&o.OrderID, &o.AuctionID, &o.BuyerID, &o.SellerID, &o.AmountCents, &status,
			&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, fmt.Errorf("repository: order %s: %w", orderID, auctionerrors.ErrOrderNotFound)
		}
		return model.Order{}, fmt.Errorf("repository: failed to get order %s: %w", orderID, mapErr(err))
	}
	o.Status = model.OrderStatus(status)
	return o, nil
}

// getEscrow runs a single-row escrow query. keyLabel names what arg
// identifies ("escrow" or "escrow for order") so errors report the
// right entity when the lookup is keyed by order ID.
func getEscrow(ctx context.Context, q querier, sql, keyLabel, arg string) (model.Escrow, error) {
	var (
		e      model.Escrow
		status string
	)
	err := q.QueryRow(ctx, sql, arg).
		Scan(&e.EscrowID, &e.OrderID, &e.BuyerID, &e.SellerID, &e.AmountCents, &status,
			&e.ReleaseDate, &e.ReleaseReason, &e.DisputeID, &e.CreatedAt, &e.ReleasedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Escrow{}, fmt.Errorf("repository: %s %s: %w", keyLabel, arg, auctionerrors.ErrEscrowNotFound)
		}
		return model.Escrow{}, fmt.Errorf("repository: failed to get %s %s: %w", keyLabel, arg, mapErr(err))
	}
	e.Status = model.EscrowStatus(status)
	return e, nil
}

func scanAuction(row pgx.Row) (model.Auction, error) {
	var (
		a       model.Auction
		extSecs int64
		status  string
	)
	err := row.Scan(&a.AuctionID, &a.SellerID, &a.Title, &a.Description,
		&a.StartingPriceCents, &a.CurrentPriceCents, &a.ReservePriceCents, &a.BidIncrementCents,
		&a.StartTime, &a.EndTime, &a.AutoExtend, &extSecs,
		&status, &a.WinnerID, &a.WinningBidID, &a.BidCount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Auction{}, err
	}
	a.ExtensionDuration = time.Duration(extSecs) * time.Second
	a.Status = model.AuctionStatus(status)
	return a, nil
}

func scanBid(row pgx.Row) (model.Bid, error) {
	var b model.Bid
	err := row.Scan(&b.BidID, &b.AuctionID, &b.BidderID, &b.AmountCents, &b.MaxBidCents,
		&b.IsWinning, &b.IsAutomatic, &b.FundsReserved, &b.CreatedAt)
	if err != nil {
		return model.Bid{}, err
	}
	return b, nil
}

func scanBids(rows pgx.Rows) ([]model.Bid, error) {
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

func scanWithdrawal(row pgx.Row) (model.Withdrawal, error) {
	var (
		wd     model.Withdrawal
		status string
	)
	err := row.Scan(&wd.WithdrawalID, &wd.SellerID, &wd.AmountCents, &status, &wd.Note,
		&wd.CreatedAt, &wd.ResolvedAt)
	if err != nil {
		return model.Withdrawal{}, err
	}
	wd.Status = model.WithdrawalStatus(status)
	return wd, nil
}
