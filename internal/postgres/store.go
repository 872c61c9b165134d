package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
)

// DefaultLockTimeout bounds how long a unit of work waits on a row
// lock before giving up with ErrLockTimeout.
const DefaultLockTimeout = 3 * time.Second

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the scan
// helpers work inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore implements repository.Store on PostgreSQL. Row locks
// (SELECT ... FOR UPDATE) serialize concurrent units of work touching
// the same auction, wallet or escrow.
type PgStore struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, lockTimeout: DefaultLockTimeout}
}

// Atomic runs fn inside one database transaction. A lock_timeout is
// set so a unit of work stuck behind a long-running peer fails fast
// with a retryable error instead of queueing indefinitely.
func (s *PgStore) Atomic(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("repository: failed to set lock timeout: %w", err)
	}
	if err := fn(&pgTx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PgStore) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	return getAuction(ctx, s.pool, auctionID, "")
}

func (s *PgStore) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+bidCols+` FROM auction_bids WHERE auction_id=$1 ORDER BY created_at`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query bids for auction %s: %w", auctionID, err)
	}
	return scanBids(rows)
}

func (s *PgStore) GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error) {
	b, err := scanBid(s.pool.QueryRow(ctx,
		`SELECT `+bidCols+` FROM auction_bids WHERE auction_id=$1 AND is_winning`, auctionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Bid{}, fmt.Errorf("repository: no winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
		}
		return model.Bid{}, fmt.Errorf("repository: failed to get winning bid for auction %s: %w", auctionID, mapErr(err))
	}
	return b, nil
}

func (s *PgStore) GetWallet(ctx context.Context, userID string) (model.Wallet, error) {
	return getWallet(ctx, s.pool, userID, "")
}

func (s *PgStore) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	return getOrder(ctx, s.pool, orderID, "")
}

func (s *PgStore) GetEscrow(ctx context.Context, escrowID string) (model.Escrow, error) {
	return getEscrow(ctx, s.pool,
		`SELECT `+escrowCols+` FROM escrows WHERE escrow_id=$1`, "escrow", escrowID)
}

func (s *PgStore) GetEscrowByOrder(ctx context.Context, orderID string) (model.Escrow, error) {
	return getEscrow(ctx, s.pool,
		`SELECT `+escrowCols+` FROM escrows WHERE order_id=$1`, "escrow for order", orderID)
}

func (s *PgStore) ExpiredAuctionIDs(ctx context.Context, now time.Time) ([]string, error) {
	return s.ids(ctx,
		`SELECT auction_id FROM auctions WHERE status='active' AND end_time <= $1`, now)
}

func (s *PgStore) DueScheduledAuctionIDs(ctx context.Context, now time.Time) ([]string, error) {
	return s.ids(ctx,
		`SELECT auction_id FROM auctions WHERE status='scheduled' AND start_time <= $1`, now)
}

func (s *PgStore) ExpiredEscrowIDs(ctx context.Context, now time.Time) ([]string, error) {
	return s.ids(ctx,
		`SELECT escrow_id FROM escrows WHERE status='holding' AND release_date <= $1`, now)
}

func (s *PgStore) ids(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: sweep query failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repository: sweep scan failed: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// mapErr converts driver errors into the package's sentinel errors
// where one applies.
func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "55P03" {
		return auctionerrors.ErrLockTimeout
	}
	return err
}
