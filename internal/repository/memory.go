package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

// MemoryStore is a concurrency-safe in-memory implementation of Store,
// used by tests and local runs. Atomic applies fn to a copy of the state
// and swaps it in on success, so a failed unit of work leaves nothing
// behind. That is the same contract the Postgres store gets from
// transactions.
// Serialization is coarser than the per-row locks in Postgres: one mutex
// guards all transactions, which trivially satisfies the ordering
// contract for a single process.
type MemoryStore struct {
	mu sync.RWMutex
	s  *memState
}

type memState struct {
	auctions    map[string]model.Auction
	bids        map[string][]model.Bid // key: auctionID
	wallets     map[string]model.Wallet
	orders      map[string]model.Order
	escrows     map[string]model.Escrow
	withdrawals map[string]model.Withdrawal
	ledger      []model.LedgerEntry
}

// NewMemoryStore creates a new in-memory store instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{s: &memState{
		auctions:    make(map[string]model.Auction),
		bids:        make(map[string][]model.Bid),
		wallets:     make(map[string]model.Wallet),
		orders:      make(map[string]model.Order),
		escrows:     make(map[string]model.Escrow),
		withdrawals: make(map[string]model.Withdrawal),
	}}
}

func (st *memState) clone() *memState {
	c := &memState{
		auctions:    make(map[string]model.Auction, len(st.auctions)),
		bids:        make(map[string][]model.Bid, len(st.bids)),
		wallets:     make(map[string]model.Wallet, len(st.wallets)),
		orders:      make(map[string]model.Order, len(st.orders)),
		escrows:     make(map[string]model.Escrow, len(st.escrows)),
		withdrawals: make(map[string]model.Withdrawal, len(st.withdrawals)),
		ledger:      append([]model.LedgerEntry(nil), st.ledger...),
	}
	for k, v := range st.auctions {
		c.auctions[k] = v
	}
	for k, v := range st.bids {
		c.bids[k] = append([]model.Bid(nil), v...)
	}
	for k, v := range st.wallets {
		c.wallets[k] = v
	}
	for k, v := range st.orders {
		c.orders[k] = v
	}
	for k, v := range st.escrows {
		c.escrows[k] = v
	}
	for k, v := range st.withdrawals {
		c.withdrawals[k] = v
	}
	return c
}

// Atomic runs fn against a private copy of the state and publishes the
// copy only if fn succeeds.
func (m *MemoryStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.s.clone()
	if err := fn(&memTx{s: work}); err != nil {
		return err
	}
	m.s = work
	return nil
}

// --- read-only queries ---

func (m *MemoryStore) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return a, nil
}

func (m *MemoryStore) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.s.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return append([]model.Bid(nil), m.s.bids[auctionID]...), nil
}

func (m *MemoryStore) GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return winningBid(m.s, auctionID)
}

func (m *MemoryStore) GetWallet(ctx context.Context, userID string) (model.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.s.wallets[userID]
	if !ok {
		return model.Wallet{}, fmt.Errorf("get wallet %s: %w", userID, auctionerrors.ErrWalletNotFound)
	}
	return w, nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.s.orders[orderID]
	if !ok {
		return model.Order{}, fmt.Errorf("get order %s: %w", orderID, auctionerrors.ErrOrderNotFound)
	}
	return o, nil
}

func (m *MemoryStore) GetEscrow(ctx context.Context, escrowID string) (model.Escrow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.s.escrows[escrowID]
	if !ok {
		return model.Escrow{}, fmt.Errorf("get escrow %s: %w", escrowID, auctionerrors.ErrEscrowNotFound)
	}
	return e, nil
}

func (m *MemoryStore) GetEscrowByOrder(ctx context.Context, orderID string) (model.Escrow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.s.escrows {
		if e.OrderID == orderID {
			return e, nil
		}
	}
	return model.Escrow{}, fmt.Errorf("get escrow for order %s: %w", orderID, auctionerrors.ErrEscrowNotFound)
}

func (m *MemoryStore) ExpiredAuctionIDs(ctx context.Context, now time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, a := range m.s.auctions {
		if a.Status == model.AuctionActive && !a.EndTime.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) DueScheduledAuctionIDs(ctx context.Context, now time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, a := range m.s.auctions {
		if a.Status == model.AuctionScheduled && !a.StartTime.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) ExpiredEscrowIDs(ctx context.Context, now time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, e := range m.s.escrows {
		if e.Status == model.EscrowHolding && !e.ReleaseDate.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// --- seed helpers ---

// AddAuction seeds an auction. Intended for tests and local bootstrap.
func (m *MemoryStore) AddAuction(a model.Auction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.CurrentPriceCents == 0 {
		a.CurrentPriceCents = a.StartingPriceCents
	}
	m.s.auctions[a.AuctionID] = a
}

// AddWallet seeds a wallet. Intended for tests and local bootstrap.
func (m *MemoryStore) AddWallet(w model.Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.wallets[w.UserID] = w
}

// AddOrder seeds an order. Intended for tests.
func (m *MemoryStore) AddOrder(o model.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.orders[o.OrderID] = o
}

// AddEscrow seeds an escrow. Intended for tests.
func (m *MemoryStore) AddEscrow(e model.Escrow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.escrows[e.EscrowID] = e
}

// LedgerEntries returns a copy of the transaction ledger. Intended for tests.
func (m *MemoryStore) LedgerEntries() []model.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.LedgerEntry(nil), m.s.ledger...)
}

// --- transactional view ---

type memTx struct{ s *memState }

func winningBid(s *memState, auctionID string) (model.Bid, error) {
	for _, b := range s.bids[auctionID] {
		if b.IsWinning {
			return b, nil
		}
	}
	return model.Bid{}, fmt.Errorf("winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
}

func (t *memTx) LockAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	a, ok := t.s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("lock auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return a, nil
}

func (t *memTx) UpdateAuction(ctx context.Context, a model.Auction) error {
	if _, ok := t.s.auctions[a.AuctionID]; !ok {
		return fmt.Errorf("update auction %s: %w", a.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	t.s.auctions[a.AuctionID] = a
	return nil
}

func (t *memTx) InsertBid(ctx context.Context, b model.Bid) error {
	if _, ok := t.s.auctions[b.AuctionID]; !ok {
		return fmt.Errorf("insert bid for auction %s: %w", b.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	t.s.bids[b.AuctionID] = append(t.s.bids[b.AuctionID], b)
	return nil
}

func (t *memTx) UpdateBid(ctx context.Context, b model.Bid) error {
	bids := t.s.bids[b.AuctionID]
	for i := range bids {
		if bids[i].BidID == b.BidID {
			bids[i] = b
			return nil
		}
	}
	return fmt.Errorf("update bid %s: %w", b.BidID, auctionerrors.ErrNoBids)
}

func (t *memTx) WinningBid(ctx context.Context, auctionID string) (model.Bid, error) {
	return winningBid(t.s, auctionID)
}

func (t *memTx) ReservedBids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	var out []model.Bid
	for _, b := range t.s.bids[auctionID] {
		if b.FundsReserved {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *memTx) StandingProxyBids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	var out []model.Bid
	for _, b := range t.s.bids[auctionID] {
		if b.MaxBidCents > 0 && !b.IsWinning {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MaxBidCents != out[j].MaxBidCents {
			return out[i].MaxBidCents > out[j].MaxBidCents
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (t *memTx) LockWallet(ctx context.Context, userID string) (model.Wallet, error) {
	w, ok := t.s.wallets[userID]
	if !ok {
		return model.Wallet{}, fmt.Errorf("lock wallet %s: %w", userID, auctionerrors.ErrWalletNotFound)
	}
	return w, nil
}

func (t *memTx) UpdateWallet(ctx context.Context, w model.Wallet) error {
	if _, ok := t.s.wallets[w.UserID]; !ok {
		return fmt.Errorf("update wallet %s: %w", w.UserID, auctionerrors.ErrWalletNotFound)
	}
	t.s.wallets[w.UserID] = w
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, o model.Order) error {
	t.s.orders[o.OrderID] = o
	return nil
}

func (t *memTx) LockOrder(ctx context.Context, orderID string) (model.Order, error) {
	o, ok := t.s.orders[orderID]
	if !ok {
		return model.Order{}, fmt.Errorf("lock order %s: %w", orderID, auctionerrors.ErrOrderNotFound)
	}
	return o, nil
}

func (t *memTx) UpdateOrder(ctx context.Context, o model.Order) error {
	if _, ok := t.s.orders[o.OrderID]; !ok {
		return fmt.Errorf("update order %s: %w", o.OrderID, auctionerrors.ErrOrderNotFound)
	}
	t.s.orders[o.OrderID] = o
	return nil
}

func (t *memTx) InsertEscrow(ctx context.Context, e model.Escrow) error {
	t.s.escrows[e.EscrowID] = e
	return nil
}

func (t *memTx) LockEscrow(ctx context.Context, escrowID string) (model.Escrow, error) {
	e, ok := t.s.escrows[escrowID]
	if !ok {
		return model.Escrow{}, fmt.Errorf("lock escrow %s: %w", escrowID, auctionerrors.ErrEscrowNotFound)
	}
	return e, nil
}

func (t *memTx) LockEscrowByOrder(ctx context.Context, orderID string) (model.Escrow, error) {
	for _, e := range t.s.escrows {
		if e.OrderID == orderID {
			return e, nil
		}
	}
	return model.Escrow{}, fmt.Errorf("lock escrow for order %s: %w", orderID, auctionerrors.ErrEscrowNotFound)
}

func (t *memTx) UpdateEscrow(ctx context.Context, e model.Escrow) error {
	if _, ok := t.s.escrows[e.EscrowID]; !ok {
		return fmt.Errorf("update escrow %s: %w", e.EscrowID, auctionerrors.ErrEscrowNotFound)
	}
	t.s.escrows[e.EscrowID] = e
	return nil
}

func (t *memTx) InsertWithdrawal(ctx context.Context, wd model.Withdrawal) error {
	t.s.withdrawals[wd.WithdrawalID] = wd
	return nil
}

func (t *memTx) LockWithdrawal(ctx context.Context, withdrawalID string) (model.Withdrawal, error) {
	wd, ok := t.s.withdrawals[withdrawalID]
	if !ok {
		return model.Withdrawal{}, fmt.Errorf("lock withdrawal %s: %w", withdrawalID, auctionerrors.ErrWithdrawalNotFound)
	}
	return wd, nil
}

func (t *memTx) UpdateWithdrawal(ctx context.Context, wd model.Withdrawal) error {
	if _, ok := t.s.withdrawals[wd.WithdrawalID]; !ok {
		return fmt.Errorf("update withdrawal %s: %w", wd.WithdrawalID, auctionerrors.ErrWithdrawalNotFound)
	}
	t.s.withdrawals[wd.WithdrawalID] = wd
	return nil
}

func (t *memTx) InsertLedgerEntry(ctx context.Context, e model.LedgerEntry) error {
	t.s.ledger = append(t.s.ledger, e)
	return nil
}
