package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	model "auction-house/internal/models"
	"auction-house/utils"
)

// Events pushed to auction watchers. Best effort only: the core never
// depends on delivery.
const (
	EventNewBid          = "newBid"
	EventAuctionEnded    = "auctionEnded"
	EventAuctionExtended = "auctionExtended"
)

// KeyAuctionChannel is the pub/sub channel for one auction's events.
const KeyAuctionChannel = "auction:%s"

// Event is the envelope published on an auction channel.
type Event struct {
	Event      string    `json:"event"`
	AuctionID  string    `json:"auction_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// Publisher fans auction events out to interested clients.
type Publisher interface {
	NewBid(ctx context.Context, auctionID string, b model.Bid)
	AuctionEnded(ctx context.Context, a model.Auction)
	AuctionExtended(ctx context.Context, auctionID string, newEnd time.Time)
}

// Nop discards all events. Used in tests.
type Nop struct{}

func (Nop) NewBid(ctx context.Context, auctionID string, b model.Bid)               {}
func (Nop) AuctionEnded(ctx context.Context, a model.Auction)                       {}
func (Nop) AuctionExtended(ctx context.Context, auctionID string, newEnd time.Time) {}

// NewClient creates a Redis client for the fan-out.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		WriteTimeout: 2 * time.Second,
	})
}

// RedisPublisher pushes events over Redis pub/sub, one channel per
// auction.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) publish(ctx context.Context, auctionID string, ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		utils.Error("realtime: marshal failed", map[string]any{"event": ev.Event, "error": err.Error()})
		return
	}
	channel := fmt.Sprintf(KeyAuctionChannel, auctionID)
	if err := p.rdb.Publish(ctx, channel, b).Err(); err != nil {
		utils.Warn("realtime: publish failed", map[string]any{"channel": channel, "error": err.Error()})
	}
}

func (p *RedisPublisher) NewBid(ctx context.Context, auctionID string, b model.Bid) {
	p.publish(ctx, auctionID, Event{
		Event:      EventNewBid,
		AuctionID:  auctionID,
		OccurredAt: time.Now().UTC(),
		Data:       b,
	})
}

func (p *RedisPublisher) AuctionEnded(ctx context.Context, a model.Auction) {
	p.publish(ctx, a.AuctionID, Event{
		Event:      EventAuctionEnded,
		AuctionID:  a.AuctionID,
		OccurredAt: time.Now().UTC(),
		Data:       a,
	})
}

func (p *RedisPublisher) AuctionExtended(ctx context.Context, auctionID string, newEnd time.Time) {
	p.publish(ctx, auctionID, Event{
		Event:      EventAuctionExtended,
		AuctionID:  auctionID,
		OccurredAt: time.Now().UTC(),
		Data:       map[string]any{"end_time": newEnd},
	})
}
