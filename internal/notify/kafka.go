package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"auction-house/utils"
)

// Topic carrying user notifications out of the core.
const TopicNotifications = "marketplace.notifications"

// Producer is an async Kafka writer with a buffered inbox. Messages are
// flushed in a background loop; Close drains the inbox before the writer
// shuts down. The inbox channel itself is never closed, so Close and a
// context cancellation may arrive in any order and Publish stays safe
// after shutdown has begun.
type Producer struct {
	w        *kafka.Writer
	inbox    chan kafka.Message
	done     chan struct{}
	closeCh  chan struct{}
	stopOnce sync.Once
}

// NewProducer creates a producer for the given topic.
func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

// Start runs the flush loop until ctx is cancelled or Close is called.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case <-p.done:
				p.drain()
				return
			case m := <-p.inbox:
				if err := p.w.WriteMessages(context.Background(), m); err != nil {
					utils.Warn("notify: kafka write failed", map[string]any{"error": err.Error()})
				}
			}
		}
	}()
}

// drain flushes whatever is still buffered, then shuts the writer down.
func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			_ = p.w.WriteMessages(context.Background(), m)
		default:
			_ = p.w.Close()
			return
		}
	}
}

// Publish enqueues a message. Drops with a warning if the producer is
// shutting down or the inbox is full so a slow broker never blocks a
// request path.
func (p *Producer) Publish(key, value []byte) {
	select {
	case <-p.done:
		utils.Warn("notify: producer closed, dropping message", map[string]any{"topic": p.w.Topic})
		return
	default:
	}
	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now()}:
	default:
		utils.Warn("notify: inbox full, dropping message", map[string]any{"topic": p.w.Topic})
	}
}

// Close stops accepting messages and lets the loop flush the rest. Safe
// to call more than once and alongside cancellation of the Start context.
func (p *Producer) Close() { p.stopOnce.Do(func() { close(p.done) }) }

// WaitClosed blocks until the flush loop has exited.
func (p *Producer) WaitClosed() { <-p.closeCh }

// KafkaNotifier publishes notifications to the notification topic,
// keyed by recipient so one user's notifications stay ordered.
type KafkaNotifier struct {
	producer *Producer
}

// NewKafkaNotifier wraps an already-started producer.
func NewKafkaNotifier(p *Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: p}
}

// Notify marshals and enqueues the notification. Failures are logged and
// swallowed: the committed state change must not be rolled back over a
// delivery problem.
func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(n)
	if err != nil {
		utils.Error("notify: marshal failed", map[string]any{"type": n.Type, "error": err.Error()})
		return
	}
	k.producer.Publish([]byte(n.UserID), b)
}
