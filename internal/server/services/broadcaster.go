package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultSubscriberBuffer = 16

type subscriber struct {
	ch        chan []byte
	createdAt time.Time
}

// Broadcaster fans out payloads to live stream subscribers.
// Sends never block: a subscriber whose buffer is full misses the event.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[string]*subscriber
	closed bool

	maxAge time.Duration
	buffer int
	logger *zap.Logger
	now    func() time.Time
}

// NewBroadcaster creates a registry. Subscribers older than maxAge are
// dropped by EvictExpired; a zero maxAge disables eviction.
func NewBroadcaster(maxAge time.Duration, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		subs:   make(map[string]*subscriber),
		maxAge: maxAge,
		buffer: defaultSubscriberBuffer,
		logger: logger.Named("broadcaster"),
		now:    time.Now,
	}
}

// Subscribe registers a new subscriber. The returned channel is closed on
// Unsubscribe, eviction or Close.
func (b *Broadcaster) Subscribe() (string, <-chan []byte) {
	id := uuid.NewString()
	ch := make(chan []byte, b.buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return id, ch
	}
	b.subs[id] = &subscriber{ch: ch, createdAt: b.now()}
	return id, ch
}

// Unsubscribe removes id. Unknown ids are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(id)
}

func (b *Broadcaster) removeLocked(id string) {
	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.ch)
}

// Broadcast queues payload for every subscriber and returns how many
// accepted it.
func (b *Broadcaster) Broadcast(payload []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for id, sub := range b.subs {
		select {
		case sub.ch <- payload:
			delivered++
		default:
			b.logger.Debug("subscriber buffer full, dropping event", zap.String("subscriber", id))
		}
	}
	return delivered
}

func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// EvictExpired drops subscribers connected for longer than maxAge.
func (b *Broadcaster) EvictExpired() int {
	if b.maxAge <= 0 {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	evicted := 0
	for id, sub := range b.subs {
		if now.Sub(sub.createdAt) > b.maxAge {
			b.removeLocked(id)
			evicted++
		}
	}
	return evicted
}

// Run evicts stale subscribers every interval until ctx is done, then
// closes the broadcaster.
func (b *Broadcaster) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer b.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.EvictExpired(); n > 0 {
				b.logger.Info("evicted stale stream subscribers", zap.Int("count", n))
			}
		}
	}
}

// Close disconnects every subscriber. Later Subscribe calls get a closed
// channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id := range b.subs {
		b.removeLocked(id)
	}
}
