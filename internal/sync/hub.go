package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rmacedo/custeio/internal/domain/pricing"
	"github.com/redis/go-redis/v9"
)

// SnapshotLoader re-reads the whole dataset document. Subscribers always
// receive full snapshots, never deltas, so update ordering cannot leave a
// client with a half-applied state.
type SnapshotLoader func(ctx context.Context) (pricing.Dataset, error)

// Hub fans dataset snapshots out to live stream subscribers. A change
// signal (local upload or redis pub/sub from another instance) triggers one
// snapshot load that is broadcast to every subscriber.
type Hub struct {
	load SnapshotLoader
	log  *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]chan pricing.Dataset
}

func NewHub(load SnapshotLoader, log *slog.Logger) *Hub {
	return &Hub{
		load: load,
		log:  log,
		subs: make(map[int]chan pricing.Dataset),
	}
}

// Subscribe registers a live listener. The returned cancel func must be
// called when the client goes away; it closes the channel.
func (h *Hub) Subscribe() (<-chan pricing.Dataset, func()) {
	ch := make(chan pricing.Dataset, 1)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcast loads one fresh snapshot and hands it to every subscriber.
// A slow subscriber keeps only the newest snapshot; stale ones are dropped
// since each delivery replaces the whole state anyway.
func (h *Hub) Broadcast(ctx context.Context) {
	ds, err := h.load(ctx)

	if err != nil {
		h.log.Error("dataset snapshot load failed", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- ds:
		default:
			// drop the stale buffered snapshot, keep the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ds:
			default:
			}
		}
	}
}

// Run drains the redis subscription until ctx is done. Errors are logged
// and retried; the feed degrades to upload-local broadcasts if redis is
// unreachable.
func (h *Hub) Run(ctx context.Context, pubsub *redis.PubSub) {
	defer func() {
		_ = pubsub.Close()
	}()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				h.log.Error("dataset pub/sub channel closed")
				return
			}
			_ = msg

			bctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			h.Broadcast(bctx)
			cancel()
		}
	}
}
