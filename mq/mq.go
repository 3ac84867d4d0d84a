package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"panierbio/models"
	"panierbio/rdx"
)

const eventChannel = "marketplace-events"

// Bus publishes entity events to Redis pub/sub. Emission is best-effort:
// a failed publish is logged and the request proceeds.
type Bus struct {
	cache *rdx.Client
}

func NewBus(cache *rdx.Client) *Bus {
	return &Bus{cache: cache}
}

// Emit publishes an event on the marketplace channel.
func (b *Bus) Emit(ctx context.Context, event models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[mq] marshal event failed: %v", err)
		return
	}
	if err := b.cache.Publish(ctx, eventChannel, data); err != nil {
		log.Printf("[mq] publish %s failed: %v", event.Method, err)
	}
}

// PendingKey is the Redis counter of a seller's not-yet-completed orders,
// surfaced on the seller dashboard.
func PendingKey(sellerID string) string {
	return fmt.Sprintf("seller:%s:pending", sellerID)
}

// StartStatsWorker consumes marketplace events and keeps the per-seller
// pending-order counters current. Runs until ctx is cancelled.
func (b *Bus) StartStatsWorker(ctx context.Context) {
	sub := b.cache.Subscribe(ctx, eventChannel)
	defer sub.Close()

	log.Println("[mq] stats worker listening for marketplace events")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("[mq] bad event payload: %v", err)
				continue
			}
			b.apply(ctx, event)
		}
	}
}

// pendingDelta maps an event to its effect on the sellers' pending
// counters: +1 on creation, -1 once the order reaches a terminal status.
func pendingDelta(event models.Event) int64 {
	if event.EntityType != "order" {
		return 0
	}
	switch {
	case event.Method == "POST":
		return 1
	case event.Method == "PUT" && terminalStatus(event.Status):
		return -1
	}
	return 0
}

func terminalStatus(status string) bool {
	return status == models.StatusCompleted || status == models.StatusCancelled
}

func (b *Bus) apply(ctx context.Context, event models.Event) {
	delta := pendingDelta(event)
	if delta == 0 {
		return
	}

	for _, sellerID := range event.SellerIDs {
		if _, err := b.cache.IncrBy(ctx, PendingKey(sellerID), delta); err != nil {
			log.Printf("[mq] pending counter update failed for %s: %v", sellerID, err)
		}
	}
}
