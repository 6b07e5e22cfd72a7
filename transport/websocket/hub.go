package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

const subscriberBuffer = 32

// Subscription is one observer's ordered feed of a game's events.
type Subscription struct {
	events chan json.RawMessage
}

// Events returns the feed channel. It is closed on Unsubscribe.
func (that *Subscription) Events() <-chan json.RawMessage {
	return that.events
}

// Hub fans session events out to the connections watching each game. It is
// the engine's notification sink: the coordinator publishes events here in
// emission order, and the hub preserves that order per subscriber.
type Hub struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[string]map[*Subscription]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger.With("component", "ws_hub"),
		subscribers: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers an observer for one game's events.
func (that *Hub) Subscribe(gameID string) *Subscription {
	sub := &Subscription{
		events: make(chan json.RawMessage, subscriberBuffer),
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.subscribers[gameID] == nil {
		that.subscribers[gameID] = make(map[*Subscription]struct{})
	}
	that.subscribers[gameID][sub] = struct{}{}

	return sub
}

// Unsubscribe removes the observer and closes its feed.
func (that *Hub) Unsubscribe(gameID string, sub *Subscription) {
	that.mu.Lock()
	defer that.mu.Unlock()

	subs, ok := that.subscribers[gameID]
	if !ok {
		return
	}

	if _, ok = subs[sub]; !ok {
		return
	}

	delete(subs, sub)
	close(sub.events)

	if len(subs) == 0 {
		delete(that.subscribers, gameID)
	}
}

// Publish delivers one event to every subscriber of the game. It runs
// inside the game's critical section, so it never blocks: a subscriber
// whose buffer is full loses the event and has to resynchronize from a
// snapshot.
func (that *Hub) Publish(_ context.Context, event gomoku.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		that.logger.Error("failed to marshal event", "gameID", event.GameID, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for sub := range that.subscribers[event.GameID] {
		select {
		case sub.events <- payload:
		default:
			that.logger.Warn("subscriber too slow, dropping event", "gameID", event.GameID, "type", event.Type)
		}
	}
}
