package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/stephancmorris/league-fan-hub/models"
)

// Broadcaster publishes match updates to connected clients. The match
// service takes one by interface so tests can swap in a recorder.
type Broadcaster interface {
	Broadcast(update models.MatchUpdate)
}

type liveSubscriber struct {
	matchID string // "" subscribes to all matches
	ch      chan models.MatchUpdate
}

// LiveHub fans match updates out to SSE subscribers.
type LiveHub struct {
	mu          sync.Mutex
	subscribers map[*liveSubscriber]struct{}
}

func NewLiveHub() *LiveHub {
	return &LiveHub{subscribers: make(map[*liveSubscriber]struct{})}
}

// Broadcast delivers the update to every matching subscriber. Slow
// subscribers drop updates rather than block the sender.
func (h *LiveHub) Broadcast(update models.MatchUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		if sub.matchID != "" && sub.matchID != update.MatchID {
			continue
		}
		select {
		case sub.ch <- update:
		default:
		}
	}
}

func (h *LiveHub) subscribe(matchID string) *liveSubscriber {
	sub := &liveSubscriber{matchID: matchID, ch: make(chan models.MatchUpdate, 16)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *LiveHub) unsubscribe(sub *liveSubscriber) {
	h.mu.Lock()
	delete(h.subscribers, sub)
	h.mu.Unlock()
}

// SubscriberCount reports how many clients are currently connected.
func (h *LiveHub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// StreamMatchUpdates handles GET /live/stream. Optional ?match_id= narrows
// the stream to one fixture.
func (h *LiveHub) StreamMatchUpdates(c *fiber.Ctx) error {
	matchID := c.Query("match_id")

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	sub := h.subscribe(matchID)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer h.unsubscribe(sub)

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case update := <-sub.ch:
				payload, err := json.Marshal(update)
				if err != nil {
					log.Printf("SSE marshal error: %v", err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", update.Type, payload)
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-keepalive.C:
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}

			case <-c.Context().Done():
				// Client closed connection
				return
			}
		}
	})

	return nil
}
