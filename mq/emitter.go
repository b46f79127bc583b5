package mq

import (
	"context"
	"encoding/json"
	"log"

	"labhive/dispatch"
	"labhive/livewire"
	"labhive/rdx"
)

const requestEventsChannel = "request-events"

// RequestEvent describes a booking-request status transition.
type RequestEvent struct {
	RequestID   string `json:"request_id"`
	UserID      string `json:"user_id"`
	CollectorID string `json:"collector_id"`
	Status      string `json:"status"`
}

// Emit publishes a status-transition event to Redis. Best-effort: a lost
// event only costs the early wakeup, the dispatch timeout still fires.
func Emit(ctx context.Context, ev RequestEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Emit] Failed to marshal request event: %v", err)
		return
	}
	rdx.Publish(ctx, requestEventsChannel, data)
}

// StartRequestWorker bridges request events to in-process consumers: the
// dispatch engine's acceptance waiters and the websocket status streams.
// Runs until the process exits.
func StartRequestWorker(waiter *dispatch.EventWaiter) {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, requestEventsChannel)
	ch := sub.Channel()

	log.Println("[RequestWorker] Listening for request events...")

	for msg := range ch {
		var ev RequestEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("[RequestWorker] Failed to parse event: %v", err)
			continue
		}

		waiter.Notify(ev.RequestID)
		livewire.Broadcast(ev.RequestID, []byte(msg.Payload))
	}
}
