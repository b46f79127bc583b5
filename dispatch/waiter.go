package dispatch

import "sync"

// EventWaiter is an in-process registry of dispatch runs waiting on a
// request. The event bridge calls Notify when a status-transition event
// arrives on the request-events channel; the engine's wait wakes up and
// re-reads the request.
type EventWaiter struct {
	mu      sync.Mutex
	waiters map[string][]chan struct{}
}

func NewEventWaiter() *EventWaiter {
	return &EventWaiter{waiters: make(map[string][]chan struct{})}
}

func (w *EventWaiter) Await(requestID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	w.mu.Lock()
	w.waiters[requestID] = append(w.waiters[requestID], ch)
	w.mu.Unlock()

	stop := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		chans := w.waiters[requestID]
		for i, c := range chans {
			if c == ch {
				w.waiters[requestID] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(w.waiters[requestID]) == 0 {
			delete(w.waiters, requestID)
		}
	}
	return ch, stop
}

// Notify wakes every run waiting on requestID. Non-blocking; a waiter
// that already has a pending signal is not queued twice.
func (w *EventWaiter) Notify(requestID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.waiters[requestID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
