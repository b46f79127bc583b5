package dispatch

import (
	"context"
	"log"
	"math"
	"time"

	"labhive/models"
	"labhive/utils"
)

const (
	// DefaultRadiusMeters is the fixed search radius for candidates.
	DefaultRadiusMeters = 5 * 1000
	// DefaultOfferTimeout is how long a candidate holds an offer before
	// the engine moves on.
	DefaultOfferTimeout = 60 * time.Second

	newRequestTitle = "New Request"
	newRequestBody  = "You have a new test request to process."
)

// Engine runs the sequential-offer auction: one candidate at a time, in
// ascending distance order, each holding the offer until it accepts or
// the offer timeout passes.
type Engine struct {
	Directory CollectorDirectory
	Gateway   NotificationGateway
	Store     RequestStore
	Prices    PriceBook
	Locks     OfferLock
	Waiter    AcceptanceWaiter // optional; nil means pure timeout wait

	OfferTimeout time.Duration
	RadiusMeters float64
}

func NewEngine(dir CollectorDirectory, gw NotificationGateway, store RequestStore, prices PriceBook, locks OfferLock, waiter AcceptanceWaiter) *Engine {
	return &Engine{
		Directory:    dir,
		Gateway:      gw,
		Store:        store,
		Prices:       prices,
		Locks:        locks,
		Waiter:       waiter,
		OfferTimeout: DefaultOfferTimeout,
		RadiusMeters: DefaultRadiusMeters,
	}
}

// Dispatch drives one full auction run to a terminal outcome: a booked
// collector, AllRejectedError, NoCollectorError, or an infrastructure
// error. Infrastructure errors never advance the cursor; only timeout,
// rejection, or a busy offer lock do.
func (e *Engine) Dispatch(ctx context.Context, intent Intent) (*Result, error) {
	if err := intent.validate(); err != nil {
		return nil, err
	}

	// Pricing up front both validates the test ids and fixes the
	// totalAmount snapshot for every record this run creates.
	total, err := e.totalAmount(ctx, intent)
	if err != nil {
		return nil, err
	}

	candidates, err := e.Directory.FindNearby(ctx, intent.Location, e.RadiusMeters, intent.TestIDs)
	if err != nil {
		return nil, &PersistenceError{Op: "find nearby collectors", Err: err}
	}
	if len(candidates) == 0 {
		return nil, &NoCollectorError{}
	}

	offers, busy := 0, 0
	for _, cand := range candidates {
		release, ok, err := e.Locks.Acquire(ctx, cand.ID, e.OfferTimeout+10*time.Second)
		if err != nil {
			return nil, &PersistenceError{Op: "acquire offer lock", Err: err}
		}
		if !ok {
			// another run is mid-offer on this collector
			log.Printf("dispatch: collector %s busy with a concurrent offer, skipping", cand.ID)
			busy++
			continue
		}

		res, err := e.offer(ctx, intent, cand, total)
		release()
		if err != nil {
			return nil, err
		}
		offers++
		if res != nil {
			return res, nil
		}
	}

	return nil, &AllRejectedError{Offers: offers, Busy: busy}
}

// offer notifies one candidate, records the Pending request, waits for
// acceptance or timeout, and reads the final word from the store.
// Returns (nil, nil) when the candidate declined or timed out.
func (e *Engine) offer(ctx context.Context, intent Intent, cand Candidate, total float64) (*Result, error) {
	if err := e.Gateway.Send(ctx, cand.FCMToken, newRequestTitle, newRequestBody); err != nil {
		return nil, &NotificationError{CollectorID: cand.ID, Err: err}
	}

	now := time.Now()
	req := &models.BookingRequest{
		ID:            utils.GetUUID(),
		UserID:        intent.UserID,
		TestIDs:       intent.TestIDs,
		Quantities:    intent.Quantities,
		CollectorID:   cand.ID,
		Status:        models.StatusPending,
		PaymentMethod: intent.PaymentMethod,
		TotalAmount:   total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.Store.Create(ctx, req); err != nil {
		return nil, &PersistenceError{Op: "create booking request", Err: err}
	}

	e.wait(ctx, req.ID)

	// The decision is always made from a fresh read. A still-Pending
	// request after the wait counts as a rejection (hard timeout).
	current, err := e.Store.Get(ctx, req.ID)
	if err != nil {
		return nil, &PersistenceError{Op: "read booking request status", Err: err}
	}
	if current.Status == models.StatusAccepted {
		return &Result{Collector: cand, Request: *current}, nil
	}
	return nil, nil
}

// wait blocks until a status event for the request arrives, the offer
// timeout passes, or ctx is cancelled, whichever comes first.
func (e *Engine) wait(ctx context.Context, requestID string) {
	var signal <-chan struct{} // nil channel blocks forever
	stop := func() {}
	if e.Waiter != nil {
		signal, stop = e.Waiter.Await(requestID)
	}
	defer stop()

	timer := time.NewTimer(e.OfferTimeout)
	defer timer.Stop()

	select {
	case <-signal:
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (e *Engine) totalAmount(ctx context.Context, intent Intent) (float64, error) {
	prices, err := e.Prices.Prices(ctx, intent.TestIDs)
	if err != nil {
		return 0, &PersistenceError{Op: "fetch test prices", Err: err}
	}

	var total float64
	for i, id := range intent.TestIDs {
		price, ok := prices[id]
		if !ok {
			return 0, &ValidationError{Field: "testids", Reason: "unknown test id " + id}
		}
		total += price * float64(intent.Quantities[i])
	}
	return total, nil
}

func (in Intent) validate() error {
	if in.UserID == "" {
		return &ValidationError{Field: "userId", Reason: "missing"}
	}
	if len(in.TestIDs) == 0 {
		return &ValidationError{Field: "testids", Reason: "missing"}
	}
	if len(in.Quantities) != len(in.TestIDs) {
		return &ValidationError{Field: "quantities", Reason: "length must match testids"}
	}
	for _, q := range in.Quantities {
		if q <= 0 {
			return &ValidationError{Field: "quantities", Reason: "must be positive"}
		}
	}
	if !finite(in.Location.Longitude) || !finite(in.Location.Latitude) {
		return &ValidationError{Field: "location", Reason: "longitude and latitude must be finite numbers"}
	}
	if in.PaymentMethod == "" {
		return &ValidationError{Field: "paymentMethod", Reason: "missing"}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
