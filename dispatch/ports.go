package dispatch

import (
	"context"
	"time"

	"labhive/models"
)

// Point is a plain longitude/latitude pair, GeoJSON ordering.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Candidate is a collector eligible for an offer, as returned by the
// directory query. DistanceMeters is the spherical distance from the
// requested point; candidates arrive sorted by it, ascending.
type Candidate struct {
	ID             string  `bson:"id"`
	FullName       string  `bson:"fullName"`
	FCMToken       string  `bson:"fcmToken"`
	DistanceMeters float64 `bson:"distance"`
}

// Intent is a validated booking request before any side effect happens.
type Intent struct {
	UserID        string
	TestIDs       []string
	Quantities    []int
	Location      Point
	PaymentMethod string
}

// Result is the terminal success of a dispatch run.
type Result struct {
	Collector Candidate
	Request   models.BookingRequest
}

// CollectorDirectory finds online, non-working collectors within
// radiusMeters of pt whose capability set covers every test id, sorted by
// ascending distance. Pure read.
type CollectorDirectory interface {
	FindNearby(ctx context.Context, pt Point, radiusMeters float64, testIDs []string) ([]Candidate, error)
}

// NotificationGateway delivers a push message to a device token.
// Best-effort on the receiving side; a failed send call itself is an
// infrastructure error for the run.
type NotificationGateway interface {
	Send(ctx context.Context, token, title, body string) error
}

// RequestStore persists booking requests. Get is used for the
// post-wait acceptance read.
type RequestStore interface {
	Create(ctx context.Context, req *models.BookingRequest) error
	Get(ctx context.Context, id string) (*models.BookingRequest, error)
}

// PriceBook resolves test ids to their current prices. Every requested id
// must be present in the returned map.
type PriceBook interface {
	Prices(ctx context.Context, testIDs []string) (map[string]float64, error)
}

// OfferLock marks a collector as having an offer in flight. Acquire is an
// atomic check-and-set; ok=false means another run holds the offer.
type OfferLock interface {
	Acquire(ctx context.Context, collectorID string, ttl time.Duration) (release func(), ok bool, err error)
}

// AcceptanceWaiter lets the engine wake up before the offer timeout when a
// status-transition event for the request arrives. The returned channel
// fires at most once; stop must always be called to drop the registration.
type AcceptanceWaiter interface {
	Await(requestID string) (signal <-chan struct{}, stop func())
}
