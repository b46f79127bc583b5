package dispatch

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"labhive/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	candidates []Candidate
	err        error
	calls      int
}

func (d *fakeDirectory) FindNearby(ctx context.Context, pt Point, radius float64, testIDs []string) ([]Candidate, error) {
	d.calls++
	return d.candidates, d.err
}

type fakeGateway struct {
	sent    []string // collector tokens in send order
	failFor map[string]error
}

func (g *fakeGateway) Send(ctx context.Context, token, title, body string) error {
	if err := g.failFor[token]; err != nil {
		return err
	}
	g.sent = append(g.sent, token)
	return nil
}

type fakeStore struct {
	mu        sync.Mutex
	created   []*models.BookingRequest
	createErr error
	getErr    error
	// statusFor maps collector id -> status the store reports after the wait
	statusFor map[string]string
}

func (s *fakeStore) Create(ctx context.Context, req *models.BookingRequest) error {
	if s.createErr != nil {
		return s.createErr
	}
	cp := *req
	s.mu.Lock()
	s.created = append(s.created, &cp)
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (*models.BookingRequest, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.created {
		if req.ID == id {
			out := *req
			if st, ok := s.statusFor[req.CollectorID]; ok {
				out.Status = st
			}
			return &out, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *fakeStore) createdIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.created))
	for _, req := range s.created {
		ids = append(ids, req.ID)
	}
	return ids
}

type fakePrices struct {
	prices map[string]float64
	err    error
}

func (p *fakePrices) Prices(ctx context.Context, testIDs []string) (map[string]float64, error) {
	return p.prices, p.err
}

type fakeLock struct {
	busy     map[string]bool
	acquired []string
	released int
}

func (l *fakeLock) Acquire(ctx context.Context, collectorID string, ttl time.Duration) (func(), bool, error) {
	if l.busy[collectorID] {
		return nil, false, nil
	}
	l.acquired = append(l.acquired, collectorID)
	return func() { l.released++ }, true, nil
}

func candidates(ids ...string) []Candidate {
	out := make([]Candidate, len(ids))
	for i, id := range ids {
		out[i] = Candidate{ID: id, FCMToken: "tok-" + id, DistanceMeters: float64(i * 100)}
	}
	return out
}

func validIntent() Intent {
	return Intent{
		UserID:        "u1",
		TestIDs:       []string{"T1"},
		Quantities:    []int{2},
		Location:      Point{Longitude: 76.3, Latitude: 10.0},
		PaymentMethod: "cash",
	}
}

func newTestEngine(dir *fakeDirectory, gw *fakeGateway, store *fakeStore, prices *fakePrices, lock *fakeLock) *Engine {
	e := NewEngine(dir, gw, store, prices, lock, nil)
	e.OfferTimeout = 5 * time.Millisecond
	return e
}

func TestDispatchValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Intent)
	}{
		{"missing user", func(in *Intent) { in.UserID = "" }},
		{"empty tests", func(in *Intent) { in.TestIDs = nil }},
		{"quantity length mismatch", func(in *Intent) { in.Quantities = []int{1, 2} }},
		{"zero quantity", func(in *Intent) { in.Quantities = []int{0} }},
		{"negative quantity", func(in *Intent) { in.Quantities = []int{-1} }},
		{"nan longitude", func(in *Intent) { in.Location.Longitude = math.NaN() }},
		{"missing payment method", func(in *Intent) { in.PaymentMethod = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := &fakeDirectory{candidates: candidates("C1")}
			gw := &fakeGateway{}
			store := &fakeStore{}
			e := newTestEngine(dir, gw, store, &fakePrices{prices: map[string]float64{"T1": 50}}, &fakeLock{})

			in := validIntent()
			tc.mutate(&in)

			_, err := e.Dispatch(context.Background(), in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Zero(t, dir.calls, "directory must not be queried")
			assert.Empty(t, gw.sent, "no notification before validation")
			assert.Empty(t, store.created, "no record before validation")
		})
	}
}

func TestDispatchUnknownTestID(t *testing.T) {
	dir := &fakeDirectory{candidates: candidates("C1")}
	gw := &fakeGateway{}
	e := newTestEngine(dir, gw, &fakeStore{}, &fakePrices{prices: map[string]float64{}}, &fakeLock{})

	_, err := e.Dispatch(context.Background(), validIntent())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, dir.calls)
	assert.Empty(t, gw.sent)
}

func TestDispatchNoCollectors(t *testing.T) {
	dir := &fakeDirectory{}
	gw := &fakeGateway{}
	store := &fakeStore{}
	e := newTestEngine(dir, gw, store, &fakePrices{prices: map[string]float64{"T1": 50}}, &fakeLock{})

	_, err := e.Dispatch(context.Background(), validIntent())

	var nerr *NoCollectorError
	require.ErrorAs(t, err, &nerr)
	assert.Empty(t, gw.sent, "no notification for an empty candidate list")
	assert.Empty(t, store.created, "store.Create never called")
}

func TestDispatchThirdCandidateAccepts(t *testing.T) {
	dir := &fakeDirectory{candidates: candidates("C1", "C2", "C3")}
	gw := &fakeGateway{}
	store := &fakeStore{statusFor: map[string]string{"C3": models.StatusAccepted}}
	lock := &fakeLock{}
	e := newTestEngine(dir, gw, store, &fakePrices{prices: map[string]float64{"T1": 50}}, lock)

	res, err := e.Dispatch(context.Background(), validIntent())

	require.NoError(t, err)
	assert.Equal(t, []string{"tok-C1", "tok-C2", "tok-C3"}, gw.sent, "offers go out in distance order")
	assert.Equal(t, "C3", res.Collector.ID)
	assert.Equal(t, "C3", res.Request.CollectorID)
	assert.Equal(t, models.StatusAccepted, res.Request.Status)
	assert.Equal(t, 3, lock.released, "every offer lock released")
}

func TestDispatchFirstAcceptorWins(t *testing.T) {
	dir := &fakeDirectory{candidates: candidates("C1", "C2", "C3")}
	gw := &fakeGateway{}
	store := &fakeStore{statusFor: map[string]string{
		"C1": models.StatusAccepted,
		"C2": models.StatusAccepted, // would also accept, must never be asked
	}}
	e := newTestEngine(dir, gw, store, &fakePrices{prices: map[string]float64{"T1": 50}}, &fakeLock{})

	res, err := e.Dispatch(context.Background(), validIntent())

	require.NoError(t, err)
	assert.Equal(t, "C1", res.Collector.ID)
	assert.Equal(t, []string{"tok-C1"}, gw.sent, "no candidate after the acceptor is offered")
}

func TestDispatchAllReject(t *testing.T) {
	dir := &fakeDirectory{candidates: candidates("C1", "C2", "C3")}
	gw := &fakeGateway{}
	store := &fakeStore{}
	e := newTestEngine(dir, gw, store, &fakePrices{prices: map[string]float64{"T1": 50}}, &fakeLock{})

	_, err := e.Dispatch(context.Background(), validIntent())

	var exh *AllRejectedError
	require.ErrorAs(t, err, &exh)
	assert.Equal(t, 3, exh.Offers)
	assert.Zero(t, exh.Busy)
	assert.Equal(t, "all collectors rejected the request", exh.Error())
	assert.Equal(t, []string{"tok-C1", "tok-C2", "tok-C3"}, gw.sent)
	assert.Len(t, store.created, 3, "one Pending record per offer")
}

func TestDispatchNotificationFailureAborts(t *testing.T) {
	dir := &fakeDirectory{candidates: candidates("C1", "C2")}
	gw := &fakeGateway{failFor: map[string]error{"tok-C1": errors.New("fcm unreachable")}}
	store := &fakeStore{}
	e := newTestEngine(dir, gw, store, &fakePrices{prices: map[string]float64{"T1": 50}}, &fakeLock{})

	_, err := e.Dispatch(context.Background(), validIntent())

	var nerr *NotificationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "C1", nerr.CollectorID)
	assert.Empty(t, gw.sent, "C2 is never offered after an infrastructure failure")
	assert.Empty(t, store.created)
}

func TestDispatchPersistenceFailureAborts(t *testing.T) {
	dir := &fakeDirectory{candidates: candidates("C1", "C2")}
	gw := &fakeGateway{}
	store := &fakeStore{createErr: errors.New("mongo down")}
	e := newTestEngine(dir, gw, store, &fakePrices{prices: map[string]float64{"T1": 50}}, &fakeLock{})

	_, err := e.Dispatch(context.Background(), validIntent())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{"tok-C1"}, gw.sent, "run stops at the failing candidate")
}

func TestDispatchTotalAmountSnapshot(t *testing.T) {
	dir := &fakeDirectory{candidates: candidates("C1")}
	prices := &fakePrices{prices: map[string]float64{"T1": 50}}
	store := &fakeStore{statusFor: map[string]string{"C1": models.StatusAccepted}}
	e := newTestEngine(dir, &fakeGateway{}, store, prices, &fakeLock{})

	res, err := e.Dispatch(context.Background(), validIntent())
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Request.TotalAmount, "price 50 x quantity 2")

	// a later price change must not touch the stored snapshot
	prices.prices["T1"] = 999
	stored, err := store.Get(context.Background(), res.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stored.TotalAmount)
}

func TestDispatchBusyCollectorSkipped(t *testing.T) {
	dir := &fakeDirectory{candidates: candidates("C1", "C2")}
	gw := &fakeGateway{}
	store := &fakeStore{statusFor: map[string]string{"C2": models.StatusAccepted}}
	lock := &fakeLock{busy: map[string]bool{"C1": true}}
	e := newTestEngine(dir, gw, store, &fakePrices{prices: map[string]float64{"T1": 50}}, lock)

	res, err := e.Dispatch(context.Background(), validIntent())

	require.NoError(t, err)
	assert.Equal(t, []string{"tok-C2"}, gw.sent, "busy collector is skipped without an offer")
	assert.Equal(t, "C2", res.Collector.ID)
}

func TestDispatchAllCollectorsBusy(t *testing.T) {
	dir := &fakeDirectory{candidates: candidates("C1", "C2")}
	gw := &fakeGateway{}
	store := &fakeStore{}
	lock := &fakeLock{busy: map[string]bool{"C1": true, "C2": true}}
	e := newTestEngine(dir, gw, store, &fakePrices{prices: map[string]float64{"T1": 50}}, lock)

	_, err := e.Dispatch(context.Background(), validIntent())

	var exh *AllRejectedError
	require.ErrorAs(t, err, &exh)
	assert.Zero(t, exh.Offers)
	assert.Equal(t, 2, exh.Busy)
	assert.Equal(t, "all collectors are busy with other offers", exh.Error(),
		"a run that never made an offer must not read as a rejection")
	assert.Empty(t, gw.sent)
	assert.Empty(t, store.created)
}

func TestDispatchAcceptanceEventWakesEarly(t *testing.T) {
	dir := &fakeDirectory{candidates: candidates("C1")}
	store := &fakeStore{statusFor: map[string]string{"C1": models.StatusAccepted}}
	waiter := NewEventWaiter()

	e := NewEngine(dir, &fakeGateway{}, store, &fakePrices{prices: map[string]float64{"T1": 50}}, &fakeLock{}, waiter)
	e.OfferTimeout = 5 * time.Second

	go func() {
		// simulate the collector accepting shortly after the offer
		time.Sleep(20 * time.Millisecond)
		for _, id := range store.createdIDs() {
			waiter.Notify(id)
		}
	}()

	start := time.Now()
	res, err := e.Dispatch(context.Background(), validIntent())

	require.NoError(t, err)
	assert.Equal(t, "C1", res.Collector.ID)
	assert.Less(t, time.Since(start), time.Second, "acceptance event must end the wait early")
}
