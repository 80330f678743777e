package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/phillipbowles/FixItNow/services/booking-service/internal/domain"
)

type memStore struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
}

func newMemStore() *memStore {
	return &memStore{bookings: make(map[string]*domain.Booking)}
}

func (m *memStore) Create(_ context.Context, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memStore) ByID(_ context.Context, id string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) UpdateTransition(_ context.Context, id string, apply func(*domain.Booking) error) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	if err := apply(&cp); err != nil {
		return nil, err
	}
	m.bookings[id] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) List(_ context.Context, _, _ string, _ domain.Status) ([]domain.Booking, error) {
	return nil, nil
}

type recordedEvent struct {
	key     string
	payload map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (f *fakePublisher) PublishJSON(_ context.Context, key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, recordedEvent{key: key, payload: v.(map[string]any)})
	return nil
}

type fakeHub struct {
	mu        sync.Mutex
	broadcast []map[string]any
}

func (f *fakeHub) Broadcast(_ string, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, v.(map[string]any))
}

func statusPtr(s domain.Status) *domain.Status { return &s }

func TestCreateStartsPendingAndEmitsEvent(t *testing.T) {
	store, pub, hub := newMemStore(), &fakePublisher{}, &fakeHub{}
	svc := NewBookingSvc(store, pub, hub)

	b, err := svc.Create(context.Background(), CreateInput{
		UserID: "u1", ServiceID: "s1", Title: "Leaky faucet",
		ScheduledDate: time.Now().Add(24 * time.Hour), Address: "42 Main St",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, b.Status)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "booking.service_requested", pub.events[0].key)
	assert.Equal(t, b.ID, pub.events[0].payload["booking_id"])
}

func TestLifecycleAcceptCompleteThenTerminal(t *testing.T) {
	store, pub, hub := newMemStore(), &fakePublisher{}, &fakeHub{}
	svc := NewBookingSvc(store, pub, hub)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{UserID: "u1", ServiceID: "s1", Title: "Job"})
	require.NoError(t, err)

	b, err = svc.Update(ctx, b.ID, UpdateInput{Status: statusPtr(domain.StatusAccepted), ProviderID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, b.Status)
	assert.Equal(t, "p1", b.ProviderID)
	require.NotNil(t, b.AcceptedAt)

	require.Len(t, pub.events, 2)
	assert.Equal(t, "booking.status_changed", pub.events[1].key)
	assert.Equal(t, "u1", pub.events[1].payload["user_id"])
	assert.Equal(t, "pending", pub.events[1].payload["old_status"])
	assert.Equal(t, "accepted", pub.events[1].payload["new_status"])

	require.Len(t, hub.broadcast, 1)
	assert.Equal(t, "booking_updated", hub.broadcast[0]["type"])
	assert.Equal(t, "accepted", hub.broadcast[0]["status"])

	_, err = svc.Update(ctx, b.ID, UpdateInput{Status: statusPtr(domain.StatusInProgress)})
	require.NoError(t, err)
	b, err = svc.Update(ctx, b.ID, UpdateInput{Status: statusPtr(domain.StatusCompleted)})
	require.NoError(t, err)
	require.NotNil(t, b.CompletedAt)

	// completed is terminal
	_, err = svc.Update(ctx, b.ID, UpdateInput{Status: statusPtr(domain.StatusAccepted)})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestInvalidTransitionLeavesStateUntouched(t *testing.T) {
	store, pub, hub := newMemStore(), &fakePublisher{}, &fakeHub{}
	svc := NewBookingSvc(store, pub, hub)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{UserID: "u1", ServiceID: "s1"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, b.ID, UpdateInput{Status: statusPtr(domain.StatusCompleted)})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)

	// nothing was emitted or broadcast for the rejected transition
	assert.Len(t, pub.events, 1)
	assert.Empty(t, hub.broadcast)
}

func TestAssignmentWithoutStatusChangeEmitsNothing(t *testing.T) {
	store, pub, hub := newMemStore(), &fakePublisher{}, &fakeHub{}
	svc := NewBookingSvc(store, pub, hub)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{UserID: "u1", ServiceID: "s1"})
	require.NoError(t, err)

	price := 149.50
	b, err = svc.Update(ctx, b.ID, UpdateInput{ProviderID: "p9", FinalPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "p9", b.ProviderID)
	require.NotNil(t, b.FinalPrice)
	assert.Equal(t, price, *b.FinalPrice)
	assert.Equal(t, domain.StatusPending, b.Status)

	assert.Len(t, pub.events, 1) // only the create event
	assert.Empty(t, hub.broadcast)
}

func TestPublishFailureDoesNotFailCommittedTransition(t *testing.T) {
	store, pub, hub := newMemStore(), &fakePublisher{}, &fakeHub{}
	svc := NewBookingSvc(store, pub, hub)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{UserID: "u1", ServiceID: "s1"})
	require.NoError(t, err)

	pub.err = errors.New("broker unavailable")
	b, err = svc.Update(ctx, b.ID, UpdateInput{Status: statusPtr(domain.StatusAccepted)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, b.Status)
	// live sessions are still told
	require.Len(t, hub.broadcast, 1)
}

func TestConcurrentTransitionsOnSameBookingSerialize(t *testing.T) {
	store, pub, hub := newMemStore(), &fakePublisher{}, &fakeHub{}
	svc := NewBookingSvc(store, pub, hub)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{UserID: "u1", ServiceID: "s1"})
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Update(ctx, b.ID, UpdateInput{Status: statusPtr(domain.StatusAccepted)})
		}(i)
	}
	wg.Wait()

	// exactly one pending->accepted wins; the rest hit the graph check
	var ok int
	for _, e := range errs {
		if e == nil {
			ok++
		} else {
			require.ErrorIs(t, e, domain.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, ok)

	// lock entries are refcounted away once transitions finish
	svc.mu.Lock()
	assert.Empty(t, svc.locks)
	svc.mu.Unlock()

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, got.Status)
}
