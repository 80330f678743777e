package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/phillipbowles/FixItNow/services/booking-service/internal/domain"
)

// Store is the slice of the repository the state machine needs.
type Store interface {
	Create(ctx context.Context, b *domain.Booking) error
	ByID(ctx context.Context, id string) (*domain.Booking, error)
	UpdateTransition(ctx context.Context, id string, apply func(*domain.Booking) error) (*domain.Booking, error)
	List(ctx context.Context, userID, providerID string, status domain.Status) ([]domain.Booking, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Broadcaster pushes a payload to every live session of a booking.
type Broadcaster interface {
	Broadcast(bookingID string, v any)
}

type CreateInput struct {
	UserID         string
	ServiceID      string
	Title          string
	Description    string
	ScheduledDate  time.Time
	Address        string
	EstimatedPrice *float64
}

// UpdateInput carries an optional status change plus assignments that are
// valid regardless of status.
type UpdateInput struct {
	Status     *domain.Status
	ProviderID string
	FinalPrice *float64
}

type BookingSvc struct {
	store Store
	pub   Publisher
	hub   Broadcaster

	// per-booking serialization of transitions; different bookings
	// proceed in parallel
	mu    sync.Mutex
	locks map[string]*bookingLock
}

func NewBookingSvc(store Store, pub Publisher, hub Broadcaster) *BookingSvc {
	return &BookingSvc{store: store, pub: pub, hub: hub, locks: make(map[string]*bookingLock)}
}

// bookingLock is refcounted so an entry lives only while a transition on
// that booking is in flight; the map does not grow with booking count.
type bookingLock struct {
	mu   sync.Mutex
	refs int
}

func (s *BookingSvc) lockFor(id string) *bookingLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &bookingLock{}
		s.locks[id] = l
	}
	l.refs++
	return l
}

func (s *BookingSvc) release(id string, l *bookingLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}

func (s *BookingSvc) Create(ctx context.Context, in CreateInput) (*domain.Booking, error) {
	b := &domain.Booking{
		UserID:         in.UserID,
		ServiceID:      in.ServiceID,
		Title:          in.Title,
		Description:    in.Description,
		Status:         domain.StatusPending,
		ScheduledDate:  in.ScheduledDate,
		Address:        in.Address,
		EstimatedPrice: in.EstimatedPrice,
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking.service_requested", map[string]any{
		"booking_id":     b.ID,
		"user_id":        b.UserID,
		"service_id":     b.ServiceID,
		"title":          b.Title,
		"scheduled_date": b.ScheduledDate.UTC().Format(time.RFC3339),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
	return b, nil
}

// Update applies a status transition and/or provider/price assignment.
// The transition is validated and persisted atomically; event emission and
// session broadcast happen after commit and are best effort.
func (s *BookingSvc) Update(ctx context.Context, id string, in UpdateInput) (*domain.Booking, error) {
	l := s.lockFor(id)
	defer s.release(id, l)
	l.mu.Lock()
	defer l.mu.Unlock()

	var oldStatus domain.Status
	now := time.Now().UTC()
	b, err := s.store.UpdateTransition(ctx, id, func(b *domain.Booking) error {
		oldStatus = b.Status
		if in.Status != nil {
			if err := b.ApplyStatus(*in.Status, now); err != nil {
				return err
			}
		}
		if in.ProviderID != "" {
			b.ProviderID = in.ProviderID
		}
		if in.FinalPrice != nil {
			b.FinalPrice = in.FinalPrice
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		s.publish(ctx, "booking.status_changed", map[string]any{
			"booking_id": b.ID,
			"user_id":    b.UserID,
			"old_status": string(oldStatus),
			"new_status": string(b.Status),
			"timestamp":  now.Format(time.RFC3339),
		})
		s.hub.Broadcast(b.ID, map[string]any{
			"type":       "booking_updated",
			"booking_id": b.ID,
			"status":     string(b.Status),
			"timestamp":  now.Format(time.RFC3339),
		})
	}
	return b, nil
}

func (s *BookingSvc) Get(ctx context.Context, id string) (*domain.Booking, error) {
	return s.store.ByID(ctx, id)
}

func (s *BookingSvc) List(ctx context.Context, userID, providerID string, status domain.Status) ([]domain.Booking, error) {
	return s.store.List(ctx, userID, providerID, status)
}

// publish logs and moves on: the state change is already committed, so a
// broker outage must not fail the request, but it is never silent either.
func (s *BookingSvc) publish(ctx context.Context, key string, v any) {
	if err := s.pub.PublishJSON(ctx, key, v); err != nil {
		log.Printf("[booking] publish %s failed (event lost, payload=%v): %v", key, v, err)
	}
}
