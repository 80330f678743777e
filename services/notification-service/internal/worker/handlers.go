package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/phillipbowles/FixItNow/services/notification-service/internal/events"
	"github.com/phillipbowles/FixItNow/services/notification-service/internal/notifier"
	"github.com/phillipbowles/FixItNow/services/notification-service/internal/push"
)

// Handlers bundles the side-effect collaborators the event handlers use.
type Handlers struct {
	notifier notifier.Notifier
	store    *push.Store
}

func NewHandlers(n notifier.Notifier, store *push.Store) *Handlers {
	return &Handlers{notifier: n, store: store}
}

// Registry returns the routing-key -> handler table. Event types without
// an entry (user.logged_in among them) are dropped by the dispatcher.
func (h *Handlers) Registry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		events.RKUserRegistered:       h.userRegistered,
		events.RKUserProfileUpdated:   h.profileUpdated,
		events.RKServiceRequested:     h.serviceRequested,
		events.RKBookingStatusChanged: h.statusChanged,
		events.RKReviewCreated:        h.reviewCreated,
	}
}

func (h *Handlers) userRegistered(ctx context.Context, body []byte) error {
	ev, err := events.Unmarshal[events.UserRegistered](body)
	if err != nil {
		return err
	}

	subject := "Welcome to FixItNow!"
	var msg string
	if ev.Role == "provider" {
		msg = fmt.Sprintf("Hi %s,\n\nThanks for registering as a provider on FixItNow! "+
			"Complete your profile, add your services and wait for customer requests.\n\nThe FixItNow team", ev.FullName)
	} else {
		msg = fmt.Sprintf("Hi %s,\n\nWelcome to FixItNow! "+
			"Browse the service catalog and place your first request.\n\nThe FixItNow team", ev.FullName)
	}
	if err := h.notifier.Notify(ev.Email, subject, msg); err != nil {
		return err
	}
	log.Printf("[notify] welcome email sent to %s", ev.Email)
	return h.store.Push(ctx, ev.UserID, subject, "Your FixItNow account is ready.")
}

func (h *Handlers) profileUpdated(_ context.Context, body []byte) error {
	ev, err := events.Unmarshal[events.UserProfileUpdated](body)
	if err != nil {
		return err
	}
	log.Printf("[notify] profile updated for %s", ev.Email)
	return nil
}

func (h *Handlers) serviceRequested(ctx context.Context, body []byte) error {
	ev, err := events.Unmarshal[events.ServiceRequested](body)
	if err != nil {
		return err
	}
	log.Printf("[notify] new service request: %s (booking %s)", ev.Title, ev.BookingID)
	return h.store.Push(ctx, ev.UserID, "Request received",
		fmt.Sprintf("Your request %q was sent to providers (booking %s).", ev.Title, ev.BookingID))
}

func (h *Handlers) statusChanged(ctx context.Context, body []byte) error {
	ev, err := events.Unmarshal[events.BookingStatusChanged](body)
	if err != nil {
		return err
	}
	log.Printf("[notify] booking %s status changed: %s -> %s", ev.BookingID, ev.OldStatus, ev.NewStatus)

	var subject, msg string
	switch ev.NewStatus {
	case "accepted":
		subject = "Your request was accepted!"
		msg = fmt.Sprintf("The provider accepted your request. Booking %s", ev.BookingID)
	case "completed":
		subject = "Service completed"
		msg = fmt.Sprintf("Your service is done. Please leave a review. Booking %s", ev.BookingID)
	case "cancelled":
		subject = "Request cancelled"
		msg = fmt.Sprintf("Your request was cancelled. Booking %s", ev.BookingID)
	default:
		return nil
	}
	// the event carries no email address, so delivery is push only;
	// attempting an empty-recipient send would fail every event
	log.Printf("[notify] would email user %s: %s", ev.UserID, subject)
	return h.store.Push(ctx, ev.UserID, subject, msg)
}

func (h *Handlers) reviewCreated(ctx context.Context, body []byte) error {
	ev, err := events.Unmarshal[events.ReviewCreated](body)
	if err != nil {
		return err
	}
	log.Printf("[notify] new review for service %s: %d stars", ev.ServiceID, ev.Rating)
	return h.store.Push(ctx, ev.UserID, "Review published",
		fmt.Sprintf("Thanks! Your %d-star review for service %s is live.", ev.Rating, ev.ServiceID))
}
