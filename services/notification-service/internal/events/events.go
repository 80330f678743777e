package events

import (
	"encoding/json"
	"fmt"
)

// Routing keys carried on the fixitnow.events exchange. Producers may add
// new ones at any time; unknown keys are dropped by the dispatcher.
const (
	RKUserRegistered     = "user.registered"
	RKUserLoggedIn       = "user.logged_in"
	RKUserProfileUpdated = "user.profile_updated"

	RKServiceRequested     = "booking.service_requested"
	RKBookingStatusChanged = "booking.status_changed"

	RKServiceCreated = "catalog.service_created"
	RKReviewCreated  = "catalog.review_created"
)

type UserRegistered struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FullName  string `json:"full_name"`
	Timestamp string `json:"timestamp"`
}

type UserProfileUpdated struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
}

type ServiceRequested struct {
	BookingID     string `json:"booking_id"`
	UserID        string `json:"user_id"`
	ServiceID     string `json:"service_id"`
	Title         string `json:"title"`
	ScheduledDate string `json:"scheduled_date"`
	Timestamp     string `json:"timestamp"`
}

type BookingStatusChanged struct {
	BookingID string `json:"booking_id"`
	UserID    string `json:"user_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Timestamp string `json:"timestamp"`
}

type ReviewCreated struct {
	ReviewID  string `json:"review_id"`
	ServiceID string `json:"service_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
	Timestamp string `json:"timestamp"`
}

func Unmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
