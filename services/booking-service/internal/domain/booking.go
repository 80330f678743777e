package domain

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// transitions holds the allowed edges of the booking lifecycle.
// completed and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Booking struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"index"`
	ProviderID string `gorm:"index"` // empty until a provider accepts
	ServiceID  string `gorm:"index"`

	Title       string
	Description string
	Status      Status `gorm:"index"`

	ScheduledDate time.Time
	Address       string

	EstimatedPrice *float64
	FinalPrice     *float64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	AcceptedAt  *time.Time
	CompletedAt *time.Time
}

// ApplyStatus validates the edge and mutates b, stamping accepted_at and
// completed_at on first entry only. On an invalid edge b is untouched.
func (b *Booking) ApplyStatus(to Status, now time.Time) error {
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}
	b.Status = to
	switch to {
	case StatusAccepted:
		if b.AcceptedAt == nil {
			t := now
			b.AcceptedAt = &t
		}
	case StatusCompleted:
		if b.CompletedAt == nil {
			t := now
			b.CompletedAt = &t
		}
	}
	return nil
}
