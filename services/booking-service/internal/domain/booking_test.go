package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusCompleted, false},
		{StatusAccepted, StatusInProgress, true},
		{StatusAccepted, StatusCancelled, true},
		{StatusAccepted, StatusPending, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusAccepted, false},
		{StatusCompleted, StatusAccepted, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusAccepted, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestApplyStatusStampsTimestampsOnce(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := &Booking{Status: StatusPending}

	require.NoError(t, b.ApplyStatus(StatusAccepted, now))
	require.NotNil(t, b.AcceptedAt)
	assert.Equal(t, now, *b.AcceptedAt)

	later := now.Add(time.Hour)
	require.NoError(t, b.ApplyStatus(StatusInProgress, later))
	require.NoError(t, b.ApplyStatus(StatusCompleted, later))
	require.NotNil(t, b.CompletedAt)
	assert.Equal(t, later, *b.CompletedAt)

	// accepted_at must not move after the first entry
	assert.Equal(t, now, *b.AcceptedAt)
}

func TestApplyStatusRejectsInvalidEdgeWithoutMutation(t *testing.T) {
	b := &Booking{Status: StatusCompleted}
	err := b.ApplyStatus(StatusAccepted, time.Now())
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCompleted, b.Status)
	assert.Nil(t, b.AcceptedAt)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}
