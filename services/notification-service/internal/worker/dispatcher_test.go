package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillipbowles/FixItNow/services/notification-service/internal/events"
	"github.com/phillipbowles/FixItNow/services/notification-service/internal/push"
)

type recordingNotifier struct {
	sent []string
	err  error
}

func (r *recordingNotifier) Notify(toEmail, subject, _ string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, toEmail+"|"+subject)
	return nil
}

func newTestHandlers(t *testing.T) (*Handlers, *recordingNotifier, *push.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	n := &recordingNotifier{}
	store := push.NewStore(rdb)
	return NewHandlers(n, store), n, store
}

func body(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestDispatchStatusChangedPushesWithoutEmail(t *testing.T) {
	h, n, store := newTestHandlers(t)
	// an SMTP notifier rejects empty recipients; the handler must not
	// attempt a send it has no address for
	n.err = errors.New("smtp: invalid recipient")
	d := NewDispatcher(h.Registry(), time.Second)

	ev := events.BookingStatusChanged{BookingID: "bk1", UserID: "u7", OldStatus: "pending", NewStatus: "accepted"}
	require.NoError(t, d.Dispatch(context.Background(), events.RKBookingStatusChanged, body(t, ev)))
	assert.Empty(t, n.sent)

	got, err := store.Recent(context.Background(), "u7", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Your request was accepted!", got[0].Title)
}

func TestDispatchUnknownKeyIsDropped(t *testing.T) {
	h, n, _ := newTestHandlers(t)
	d := NewDispatcher(h.Registry(), time.Second)

	err := d.Dispatch(context.Background(), "payment.paid", []byte(`{}`))
	assert.NoError(t, err, "unknown event types are not errors")
	assert.Empty(t, n.sent)
}

func TestDispatchUserRegisteredSendsWelcome(t *testing.T) {
	h, n, _ := newTestHandlers(t)
	d := NewDispatcher(h.Registry(), time.Second)

	ev := events.UserRegistered{UserID: "u1", Email: "ana@example.com", Role: "provider", FullName: "Ana"}
	require.NoError(t, d.Dispatch(context.Background(), events.RKUserRegistered, body(t, ev)))
	require.Len(t, n.sent, 1)
	assert.Equal(t, "ana@example.com|Welcome to FixItNow!", n.sent[0])
}

func TestDispatchServiceRequestedPushesToUser(t *testing.T) {
	h, _, store := newTestHandlers(t)
	d := NewDispatcher(h.Registry(), time.Second)

	ev := events.ServiceRequested{BookingID: "bk1", UserID: "u7", ServiceID: "s1", Title: "Fix sink"}
	require.NoError(t, d.Dispatch(context.Background(), events.RKServiceRequested, body(t, ev)))

	got, err := store.Recent(context.Background(), "u7", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Request received", got[0].Title)
}

func TestDispatchHandlerErrorSurfaces(t *testing.T) {
	h, n, _ := newTestHandlers(t)
	n.err = errors.New("smtp down")
	d := NewDispatcher(h.Registry(), time.Second)

	ev := events.UserRegistered{Email: "x@example.com", FullName: "X", Role: "user"}
	err := d.Dispatch(context.Background(), events.RKUserRegistered, body(t, ev))
	assert.Error(t, err)
}

func TestDispatchMalformedPayloadSurfaces(t *testing.T) {
	h, _, _ := newTestHandlers(t)
	d := NewDispatcher(h.Registry(), time.Second)

	err := d.Dispatch(context.Background(), events.RKBookingStatusChanged, []byte(`{not json`))
	assert.Error(t, err)
}

func TestDispatchContainsPanics(t *testing.T) {
	d := NewDispatcher(map[string]HandlerFunc{
		"boom": func(context.Context, []byte) error { panic("kaboom") },
	}, time.Second)

	err := d.Dispatch(context.Background(), "boom", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestDispatchFailureDoesNotAffectOtherEvents(t *testing.T) {
	h, n, _ := newTestHandlers(t)
	d := NewDispatcher(h.Registry(), time.Second)

	require.Error(t, d.Dispatch(context.Background(), events.RKUserRegistered, []byte(`bad`)))

	// the next delivery still dispatches normally
	ev := events.UserRegistered{Email: "ok@example.com", FullName: "Ok", Role: "user"}
	require.NoError(t, d.Dispatch(context.Background(), events.RKUserRegistered, body(t, ev)))
	assert.Len(t, n.sent, 1)
}
