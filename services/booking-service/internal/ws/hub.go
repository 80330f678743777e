// Package ws owns the live websocket sessions of a booking's chat.
package ws

import (
	"log"
	"sync"
)

// Session is one participant's duplex connection. Send must be bounded:
// a dead peer returns an error instead of blocking the hub.
type Session interface {
	Send(v any) error
	Close() error
}

// Hub maps bookingID -> participantID -> session. At most one session per
// participant per booking; registering again replaces the old session.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[string]Session
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]Session)}
}

func (h *Hub) Register(bookingID, participantID string, s Session) {
	h.mu.Lock()
	old := h.rooms[bookingID][participantID]
	if h.rooms[bookingID] == nil {
		h.rooms[bookingID] = make(map[string]Session)
	}
	h.rooms[bookingID][participantID] = s
	h.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	log.Printf("[booking] ws connected booking=%s user=%s", bookingID, participantID)
}

// Unregister removes s if it is still the participant's registered
// session. A stale session torn down after a replacement is a no-op, so
// a reconnect never evicts the connection that replaced it. Idempotent,
// and drops the room once it is empty.
func (h *Hub) Unregister(bookingID, participantID string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(bookingID, participantID, s)
}

func (h *Hub) dropLocked(bookingID, participantID string, s Session) {
	room, ok := h.rooms[bookingID]
	if !ok {
		return
	}
	if cur, ok := room[participantID]; !ok || cur != s {
		return
	}
	delete(room, participantID)
	if len(room) == 0 {
		delete(h.rooms, bookingID)
	}
	log.Printf("[booking] ws disconnected booking=%s user=%s", bookingID, participantID)
}

// Broadcast delivers v to every session of the booking. A failing session
// is logged and unregistered; the rest still receive the message.
func (h *Hub) Broadcast(bookingID string, v any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[bookingID]
	failed := make(map[string]Session)
	for participantID, s := range room {
		if err := s.Send(v); err != nil {
			log.Printf("[booking] ws send failed booking=%s user=%s: %v", bookingID, participantID, err)
			failed[participantID] = s
		}
	}
	for participantID, s := range failed {
		_ = s.Close()
		h.dropLocked(bookingID, participantID, s)
	}
}

// Participants reports how many sessions a booking currently has.
func (h *Hub) Participants(bookingID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[bookingID])
}

// Rooms reports the number of bookings with at least one live session.
func (h *Hub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
