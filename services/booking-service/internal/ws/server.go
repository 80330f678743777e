package ws

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/phillipbowles/FixItNow/services/booking-service/internal/chat"
)

// Server upgrades chat connections and runs their read loops.
type Server struct {
	hub      *Hub
	history  *chat.History
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub, history *chat.History) *Server {
	return &Server{
		hub:     hub,
		history: history,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// gateway fronts this service; origin checks happen there
				return true
			},
		},
	}
}

type inbound struct {
	Message string `json:"message"`
}

// HandleChat is the duplex session endpoint: GET /ws/bookings/:id/chat?user_id=...
func (s *Server) HandleChat(c *gin.Context) {
	bookingID := c.Param("id")
	userID := c.Query("user_id")
	if bookingID == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id and user_id required"})
		return
	}

	wsc, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[booking] ws upgrade failed: %v", err)
		return
	}

	conn := NewConn(wsc)
	s.hub.Register(bookingID, userID, conn)
	go conn.writePump()

	_ = conn.Send(gin.H{
		"type":      "connected",
		"message":   "Connected to booking " + bookingID + " chat",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})

	s.readPump(c.Request.Context(), conn, bookingID, userID)
}

func (s *Server) readPump(ctx context.Context, conn *Conn, bookingID, userID string) {
	defer func() {
		s.hub.Unregister(bookingID, userID, conn)
		_ = conn.Close()
	}()

	conn.ws.SetReadLimit(maxMessageSize)
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in inbound
		if err := conn.ws.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[booking] ws read error booking=%s user=%s: %v", bookingID, userID, err)
			}
			return
		}
		s.handleInbound(ctx, bookingID, userID, in)
	}
}

// handleInbound persists the message to the recent-history log, then fans
// it out to every live participant, the sender included.
func (s *Server) handleInbound(ctx context.Context, bookingID, userID string, in inbound) {
	m := chat.Message{
		Type:      "chat_message",
		BookingID: bookingID,
		SenderID:  userID,
		Message:   in.Message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.history.Append(ctx, m); err != nil {
		// history is best effort; the live fan-out still happens
		log.Printf("[booking] chat history append failed booking=%s: %v", bookingID, err)
	}
	s.hub.Broadcast(bookingID, m)
}
