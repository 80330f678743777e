package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/phillipbowles/FixItNow/services/booking-service/internal/chat"
	"github.com/phillipbowles/FixItNow/services/booking-service/internal/domain"
	"github.com/phillipbowles/FixItNow/services/booking-service/internal/service"
	"github.com/phillipbowles/FixItNow/services/booking-service/internal/ws"
)

type Handler struct {
	svc     *service.BookingSvc
	history *chat.History
	hub     *ws.Hub
	wsrv    *ws.Server
}

func NewHandler(svc *service.BookingSvc, history *chat.History, hub *ws.Hub, wsrv *ws.Server) *Handler {
	return &Handler{svc: svc, history: history, hub: hub, wsrv: wsrv}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.Health)
	r.POST("/bookings", h.Create)
	r.GET("/bookings", h.List)
	r.GET("/bookings/:id", h.Get)
	r.PATCH("/bookings/:id", h.Update)
	r.GET("/bookings/:id/chat/history", h.ChatHistory)
	r.GET("/ws/bookings/:id/chat", h.wsrv.HandleChat)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":               "booking-service",
		"project":               "FixItNow",
		"status":                "healthy",
		"websocket_connections": h.hub.Rooms(),
		"timestamp":             time.Now().UTC().Format(time.RFC3339),
	})
}

// POST /bookings?user_id=...
func (h *Handler) Create(c *gin.Context) {
	var in struct {
		ServiceID      string    `json:"service_id" binding:"required"`
		Title          string    `json:"title" binding:"required,min=5"`
		Description    string    `json:"description" binding:"required,min=10"`
		ScheduledDate  time.Time `json:"scheduled_date" binding:"required"`
		Address        string    `json:"address" binding:"required,min=5"`
		EstimatedPrice *float64  `json:"estimated_price"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	b, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		UserID:         userID,
		ServiceID:      in.ServiceID,
		Title:          in.Title,
		Description:    in.Description,
		ScheduledDate:  in.ScheduledDate,
		Address:        in.Address,
		EstimatedPrice: in.EstimatedPrice,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /bookings?user_id=&provider_id=&status=
func (h *Handler) List(c *gin.Context) {
	var status domain.Status
	if s := c.Query("status"); s != "" {
		parsed, err := domain.ParseStatus(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = parsed
	}
	out, err := h.svc.List(c.Request.Context(), c.Query("user_id"), c.Query("provider_id"), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Get(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

// PATCH /bookings/:id
func (h *Handler) Update(c *gin.Context) {
	var in struct {
		Status     *string  `json:"status"`
		ProviderID string   `json:"provider_id"`
		FinalPrice *float64 `json:"final_price"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var upd service.UpdateInput
	if in.Status != nil {
		st, err := domain.ParseStatus(*in.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		upd.Status = &st
	}
	upd.ProviderID = in.ProviderID
	upd.FinalPrice = in.FinalPrice

	b, err := h.svc.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, domain.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /bookings/:id/chat/history
func (h *Handler) ChatHistory(c *gin.Context) {
	bookingID := c.Param("id")
	msgs, err := h.history.Recent(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking_id": bookingID,
		"messages":   msgs,
		"count":      len(msgs),
	})
}
