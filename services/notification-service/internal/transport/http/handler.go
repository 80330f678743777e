package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillipbowles/FixItNow/services/notification-service/internal/push"
)

type Handler struct {
	store *push.Store
}

func NewHandler(store *push.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.Health)
	r.GET("/notifications/:user_id", h.List)
	r.POST("/notifications/:user_id/mark-read", h.MarkRead)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "notification-service",
		"project":   "FixItNow",
		"status":    "healthy",
		"mode":      "event-driven",
		"listening": true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GET /notifications/:user_id?limit=20
func (h *Handler) List(c *gin.Context) {
	userID := c.Param("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	out, err := h.store.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":       userID,
		"notifications": out,
		"count":         len(out),
	})
}

// POST /notifications/:user_id/mark-read
func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.store.MarkAllRead(c.Request.Context(), c.Param("user_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read"})
}
