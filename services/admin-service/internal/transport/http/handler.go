package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillipbowles/FixItNow/services/admin-service/internal/stats"
)

type Handler struct {
	collector *stats.Collector
}

func NewHandler(c *stats.Collector) *Handler {
	return &Handler{collector: c}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.health)
	r.GET("/dashboard/stats", h.dashboard)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "admin-service",
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.collector.Collect(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}
