package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/phillipbowles/FixItNow/services/catalog-service/internal/cache"
	"github.com/phillipbowles/FixItNow/services/catalog-service/internal/domain"
	"github.com/phillipbowles/FixItNow/services/catalog-service/internal/repository"
	"github.com/phillipbowles/FixItNow/services/catalog-service/internal/service"
)

type Handler struct {
	svc   *service.CatalogSvc
	cache *cache.ListCache
}

func NewHandler(svc *service.CatalogSvc, c *cache.ListCache) *Handler {
	return &Handler{svc: svc, cache: c}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.health)
	r.POST("/services", h.createService)
	r.GET("/services", h.listServices)
	r.GET("/services/:id", h.getService)
	r.POST("/services/:id/reviews", h.createReview)
	r.GET("/services/:id/reviews", h.listReviews)
	r.GET("/categories", h.categories)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "catalog-service",
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type createServiceReq struct {
	Name        string  `json:"name" binding:"required,min=3"`
	Description string  `json:"description" binding:"required,min=10"`
	Category    string  `json:"category" binding:"required"`
	BasePrice   float64 `json:"base_price" binding:"required,gt=0"`
	PriceUnit   string  `json:"price_unit"`
}

func (h *Handler) createService(c *gin.Context) {
	providerID := c.Query("provider_id")
	if providerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "provider_id is required"})
		return
	}
	var req createServiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	svc, err := h.svc.CreateService(c.Request.Context(), service.CreateServiceInput{
		ProviderID:  providerID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		BasePrice:   req.BasePrice,
		PriceUnit:   req.PriceUnit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *Handler) listServices(c *gin.Context) {
	f := repository.ServiceFilter{
		Category:   c.Query("category"),
		ProviderID: c.Query("provider_id"),
		Search:     c.Query("search"),
		IsActive:   c.DefaultQuery("is_active", "true") == "true",
		Skip:       intQuery(c, "skip", 0),
		Limit:      intQuery(c, "limit", 50),
	}
	if v := c.Query("min_rating"); v != "" {
		f.MinRating, _ = strconv.ParseFloat(v, 64)
	}

	defaultListing := f == repository.ServiceFilter{IsActive: true, Limit: 50}
	if defaultListing {
		if cached := h.cache.Get(c.Request.Context()); cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	services, err := h.svc.ListServices(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if defaultListing {
		h.cache.Set(c.Request.Context(), services)
	}
	c.JSON(http.StatusOK, services)
}

func (h *Handler) getService(c *gin.Context) {
	svc, err := h.svc.Service(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "service not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, svc)
}

type createReviewReq struct {
	BookingID string  `json:"booking_id" binding:"required"`
	Rating    int     `json:"rating" binding:"required,gte=1,lte=5"`
	Comment   *string `json:"comment"`
}

func (h *Handler) createReview(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "user_id is required"})
		return
	}
	var req createReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	rv, err := h.svc.CreateReview(c.Request.Context(), service.CreateReviewInput{
		ServiceID: c.Param("id"),
		UserID:    userID,
		BookingID: req.BookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "service not found"})
		case errors.Is(err, service.ErrDuplicateReview):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "review already exists for this booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, rv)
}

func (h *Handler) listReviews(c *gin.Context) {
	reviews, err := h.svc.Reviews(c.Request.Context(), c.Param("id"), intQuery(c, "skip", 0), intQuery(c, "limit", 20))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "service not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": domain.Categories})
}

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
