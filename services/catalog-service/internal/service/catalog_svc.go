package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/phillipbowles/FixItNow/services/catalog-service/internal/domain"
	"github.com/phillipbowles/FixItNow/services/catalog-service/internal/repository"
)

var ErrDuplicateReview = errors.New("review already exists for this booking")

// Store is the persistence surface CatalogSvc needs.
type Store interface {
	CreateService(ctx context.Context, s *domain.Service) error
	ServiceByID(ctx context.Context, id string) (*domain.Service, error)
	ListServices(ctx context.Context, f repository.ServiceFilter) ([]domain.Service, error)
	CreateReview(ctx context.Context, rv *domain.Review) error
	ReviewByBooking(ctx context.Context, bookingID string) (*domain.Review, error)
	ReviewsByService(ctx context.Context, serviceID string, skip, limit int) ([]domain.Review, error)
	AllReviews(ctx context.Context, serviceID string) ([]domain.Review, error)
	SetRating(ctx context.Context, serviceID string, rating float64, total int) error
}

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// ListCache drops stale listing snapshots when the catalog changes.
type ListCache interface {
	Invalidate(ctx context.Context)
}

type CatalogSvc struct {
	store Store
	pub   Publisher
	cache ListCache
}

func NewCatalogSvc(store Store, pub Publisher, cache ListCache) *CatalogSvc {
	return &CatalogSvc{store: store, pub: pub, cache: cache}
}

type CreateServiceInput struct {
	ProviderID  string
	Name        string
	Description string
	Category    string
	BasePrice   float64
	PriceUnit   string
}

func (s *CatalogSvc) CreateService(ctx context.Context, in CreateServiceInput) (*domain.Service, error) {
	if in.PriceUnit == "" {
		in.PriceUnit = "per hour"
	}
	svc := &domain.Service{
		ProviderID:  in.ProviderID,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		BasePrice:   in.BasePrice,
		PriceUnit:   in.PriceUnit,
		IsActive:    true,
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.publish(ctx, "catalog.service_created", map[string]any{
		"service_id":  svc.ID,
		"provider_id": svc.ProviderID,
		"name":        svc.Name,
		"category":    svc.Category,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
	return svc, nil
}

func (s *CatalogSvc) Service(ctx context.Context, id string) (*domain.Service, error) {
	return s.store.ServiceByID(ctx, id)
}

func (s *CatalogSvc) ListServices(ctx context.Context, f repository.ServiceFilter) ([]domain.Service, error) {
	return s.store.ListServices(ctx, f)
}

type CreateReviewInput struct {
	ServiceID string
	UserID    string
	BookingID string
	Rating    int
	Comment   *string
}

// CreateReview stores the review and recomputes the service's average
// rating from all of its reviews. One review per booking.
func (s *CatalogSvc) CreateReview(ctx context.Context, in CreateReviewInput) (*domain.Review, error) {
	svc, err := s.store.ServiceByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.ReviewByBooking(ctx, in.BookingID); err == nil {
		return nil, ErrDuplicateReview
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rv := &domain.Review{
		ServiceID: svc.ID,
		UserID:    in.UserID,
		BookingID: in.BookingID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}
	if err := s.store.CreateReview(ctx, rv); err != nil {
		return nil, err
	}

	if err := s.recalcRating(ctx, svc.ID); err != nil {
		log.Printf("[catalog] rating recalc for %s failed: %v", svc.ID, err)
	}

	s.cache.Invalidate(ctx)
	s.publish(ctx, "catalog.review_created", map[string]any{
		"review_id":  rv.ID,
		"service_id": svc.ID,
		"user_id":    in.UserID,
		"rating":     in.Rating,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
	return rv, nil
}

func (s *CatalogSvc) Reviews(ctx context.Context, serviceID string, skip, limit int) ([]domain.Review, error) {
	if _, err := s.store.ServiceByID(ctx, serviceID); err != nil {
		return nil, err
	}
	return s.store.ReviewsByService(ctx, serviceID, skip, limit)
}

func (s *CatalogSvc) recalcRating(ctx context.Context, serviceID string) error {
	reviews, err := s.store.AllReviews(ctx, serviceID)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
	}
	avg := math.Round(float64(sum)/float64(len(reviews))*100) / 100
	return s.store.SetRating(ctx, serviceID, avg, len(reviews))
}

func (s *CatalogSvc) publish(ctx context.Context, key string, v any) {
	if err := s.pub.PublishJSON(ctx, key, v); err != nil {
		log.Printf("[catalog] publish %s failed, event lost: %v", key, err)
	}
}
