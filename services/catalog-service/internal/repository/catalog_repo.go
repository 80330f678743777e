package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phillipbowles/FixItNow/services/catalog-service/internal/domain"
)

type CatalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Service{}, &domain.Review{})
}

func (r *CatalogRepo) CreateService(ctx context.Context, s *domain.Service) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *CatalogRepo) ServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	var s domain.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

type ServiceFilter struct {
	Category   string
	ProviderID string
	Search     string
	MinRating  float64
	IsActive   bool
	Skip       int
	Limit      int
}

func (r *CatalogRepo) ListServices(ctx context.Context, f ServiceFilter) ([]domain.Service, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	qb := r.db.WithContext(ctx).Model(&domain.Service{}).Where("is_active = ?", f.IsActive)
	if f.Category != "" {
		qb = qb.Where("category = ?", f.Category)
	}
	if f.ProviderID != "" {
		qb = qb.Where("provider_id = ?", f.ProviderID)
	}
	if f.MinRating > 0 {
		qb = qb.Where("rating >= ?", f.MinRating)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		qb = qb.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	var out []domain.Service
	err := qb.Order("rating DESC, created_at DESC").Offset(f.Skip).Limit(f.Limit).Find(&out).Error
	return out, err
}

func (r *CatalogRepo) CreateReview(ctx context.Context, rv *domain.Review) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *CatalogRepo) ReviewByBooking(ctx context.Context, bookingID string) (*domain.Review, error) {
	var rv domain.Review
	if err := r.db.WithContext(ctx).First(&rv, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *CatalogRepo) ReviewsByService(ctx context.Context, serviceID string, skip, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []domain.Review
	err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&out).Error
	return out, err
}

// AllReviews returns every review for a service, used to recompute its rating.
func (r *CatalogRepo) AllReviews(ctx context.Context, serviceID string) ([]domain.Review, error) {
	var out []domain.Review
	err := r.db.WithContext(ctx).Where("service_id = ?", serviceID).Find(&out).Error
	return out, err
}

func (r *CatalogRepo) SetRating(ctx context.Context, serviceID string, rating float64, total int) error {
	return r.db.WithContext(ctx).Model(&domain.Service{}).
		Where("id = ?", serviceID).
		Updates(map[string]any{"rating": rating, "total_reviews": total}).Error
}
