package domain

import "time"

// Categories is the fixed set a service may be listed under.
var Categories = []string{
	"Plumbing",
	"Electrical",
	"Carpentry",
	"Cleaning",
	"Gardening",
	"Painting",
	"Repairs",
	"Maintenance",
	"Moving",
	"Technology",
}

type Service struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	ProviderID   string  `gorm:"index" json:"provider_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Category     string  `gorm:"index" json:"category"`
	BasePrice    float64 `json:"base_price"`
	PriceUnit    string  `json:"price_unit"`
	IsActive     bool    `gorm:"default:true" json:"is_active"`
	Rating       float64 `gorm:"default:0" json:"rating"`
	TotalReviews int     `gorm:"default:0" json:"total_reviews"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Review struct {
	ID        string  `gorm:"primaryKey" json:"id"`
	ServiceID string  `gorm:"index" json:"service_id"`
	UserID    string  `json:"user_id"`
	BookingID string  `gorm:"uniqueIndex" json:"booking_id"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
