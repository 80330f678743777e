package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/phillipbowles/FixItNow/pkg/auth"
	"github.com/phillipbowles/FixItNow/services/auth-service/internal/cache"
	"github.com/phillipbowles/FixItNow/services/auth-service/internal/domain"
	"github.com/phillipbowles/FixItNow/services/auth-service/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
)

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type AuthSvc struct {
	repo  *repository.UserRepo
	cache *cache.UserCache
	pub   Publisher
	ttl   time.Duration
}

func NewAuthSvc(repo *repository.UserRepo, c *cache.UserCache, pub Publisher, tokenTTL time.Duration) *AuthSvc {
	return &AuthSvc{repo: repo, cache: c, pub: pub, ttl: tokenTTL}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     string
	Phone    string
	Address  string
}

func (s *AuthSvc) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.ToLower(in.Email)
	if _, err := s.repo.ByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        email,
		FullName:     in.FullName,
		PasswordHash: string(hash),
		Role:         domain.Role(in.Role),
		Phone:        in.Phone,
		Address:      in.Address,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.publish(ctx, "user.registered", map[string]any{
		"user_id":   u.ID,
		"email":     u.Email,
		"role":      string(u.Role),
		"full_name": u.FullName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	return u, nil
}

func (s *AuthSvc) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.repo.ByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, "", ErrInactiveUser
	}

	token, err := auth.CreateAccessToken(u.ID, string(u.Role), u.Email, s.ttl)
	if err != nil {
		return nil, "", err
	}

	s.publish(ctx, "user.logged_in", map[string]any{
		"user_id":   u.ID,
		"email":     u.Email,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	return u, token, nil
}

// ByEmail serves /me: cache first, database on a miss.
func (s *AuthSvc) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, _ := s.cache.Get(ctx, email); u != nil {
		return u, nil
	}
	u, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, u)
	return u, nil
}

func (s *AuthSvc) ByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.ByID(ctx, id)
}

func (s *AuthSvc) UpdateProfile(ctx context.Context, id, fullName, phone, address string) (*domain.User, error) {
	fields := map[string]any{}
	if fullName != "" {
		fields["full_name"] = fullName
	}
	if phone != "" {
		fields["phone"] = phone
	}
	if address != "" {
		fields["address"] = address
	}
	u, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, u.Email)
	s.publish(ctx, "user.profile_updated", map[string]any{
		"user_id":   u.ID,
		"email":     u.Email,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	return u, nil
}

func (s *AuthSvc) publish(ctx context.Context, key string, v any) {
	if err := s.pub.PublishJSON(ctx, key, v); err != nil {
		log.Printf("[auth] publish %s failed: %v", key, err)
	}
}
