package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
	"github.com/the-lucky-clover/agentcy-one/internal/repositories"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsage(ctx context.Context, id string) (*models.Usage, error)
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
}

type userService struct {
	repo          repositories.UserRepository
	subscriptions repositories.SubscriptionRepository
	auth          AuthService
	verification  VerificationService
	emails        EmailService
	analytics     AnalyticsService
}

func NewUserService(
	repo repositories.UserRepository,
	subscriptions repositories.SubscriptionRepository,
	auth AuthService,
	verification VerificationService,
	emails EmailService,
	analytics AnalyticsService,
) UserService {
	return &userService{
		repo:          repo,
		subscriptions: subscriptions,
		auth:          auth,
		verification:  verification,
		emails:        emails,
		analytics:     analytics,
	}
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, *TokenPair, error) {
	if len(strings.TrimSpace(req.Password)) < 8 {
		return nil, nil, ErrWeakPassword
	}
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Tier:         models.TierFree,
		UsageLimit:   models.TierFree.Limit(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	sub := &models.Subscription{ID: uuid.NewString(), UserID: user.ID, Tier: models.TierFree, Status: "active"}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		log.Printf("[user][register] warning: subscription row for %s: %v", user.ID, err)
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.verification.Send(ctx, user); err != nil {
		log.Printf("[user][register] warning: verification email to %s: %v", user.Email, err)
	}
	if err := s.emails.SendWelcomeEmail(user.Email, user.Name); err != nil {
		log.Printf("[user][register] warning: welcome email to %s: %v", user.Email, err)
	}
	s.analytics.Track(ctx, user.ID, models.EventUserRegistered, map[string]any{"tier": user.Tier})
	return user, tokens, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if user.PasswordHash == "" || !s.auth.ComparePassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}
	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	s.analytics.Track(ctx, user.ID, models.EventUserLogin, nil)
	return user, tokens, nil
}

// Refresh rotates the refresh token; the old one stops working.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	old := strings.TrimSpace(refreshToken)
	if old == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.repo.GetByRefreshToken(ctx, old)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if user.RefreshExpiresAt == nil || time.Now().After(*user.RefreshExpiresAt) {
		return nil, ErrInvalidToken
	}

	tokens, err := s.auth.NewTokenPair(user)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.RotateRefresh(ctx, old, tokens.RefreshToken, tokens.RefreshExpiresAt); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return tokens, nil
}

func (s *userService) issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	tokens, err := s.auth.NewTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRefresh(ctx, user.ID, tokens.RefreshToken, tokens.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return tokens, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *userService) GetUsage(ctx context.Context, id string) (*models.Usage, error) {
	u, err := s.repo.GetUsage(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *userService) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	sub, err := s.subscriptions.GetLatest(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return sub, err
}
