package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
	"github.com/the-lucky-clover/agentcy-one/internal/repositories"
	"github.com/the-lucky-clover/agentcy-one/internal/utils"
)

const verificationTTL = 24 * time.Hour

type VerificationService interface {
	Send(ctx context.Context, user *models.User) error
	Resend(ctx context.Context, userID string) error
	Verify(ctx context.Context, token string) error
}

type verificationService struct {
	users  repositories.UserRepository
	repo   repositories.EmailVerificationRepository
	emails EmailService
}

func NewVerificationService(users repositories.UserRepository, repo repositories.EmailVerificationRepository, emails EmailService) VerificationService {
	return &verificationService{users: users, repo: repo, emails: emails}
}

func (s *verificationService) Send(ctx context.Context, user *models.User) error {
	token, err := utils.RandomToken(32)
	if err != nil {
		return err
	}
	if _, err := s.repo.Create(ctx, user.ID, token, time.Now().Add(verificationTTL)); err != nil {
		return err
	}
	return s.emails.SendVerificationEmail(user.Email, user.Name, token)
}

func (s *verificationService) Resend(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}
	return s.Send(ctx, user)
}

func (s *verificationService) Verify(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}
	v, err := s.repo.GetByToken(ctx, token)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if v.UsedAt != nil {
		return ErrTokenUsed
	}
	if time.Now().After(v.ExpiresAt) {
		return ErrInvalidToken
	}
	if err := s.repo.MarkUsed(ctx, v.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTokenUsed
		}
		return err
	}
	return s.users.MarkEmailVerified(ctx, v.UserID)
}
