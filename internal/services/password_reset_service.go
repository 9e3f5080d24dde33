package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/the-lucky-clover/agentcy-one/internal/repositories"
	"github.com/the-lucky-clover/agentcy-one/internal/utils"
)

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type passwordResetService struct {
	userRepo repositories.UserRepository
	repo     repositories.PasswordResetRepository
	emails   EmailService
	auth     AuthService
}

func NewPasswordResetService(userRepo repositories.UserRepository, repo repositories.PasswordResetRepository, emails EmailService, auth AuthService) PasswordResetService {
	return &passwordResetService{
		userRepo: userRepo,
		repo:     repo,
		emails:   emails,
		auth:     auth,
	}
}

// RequestReset reports success whether or not the email exists.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Printf("[password-reset] request for %q: user not found or error: %v", email, err)
		return nil
	}

	token, err := utils.RandomToken(32)
	if err != nil {
		return err
	}
	if _, err := s.repo.Create(ctx, user.ID, token, time.Now().Add(time.Hour)); err != nil {
		return err
	}
	if err := s.emails.SendPasswordResetEmail(user.Email, token); err != nil {
		log.Printf("[password-reset] failed to send email to %s: %v", user.Email, err)
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	newPassword = strings.TrimSpace(newPassword)
	if token == "" {
		return ErrInvalidToken
	}
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	pr, err := s.repo.GetByToken(ctx, token)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if pr.UsedAt != nil {
		return ErrTokenUsed
	}
	if time.Now().After(pr.ExpiresAt) {
		return ErrInvalidToken
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	// consume first so two concurrent submits cannot both set a password
	if err := s.repo.MarkUsed(ctx, pr.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTokenUsed
		}
		return err
	}
	return s.userRepo.UpdatePassword(ctx, pr.UserID, hash)
}
