package services

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/the-lucky-clover/agentcy-one/internal/authz"
	"github.com/the-lucky-clover/agentcy-one/internal/models"
	"github.com/the-lucky-clover/agentcy-one/internal/utils"
)

type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type AuthService interface {
	HashPassword(password string) (string, error)
	ComparePassword(hash, password string) bool
	// NewTokenPair signs an access token and mints an opaque refresh token. Storing the
	// refresh token is the caller's job.
	NewTokenPair(user *models.User) (*TokenPair, error)
}

type authService struct {
	signer     *authz.Signer
	refreshTTL time.Duration
	cost       int
}

func NewAuthService(signer *authz.Signer, refreshTTL time.Duration) AuthService {
	return &authService{signer: signer, refreshTTL: refreshTTL, cost: bcrypt.DefaultCost}
}

func (s *authService) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *authService) ComparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *authService) NewTokenPair(user *models.User) (*TokenPair, error) {
	access, exp, err := s.signer.Sign(user)
	if err != nil {
		return nil, err
	}
	rt, err := utils.RandomToken(32)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  exp,
		RefreshToken:     rt,
		RefreshExpiresAt: time.Now().Add(s.refreshTTL),
	}, nil
}
