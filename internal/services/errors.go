package services

import "errors"

var (
	ErrQuotaExceeded    = errors.New("generation limit reached")
	ErrGenerationFailed = errors.New("generation failed")
	ErrNotFound         = errors.New("not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrPromptTooShort   = errors.New("prompt must be at least 10 characters")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenUsed          = errors.New("token already used")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)
