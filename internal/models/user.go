package models

import "time"

// User is a tenant account. UsageCount is only advanced by a completed generation.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	PasswordHash    string     `json:"-"`
	EmailVerified   bool       `json:"email_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	UsageCount      int        `json:"usage_count"`
	UsageLimit      int        `json:"usage_limit"`
	Tier            Tier       `json:"tier"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
}

// Usage is the quota snapshot read by the generation gate.
type Usage struct {
	Count int  `json:"usage"`
	Limit int  `json:"limit"`
	Tier  Tier `json:"tier"`
}

func (u Usage) Remaining() int {
	if u.Count >= u.Limit {
		return 0
	}
	return u.Limit - u.Count
}

func (u Usage) Exceeded() bool {
	return u.Count >= u.Limit
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
