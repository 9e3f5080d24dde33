package models

import "time"

// EmailVerification is one emailed verification link. A new row is written per send.
type EmailVerification struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	Token     string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
