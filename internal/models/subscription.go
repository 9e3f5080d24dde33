package models

import "time"

type Subscription struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Tier             Tier       `json:"tier"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
