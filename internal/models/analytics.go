package models

import "time"

const (
	EventUserRegistered      = "user_registered"
	EventUserLogin           = "user_login"
	EventGenerationCompleted = "generation_completed"
	EventGenerationFailed    = "generation_failed"
)

type AnalyticsEvent struct {
	ID         int64          `json:"id"`
	UserID     *string        `json:"user_id,omitempty"`
	EventType  string         `json:"event_type"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
}
