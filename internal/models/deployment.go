package models

import "time"

type Deployment struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	UserID       string    `json:"user_id"`
	GenerationID *string   `json:"generation_id,omitempty"`
	Provider     string    `json:"provider"`
	URL          string    `json:"url"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
