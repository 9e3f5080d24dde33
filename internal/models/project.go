package models

import "time"

type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Framework   Framework `json:"framework,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProjectInput struct {
	Name        string    `json:"name" binding:"required,max=120"`
	Description string    `json:"description" binding:"max=2000"`
	Framework   Framework `json:"framework" binding:"omitempty,oneof=react vue svelte nextjs"`
}
