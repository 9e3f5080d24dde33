package models

import "time"

type GenerationStatus string

const (
	GenerationProcessing GenerationStatus = "processing"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s GenerationStatus) Terminal() bool {
	return s == GenerationCompleted || s == GenerationFailed
}

type GenerationType string

const (
	TypeComponent GenerationType = "component"
	TypePage      GenerationType = "page"
	TypeAPI       GenerationType = "api"
	TypeFullstack GenerationType = "fullstack"
)

type Framework string

const (
	FrameworkReact  Framework = "react"
	FrameworkVue    Framework = "vue"
	FrameworkSvelte Framework = "svelte"
	FrameworkNextJS Framework = "nextjs"
)

// GeneratedFile is one file returned by a provider, before it is stored.
type GeneratedFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

// GenerationResult is the normalized provider output.
type GenerationResult struct {
	Files        []GeneratedFile `json:"files"`
	Description  string          `json:"description,omitempty"`
	Instructions string          `json:"instructions,omitempty"`
}

// FileDescriptor points at a stored artifact. Written once per file.
type FileDescriptor struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

type GenerationRequest struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	ProjectID   *string           `json:"project_id,omitempty"`
	Prompt      string            `json:"prompt"`
	Type        GenerationType    `json:"type"`
	Framework   Framework         `json:"framework"`
	Status      GenerationStatus  `json:"status"`
	Result      *GenerationResult `json:"result,omitempty"`
	Files       []FileDescriptor  `json:"files"`
	Error       *string           `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// GenerateRequest is the body of POST /generation/generate.
type GenerateRequest struct {
	Prompt    string         `json:"prompt" binding:"required,min=10"`
	Type      GenerationType `json:"type" binding:"required,oneof=component page api fullstack"`
	Framework Framework      `json:"framework" binding:"omitempty,oneof=react vue svelte nextjs"`
	ProjectID string         `json:"projectId" binding:"omitempty,uuid"`
}
