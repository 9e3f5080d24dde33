// Package providers adapts hosted code generation services to one contract.
package providers

import (
	"context"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

// Request is the input every provider receives.
type Request struct {
	Prompt    string
	Type      models.GenerationType
	Framework models.Framework
}

// Provider turns a prompt into a normalized file list.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*models.GenerationResult, error)
}
