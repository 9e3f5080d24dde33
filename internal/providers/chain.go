package providers

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/the-lucky-clover/agentcy-one/internal/metrics"
	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

// Chain tries Primary once and, on any error, Fallback once.
type Chain struct {
	Primary  Provider
	Fallback Provider
}

func NewChain(primary, fallback Provider) *Chain {
	return &Chain{Primary: primary, Fallback: fallback}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Generate(ctx context.Context, req Request) (*models.GenerationResult, error) {
	res, err := c.Primary.Generate(ctx, req)
	if err == nil {
		metrics.ProviderCalls.WithLabelValues(c.Primary.Name(), "ok").Inc()
		return res, nil
	}
	metrics.ProviderCalls.WithLabelValues(c.Primary.Name(), "error").Inc()
	log.WithError(err).Warn("[provider][chain] primary failed, trying fallback")

	res, err = c.Fallback.Generate(ctx, req)
	if err != nil {
		metrics.ProviderCalls.WithLabelValues(c.Fallback.Name(), "error").Inc()
		return nil, err
	}
	metrics.ProviderCalls.WithLabelValues(c.Fallback.Name(), "ok").Inc()
	return res, nil
}
