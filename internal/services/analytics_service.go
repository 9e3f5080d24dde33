package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
	"github.com/the-lucky-clover/agentcy-one/internal/repositories"
)

// AnalyticsService records product events. Tracking never fails the caller.
type AnalyticsService interface {
	Track(ctx context.Context, userID string, eventType string, props map[string]any)
}

type analyticsService struct {
	repo repositories.AnalyticsRepository
}

func NewAnalyticsService(repo repositories.AnalyticsRepository) AnalyticsService {
	return &analyticsService{repo: repo}
}

func (s *analyticsService) Track(ctx context.Context, userID string, eventType string, props map[string]any) {
	e := &models.AnalyticsEvent{EventType: eventType, Properties: props}
	if userID != "" {
		e.UserID = &userID
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		log.WithError(err).WithField("event", eventType).Warn("[analytics][track] insert failed")
	}
}
