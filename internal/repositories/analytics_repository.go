package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

type AnalyticsRepository interface {
	Insert(ctx context.Context, e *models.AnalyticsEvent) error
}

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Insert(ctx context.Context, e *models.AnalyticsEvent) error {
	props := e.Properties
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("marshal properties: %w", err)
	}
	const q = `
		INSERT INTO analytics_events (user_id, event_type, properties)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, q, e.UserID, e.EventType, string(raw)).Scan(&e.ID, &e.CreatedAt); err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}
