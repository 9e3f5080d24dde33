package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, s *models.Subscription) error
	GetLatest(ctx context.Context, userID string) (*models.Subscription, error)
}

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, s *models.Subscription) error {
	const q = `
		INSERT INTO subscriptions (id, user_id, tier, status, current_period_end)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`
	if err := r.db.QueryRowContext(ctx, q,
		s.ID, s.UserID, string(s.Tier), s.Status, s.CurrentPeriodEnd,
	).Scan(&s.CreatedAt); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) GetLatest(ctx context.Context, userID string) (*models.Subscription, error) {
	const q = `SELECT id, user_id, tier, status, current_period_end, created_at
		FROM subscriptions WHERE user_id=$1 ORDER BY created_at DESC LIMIT 1`
	var (
		s    models.Subscription
		tier string
		end  sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&s.ID, &s.UserID, &tier, &s.Status, &end, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	s.Tier = models.Tier(tier)
	if end.Valid {
		t := end.Time
		s.CurrentPeriodEnd = &t
	}
	return &s, nil
}
