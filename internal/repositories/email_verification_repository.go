package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

type EmailVerificationRepository interface {
	Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.EmailVerification, error)
	GetByToken(ctx context.Context, token string) (*models.EmailVerification, error)
	// MarkUsed consumes the token once. A token already used gives ErrNotFound.
	MarkUsed(ctx context.Context, id int64) error
}

type emailVerificationRepository struct {
	DB *sql.DB
}

func NewEmailVerificationRepository(db *sql.DB) EmailVerificationRepository {
	return &emailVerificationRepository{DB: db}
}

func (r *emailVerificationRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.EmailVerification, error) {
	const q = `
		INSERT INTO email_verifications (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	v := &models.EmailVerification{UserID: userID, Token: token, ExpiresAt: expiresAt}
	if err := r.DB.QueryRowContext(ctx, q, userID, token, expiresAt).Scan(&v.ID, &v.CreatedAt); err != nil {
		return nil, fmt.Errorf("email_verification create: %w", err)
	}
	return v, nil
}

func (r *emailVerificationRepository) GetByToken(ctx context.Context, token string) (*models.EmailVerification, error) {
	const q = `SELECT id, user_id, token, expires_at, used_at, created_at
		FROM email_verifications WHERE token = $1`
	v := &models.EmailVerification{}
	var usedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, q, token).Scan(&v.ID, &v.UserID, &v.Token, &v.ExpiresAt, &usedAt, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("email_verification get: %w", err)
	}
	if usedAt.Valid {
		t := usedAt.Time
		v.UsedAt = &t
	}
	return v, nil
}

func (r *emailVerificationRepository) MarkUsed(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE email_verifications SET used_at = NOW() WHERE id = $1 AND used_at IS NULL`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
