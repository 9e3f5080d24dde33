package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = errors.New("duplicate")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	MarkEmailVerified(ctx context.Context, id string) error

	// quota
	GetUsage(ctx context.Context, id string) (*models.Usage, error)
	IncrementUsage(ctx context.Context, id string) error

	// refresh helpers
	UpdateRefresh(ctx context.Context, id, token string, expiresAt time.Time) error
	RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, email, name, password_hash, email_verified, email_verified_at,
	usage_count, usage_limit, tier, refresh_token, refresh_expires_at,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var (
		verifiedAt sql.NullTime
		rt         sql.NullString
		rte        sql.NullTime
		tier       string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.EmailVerified, &verifiedAt,
		&u.UsageCount, &u.UsageLimit, &tier, &rt, &rte,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Tier = models.Tier(tier)
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.EmailVerifiedAt = &t
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (id, email, name, password_hash, email_verified, usage_count, usage_limit, tier)
		VALUES ($1,$2,$3,$4,FALSE,0,$5,$6)
		RETURNING created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		user.ID,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.Name,
		user.PasswordHash,
		user.UsageLimit,
		string(user.Tier),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT`+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash=$1, refresh_token=NULL, refresh_expires_at=NULL, updated_at=NOW() WHERE id=$2`,
		hash, id)
	return err
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email_verified=TRUE, email_verified_at=NOW(), updated_at=NOW() WHERE id=$1`, id)
	return err
}

// ===== quota =====

func (r *userRepository) GetUsage(ctx context.Context, id string) (*models.Usage, error) {
	var (
		u    models.Usage
		tier string
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT usage_count, usage_limit, tier FROM users WHERE id=$1`, id,
	).Scan(&u.Count, &u.Limit, &tier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get usage: %w", err)
	}
	u.Tier = models.Tier(tier)
	return &u, nil
}

// IncrementUsage adds one to the counter in a single statement. It does not re-check the limit.
func (r *userRepository) IncrementUsage(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET usage_count = usage_count + 1, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ===== refresh helpers =====

func (r *userRepository) UpdateRefresh(ctx context.Context, id, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET refresh_token=$1, refresh_expires_at=$2 WHERE id=$3`, token, expiresAt, id)
	return err
}

func (r *userRepository) RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	q := `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2
		WHERE refresh_token=$3 AND refresh_expires_at > NOW()
		RETURNING` + userColumns
	return scanUser(r.DB.QueryRowContext(ctx, q, newToken, newExpiresAt, oldToken))
}

func (r *userRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT`+userColumns+` FROM users WHERE refresh_token = $1`, token))
}
