package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetForUser(ctx context.Context, id, userID string) (*models.Project, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id, userID string) error
}

type projectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	const q = `
		INSERT INTO projects (id, user_id, name, description, framework)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`
	if err := r.db.QueryRowContext(ctx, q,
		p.ID, p.UserID, p.Name, p.Description, string(p.Framework),
	).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *projectRepository) GetForUser(ctx context.Context, id, userID string) (*models.Project, error) {
	const q = `SELECT id, user_id, name, description, framework, created_at, updated_at
		FROM projects WHERE id=$1 AND user_id=$2`
	var (
		p  models.Project
		fw string
	)
	err := r.db.QueryRowContext(ctx, q, id, userID).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &fw, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	p.Framework = models.Framework(fw)
	return &p, nil
}

func (r *projectRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Project, error) {
	const q = `SELECT id, user_id, name, description, framework, created_at, updated_at
		FROM projects WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		var (
			p  models.Project
			fw string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &fw, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Framework = models.Framework(fw)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *projectRepository) Update(ctx context.Context, p *models.Project) error {
	const q = `
		UPDATE projects SET name=$1, description=$2, framework=$3, updated_at=NOW()
		WHERE id=$4 AND user_id=$5
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, q, p.Name, p.Description, string(p.Framework), p.ID, p.UserID).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *projectRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
