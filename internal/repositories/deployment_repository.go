package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

type DeploymentRepository interface {
	ListByProject(ctx context.Context, projectID, userID string) ([]models.Deployment, error)
}

type deploymentRepository struct {
	db *sql.DB
}

func NewDeploymentRepository(db *sql.DB) DeploymentRepository {
	return &deploymentRepository{db: db}
}

func (r *deploymentRepository) ListByProject(ctx context.Context, projectID, userID string) ([]models.Deployment, error) {
	const q = `SELECT id, project_id, user_id, generation_id, provider, url, status, created_at
		FROM deployments WHERE project_id=$1 AND user_id=$2 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	out := []models.Deployment{}
	for rows.Next() {
		var (
			d   models.Deployment
			gen sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.UserID, &gen, &d.Provider, &d.URL, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		if gen.Valid {
			s := gen.String
			d.GenerationID = &s
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
