package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

// GenerationRepository is the request ledger. Finalize methods only touch rows still
// in processing, so a terminal status is never overwritten.
type GenerationRepository interface {
	Insert(ctx context.Context, g *models.GenerationRequest) error
	Complete(ctx context.Context, id string, result *models.GenerationResult, files []models.FileDescriptor, completedAt time.Time) error
	Fail(ctx context.Context, id, message string, failedAt time.Time) error
	GetForUser(ctx context.Context, id, userID string) (*models.GenerationRequest, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.GenerationRequest, error)
	CountForUser(ctx context.Context, userID string) (int, error)
}

type generationRepository struct {
	db *sql.DB
}

func NewGenerationRepository(db *sql.DB) GenerationRepository {
	return &generationRepository{db: db}
}

const generationColumns = `id, user_id, project_id, prompt, type, framework, status,
	result, files, error, created_at, completed_at`

func (r *generationRepository) Insert(ctx context.Context, g *models.GenerationRequest) error {
	const q = `
		INSERT INTO generation_requests (id, user_id, project_id, prompt, type, framework, status, files, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'[]'::jsonb,$8)`
	if _, err := r.db.ExecContext(ctx, q,
		g.ID, g.UserID, g.ProjectID, g.Prompt, string(g.Type), string(g.Framework), string(g.Status), g.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

func (r *generationRepository) Complete(ctx context.Context, id string, result *models.GenerationResult, files []models.FileDescriptor, completedAt time.Time) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if files == nil {
		files = []models.FileDescriptor{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}
	const q = `
		UPDATE generation_requests
		SET status=$1, result=$2, files=$3, completed_at=$4
		WHERE id=$5 AND status=$6`
	return r.finalize(ctx, q, string(models.GenerationCompleted), string(resultJSON), string(filesJSON), completedAt, id, string(models.GenerationProcessing))
}

func (r *generationRepository) Fail(ctx context.Context, id, message string, failedAt time.Time) error {
	const q = `
		UPDATE generation_requests
		SET status=$1, error=$2, completed_at=$3
		WHERE id=$4 AND status=$5`
	return r.finalize(ctx, q, string(models.GenerationFailed), message, failedAt, id, string(models.GenerationProcessing))
}

func (r *generationRepository) finalize(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("finalize generation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *generationRepository) GetForUser(ctx context.Context, id, userID string) (*models.GenerationRequest, error) {
	q := `SELECT ` + generationColumns + ` FROM generation_requests WHERE id=$1 AND user_id=$2`
	return scanGeneration(r.db.QueryRowContext(ctx, q, id, userID))
}

func (r *generationRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.GenerationRequest, error) {
	q := `SELECT ` + generationColumns + ` FROM generation_requests
		WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	out := []models.GenerationRequest{}
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (r *generationRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generation_requests WHERE user_id=$1`, userID).Scan(&n)
	return n, err
}

func scanGeneration(row rowScanner) (*models.GenerationRequest, error) {
	var (
		g           models.GenerationRequest
		projectID   sql.NullString
		typ, fw, st string
		result      []byte
		files       []byte
		errMsg      sql.NullString
		completedAt sql.NullTime
	)
	err := row.Scan(&g.ID, &g.UserID, &projectID, &g.Prompt, &typ, &fw, &st,
		&result, &files, &errMsg, &g.CreatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	g.Type = models.GenerationType(typ)
	g.Framework = models.Framework(fw)
	g.Status = models.GenerationStatus(st)
	if projectID.Valid {
		s := projectID.String
		g.ProjectID = &s
	}
	if len(result) > 0 && string(result) != "null" {
		var res models.GenerationResult
		if err := json.Unmarshal(result, &res); err != nil {
			return nil, fmt.Errorf("decode result of %s: %w", g.ID, err)
		}
		g.Result = &res
	}
	g.Files = []models.FileDescriptor{}
	if len(files) > 0 {
		if err := json.Unmarshal(files, &g.Files); err != nil {
			return nil, fmt.Errorf("decode files of %s: %w", g.ID, err)
		}
	}
	if errMsg.Valid {
		s := errMsg.String
		g.Error = &s
	}
	if completedAt.Valid {
		t := completedAt.Time
		g.CompletedAt = &t
	}
	return &g, nil
}
