package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
	"github.com/the-lucky-clover/agentcy-one/internal/repositories"
)

type ProjectService interface {
	Create(ctx context.Context, userID string, in models.ProjectInput) (*models.Project, error)
	Get(ctx context.Context, userID, id string) (*models.Project, error)
	List(ctx context.Context, userID string, limit, offset int) ([]models.Project, error)
	Update(ctx context.Context, userID, id string, in models.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, userID, id string) error
	Deployments(ctx context.Context, userID, id string) ([]models.Deployment, error)
}

type projectService struct {
	repo        repositories.ProjectRepository
	deployments repositories.DeploymentRepository
}

func NewProjectService(repo repositories.ProjectRepository, deployments repositories.DeploymentRepository) ProjectService {
	return &projectService{repo: repo, deployments: deployments}
}

func (s *projectService) Create(ctx context.Context, userID string, in models.ProjectInput) (*models.Project, error) {
	p := &models.Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Framework:   in.Framework,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrProjectNotFound
	}
	p, err := s.repo.GetForUser(ctx, id, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	return p, err
}

func (s *projectService) List(ctx context.Context, userID string, limit, offset int) ([]models.Project, error) {
	return s.repo.ListForUser(ctx, userID, limit, offset)
}

func (s *projectService) Update(ctx context.Context, userID, id string, in models.ProjectInput) (*models.Project, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Framework = in.Framework
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, userID, id string) error {
	if uuid.Validate(id) != nil {
		return ErrProjectNotFound
	}
	err := s.repo.Delete(ctx, id, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProjectNotFound
	}
	return err
}

func (s *projectService) Deployments(ctx context.Context, userID, id string) ([]models.Deployment, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.deployments.ListByProject(ctx, id, userID)
}
