package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/the-lucky-clover/agentcy-one/internal/metrics"
	"github.com/the-lucky-clover/agentcy-one/internal/models"
	"github.com/the-lucky-clover/agentcy-one/internal/providers"
	"github.com/the-lucky-clover/agentcy-one/internal/repositories"
	"github.com/the-lucky-clover/agentcy-one/internal/storage"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 50
	MinPromptLength     = 10
)

// GenerateInput carries a validated generate call for one account.
type GenerateInput struct {
	UserID    string
	ProjectID string
	Prompt    string
	Type      models.GenerationType
	Framework models.Framework
}

// GenerateOutput is a completed request plus the raw provider result.
type GenerateOutput struct {
	Request *models.GenerationRequest
	Result  *models.GenerationResult
}

// Code returns the content of the first generated file.
func (o *GenerateOutput) Code() string {
	if o == nil || o.Result == nil || len(o.Result.Files) == 0 {
		return ""
	}
	return o.Result.Files[0].Content
}

type HistoryPage struct {
	Generations []models.GenerationRequest
	Page        int
	Limit       int
	Total       int
}

func (p HistoryPage) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

type GenerationService interface {
	Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error)
	History(ctx context.Context, userID string, page, limit int) (*HistoryPage, error)
	Get(ctx context.Context, userID, id string) (*models.GenerationRequest, error)
}

type generationService struct {
	users     repositories.UserRepository
	ledger    repositories.GenerationRepository
	projects  repositories.ProjectRepository
	provider  providers.Provider
	store     storage.ArtifactStore
	analytics AnalyticsService
	now       func() time.Time
}

func NewGenerationService(
	users repositories.UserRepository,
	ledger repositories.GenerationRepository,
	projects repositories.ProjectRepository,
	provider providers.Provider,
	store storage.ArtifactStore,
	analytics AnalyticsService,
) GenerationService {
	return &generationService{
		users:     users,
		ledger:    ledger,
		projects:  projects,
		provider:  provider,
		store:     store,
		analytics: analytics,
		now:       time.Now,
	}
}

func (s *generationService) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	// the prompt is stored as sent; only its trimmed length is checked
	if utf8.RuneCountInString(strings.TrimSpace(in.Prompt)) < MinPromptLength {
		return nil, ErrPromptTooShort
	}

	usage, err := s.users.GetUsage(ctx, in.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("quota check: %w", err)
	}
	if usage.Exceeded() {
		metrics.Generations.WithLabelValues("quota_exceeded").Inc()
		return nil, ErrQuotaExceeded
	}

	var projectID *string
	if in.ProjectID != "" {
		if uuid.Validate(in.ProjectID) != nil {
			return nil, ErrProjectNotFound
		}
		if _, err := s.projects.GetForUser(ctx, in.ProjectID, in.UserID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrProjectNotFound
			}
			return nil, err
		}
		projectID = &in.ProjectID
	}

	framework := in.Framework
	if framework == "" {
		framework = models.FrameworkReact
	}

	req := &models.GenerationRequest{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		ProjectID: projectID,
		Prompt:    in.Prompt,
		Type:      in.Type,
		Framework: framework,
		Status:    models.GenerationProcessing,
		Files:     []models.FileDescriptor{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.ledger.Insert(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	logger := log.WithFields(log.Fields{
		"generation_id": req.ID,
		"user_id":       req.UserID,
		"type":          req.Type,
		"framework":     req.Framework,
	})
	logger.Info("[generation][generate] processing")

	result, files, err := s.run(ctx, req)
	if err != nil {
		s.fail(ctx, logger, req, err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	completedAt := s.now().UTC()
	if err := s.ledger.Complete(ctx, req.ID, result, files, completedAt); err != nil {
		s.fail(ctx, logger, req, err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if err := s.users.IncrementUsage(ctx, req.UserID); err != nil {
		// the row is already completed; the unit of quota is lost
		logger.WithError(err).Error("[generation][generate] usage increment failed")
	}

	req.Status = models.GenerationCompleted
	req.Result = result
	req.Files = files
	req.CompletedAt = &completedAt

	metrics.Generations.WithLabelValues("completed").Inc()
	logger.WithField("files", len(files)).Info("[generation][generate] completed")
	s.analytics.Track(ctx, req.UserID, models.EventGenerationCompleted, map[string]any{
		"generation_id": req.ID,
		"type":          req.Type,
		"framework":     req.Framework,
		"files":         len(files),
	})
	return &GenerateOutput{Request: req, Result: result}, nil
}

// run calls the provider and stores every returned file in order.
func (s *generationService) run(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, []models.FileDescriptor, error) {
	result, err := s.provider.Generate(ctx, providers.Request{
		Prompt:    req.Prompt,
		Type:      req.Type,
		Framework: req.Framework,
	})
	if err != nil {
		return nil, nil, err
	}
	if result == nil || len(result.Files) == 0 {
		return nil, nil, errors.New("provider returned no files")
	}

	files := make([]models.FileDescriptor, 0, len(result.Files))
	for _, f := range result.Files {
		d, err := s.store.Put(ctx, req.ID, f)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, d)
	}
	return result, files, nil
}

func (s *generationService) fail(ctx context.Context, logger *log.Entry, req *models.GenerationRequest, cause error) {
	metrics.Generations.WithLabelValues("failed").Inc()
	logger.WithError(cause).Error("[generation][generate] failed")
	// ledger writes must land even if the client went away
	if err := s.ledger.Fail(context.WithoutCancel(ctx), req.ID, cause.Error(), s.now().UTC()); err != nil {
		logger.WithError(err).Error("[generation][generate] could not mark failed")
	}
	s.analytics.Track(context.WithoutCancel(ctx), req.UserID, models.EventGenerationFailed, map[string]any{
		"generation_id": req.ID,
		"error":         cause.Error(),
	})
}

func (s *generationService) History(ctx context.Context, userID string, page, limit int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	items, err := s.ledger.ListForUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := s.ledger.CountForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{Generations: items, Page: page, Limit: limit, Total: total}, nil
}

func (s *generationService) Get(ctx context.Context, userID, id string) (*models.GenerationRequest, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	g, err := s.ledger.GetForUser(ctx, id, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return g, err
}
