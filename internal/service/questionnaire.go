package service

import (
	"context"
	"fmt"

	"github.com/Samgith2025/recovery-plus-sub000/pkg/model"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
	"go.uber.org/zap"
)

// QuestionnaireRepositoryInterface defines the questionnaire data access the services need
type QuestionnaireRepositoryInterface interface {
	FindByID(ctx context.Context, questionnaireID string) (*model.Questionnaire, error)
	FindActive(ctx context.Context) ([]model.Questionnaire, error)
	Upsert(ctx context.Context, q *model.Questionnaire) error
}

// ConfigError reports a questionnaire definition that failed validation.
type ConfigError struct {
	QuestionnaireID string
	Err             error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid questionnaire config %s: %v", e.QuestionnaireID, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// QuestionnaireService serves stored questionnaire definitions.
type QuestionnaireService struct {
	repo   QuestionnaireRepositoryInterface
	logger *zap.Logger
}

// NewQuestionnaireService creates a new QuestionnaireService
func NewQuestionnaireService(repo QuestionnaireRepositoryInterface, logger *zap.Logger) *QuestionnaireService {
	return &QuestionnaireService{
		repo:   repo,
		logger: logger,
	}
}

// QuestionnaireInfo is the listing shape: definition metadata without
// the full question tree.
type QuestionnaireInfo struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Version       int    `json:"version"`
	QuestionCount int    `json:"question_count"`
	SectionCount  int    `json:"section_count"`
	ShowProgress  bool   `json:"show_progress"`
	AllowBack     bool   `json:"allow_back"`
}

// ListActive returns metadata for every active questionnaire.
func (s *QuestionnaireService) ListActive(ctx context.Context) ([]QuestionnaireInfo, error) {
	s.logger.Info("listing active questionnaires")

	definitions, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaires: %w", err)
	}

	infos := make([]QuestionnaireInfo, 0, len(definitions))
	for _, d := range definitions {
		infos = append(infos, QuestionnaireInfo{
			ID:            d.ID,
			Title:         d.Title,
			Version:       d.Version,
			QuestionCount: len(d.Config.Flatten()),
			SectionCount:  len(d.Config.Sections),
			ShowProgress:  d.Config.Settings.ShowProgress,
			AllowBack:     d.Config.Settings.AllowBack,
		})
	}

	s.logger.Info("active questionnaires listed", zap.Int("count", len(infos)))
	return infos, nil
}

// Get returns the full questionnaire definition.
func (s *QuestionnaireService) Get(ctx context.Context, questionnaireID string) (*model.Questionnaire, error) {
	s.logger.Info("getting questionnaire", zap.String("questionnaire_id", questionnaireID))

	definition, err := s.repo.FindByID(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}

	return definition, nil
}

// Save validates a questionnaire config and upserts it. Invalid configs
// are refused before anything is written.
func (s *QuestionnaireService) Save(ctx context.Context, cfg *questionnaire.Config) (*model.Questionnaire, error) {
	s.logger.Info("saving questionnaire", zap.String("questionnaire_id", cfg.ID))

	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{QuestionnaireID: cfg.ID, Err: err}
	}

	definition := &model.Questionnaire{
		ID:     cfg.ID,
		Title:  cfg.Title,
		Config: cfg,
		Active: true,
	}

	if err := s.repo.Upsert(ctx, definition); err != nil {
		return nil, fmt.Errorf("failed to save questionnaire: %w", err)
	}

	s.logger.Info("questionnaire saved",
		zap.String("questionnaire_id", cfg.ID),
		zap.Int("questions", len(cfg.Flatten())),
	)

	return definition, nil
}
