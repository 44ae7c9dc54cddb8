package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Samgith2025/recovery-plus-sub000/pkg/model"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// QuestionnaireRepository manages stored questionnaire definitions
type QuestionnaireRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewQuestionnaireRepository creates a new QuestionnaireRepository
func NewQuestionnaireRepository(db *pgxpool.Pool, logger *zap.Logger) *QuestionnaireRepository {
	return &QuestionnaireRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID retrieves a questionnaire and parses its stored config
func (r *QuestionnaireRepository) FindByID(ctx context.Context, questionnaireID string) (*model.Questionnaire, error) {
	query := `
		SELECT id, title, version, config, active, created_at, updated_at
		FROM questionnaires
		WHERE id = $1
	`

	var q model.Questionnaire
	var rawConfig []byte
	err := r.db.QueryRow(ctx, query, questionnaireID).Scan(
		&q.ID,
		&q.Title,
		&q.Version,
		&rawConfig,
		&q.Active,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("questionnaire not found: %s", questionnaireID)
		}
		r.logger.Error("failed to get questionnaire",
			zap.Error(err),
			zap.String("questionnaire_id", questionnaireID),
		)
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}

	cfg, err := questionnaire.ParseConfig(rawConfig)
	if err != nil {
		r.logger.Error("failed to parse stored questionnaire config",
			zap.Error(err),
			zap.String("questionnaire_id", questionnaireID),
		)
		return nil, fmt.Errorf("failed to parse stored questionnaire config: %w", err)
	}
	q.Config = cfg

	return &q, nil
}

// FindActive retrieves all active questionnaires with parsed configs
func (r *QuestionnaireRepository) FindActive(ctx context.Context) ([]model.Questionnaire, error) {
	query := `
		SELECT id, title, version, config, active, created_at, updated_at
		FROM questionnaires
		WHERE active = true
		ORDER BY title ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("failed to list questionnaires", zap.Error(err))
		return nil, fmt.Errorf("failed to list questionnaires: %w", err)
	}
	defer rows.Close()

	var questionnaires []model.Questionnaire
	for rows.Next() {
		var q model.Questionnaire
		var rawConfig []byte
		err := rows.Scan(
			&q.ID,
			&q.Title,
			&q.Version,
			&rawConfig,
			&q.Active,
			&q.CreatedAt,
			&q.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan questionnaire", zap.Error(err))
			continue
		}

		cfg, err := questionnaire.ParseConfig(rawConfig)
		if err != nil {
			r.logger.Error("failed to parse stored questionnaire config",
				zap.Error(err),
				zap.String("questionnaire_id", q.ID),
			)
			continue
		}
		q.Config = cfg

		questionnaires = append(questionnaires, q)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating questionnaires", zap.Error(err))
		return nil, fmt.Errorf("error iterating questionnaires: %w", err)
	}

	return questionnaires, nil
}

// Upsert stores a questionnaire definition, bumping the version when the
// config changed. The caller is responsible for validating the config first.
func (r *QuestionnaireRepository) Upsert(ctx context.Context, q *model.Questionnaire) error {
	rawConfig, err := json.Marshal(q.Config)
	if err != nil {
		return fmt.Errorf("failed to encode questionnaire config: %w", err)
	}

	query := `
		INSERT INTO questionnaires (id, title, version, config, active, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			config = EXCLUDED.config,
			active = EXCLUDED.active,
			version = questionnaires.version + 1,
			updated_at = NOW()
	`

	_, err = r.db.Exec(ctx, query, q.ID, q.Title, rawConfig, q.Active)
	if err != nil {
		r.logger.Error("failed to upsert questionnaire",
			zap.Error(err),
			zap.String("questionnaire_id", q.ID),
		)
		return fmt.Errorf("failed to upsert questionnaire: %w", err)
	}

	return nil
}
