package repository

import (
	"context"
	"fmt"

	"github.com/Samgith2025/recovery-plus-sub000/pkg/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ReportRepository manages generated session report records
type ReportRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *pgxpool.Pool, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// SaveReport saves a report record
func (r *ReportRepository) SaveReport(ctx context.Context, report *model.Report) error {
	query := `
		INSERT INTO reports (id, session_id, user_id, blob_path, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.SessionID,
		report.UserID,
		report.BlobPath,
	)
	if err != nil {
		r.logger.Error("failed to save report",
			zap.Error(err),
			zap.String("report_id", report.ID),
			zap.String("session_id", report.SessionID),
		)
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// FindByID retrieves a report by ID
func (r *ReportRepository) FindByID(ctx context.Context, reportID string) (*model.Report, error) {
	query := `
		SELECT id, session_id, user_id, blob_path, created_at
		FROM reports
		WHERE id = $1
	`

	var report model.Report
	err := r.db.QueryRow(ctx, query, reportID).Scan(
		&report.ID,
		&report.SessionID,
		&report.UserID,
		&report.BlobPath,
		&report.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("report not found: %s", reportID)
		}
		r.logger.Error("failed to get report", zap.Error(err), zap.String("report_id", reportID))
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	report.GeneratedAt = report.CreatedAt

	return &report, nil
}

// FindByUserID retrieves all reports for a user, newest first
func (r *ReportRepository) FindByUserID(ctx context.Context, userID string) ([]model.Report, error) {
	query := `
		SELECT id, session_id, user_id, blob_path, created_at
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to get reports", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		var report model.Report
		err := rows.Scan(
			&report.ID,
			&report.SessionID,
			&report.UserID,
			&report.BlobPath,
			&report.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan report", zap.Error(err))
			continue
		}
		report.GeneratedAt = report.CreatedAt
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating reports", zap.Error(err))
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

// DeleteByUserID removes all report records for a user and returns how
// many were deleted
func (r *ReportRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM reports WHERE user_id = $1`

	result, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to delete reports",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return 0, fmt.Errorf("failed to delete reports: %w", err)
	}

	return result.RowsAffected(), nil
}
