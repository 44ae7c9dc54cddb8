package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ProgressRepository manages per-user progress aggregations
type ProgressRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewProgressRepository creates a new ProgressRepository
func NewProgressRepository(db *pgxpool.Pool, logger *zap.Logger) *ProgressRepository {
	return &ProgressRepository{
		db:     db,
		logger: logger,
	}
}

// ProgressStats represents aggregated session statistics for a user
type ProgressStats struct {
	TotalSessions     int
	CompletedSessions int
	AbandonedSessions int
	AverageCompletion float64
	LastCompletedAt   *time.Time
}

// DailyProgress represents session activity for a single day
type DailyProgress struct {
	Date              time.Time
	SessionCount      int
	CompletedCount    int
	AverageCompletion float64
}

// GetProgressStats computes aggregated session statistics for a user
// over a time period
func (r *ProgressRepository) GetProgressStats(ctx context.Context, userID string, days int) (*ProgressStats, error) {
	startDate := time.Now().AddDate(0, 0, -days)

	query := `
		SELECT
			COUNT(*) as total_sessions,
			COUNT(*) FILTER (WHERE status = 'completed') as completed_sessions,
			COUNT(*) FILTER (WHERE status = 'abandoned') as abandoned_sessions,
			COALESCE(AVG(completion_percent), 0) as avg_completion,
			MAX(completed_at) as last_completed_at
		FROM sessions
		WHERE user_id = $1 AND started_at >= $2
	`

	var stats ProgressStats
	err := r.db.QueryRow(ctx, query, userID, startDate).Scan(
		&stats.TotalSessions,
		&stats.CompletedSessions,
		&stats.AbandonedSessions,
		&stats.AverageCompletion,
		&stats.LastCompletedAt,
	)
	if err != nil {
		r.logger.Error("failed to get progress stats",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to get progress stats: %w", err)
	}

	return &stats, nil
}

// GetDailyProgress retrieves per-day session activity for time-series data
func (r *ProgressRepository) GetDailyProgress(ctx context.Context, userID string, days int) ([]DailyProgress, error) {
	startDate := time.Now().AddDate(0, 0, -days)

	query := `
		SELECT
			DATE(started_at) as day,
			COUNT(*) as session_count,
			COUNT(*) FILTER (WHERE status = 'completed') as completed_count,
			COALESCE(AVG(completion_percent), 0) as avg_completion
		FROM sessions
		WHERE user_id = $1 AND started_at >= $2
		GROUP BY DATE(started_at)
		ORDER BY day ASC
	`

	rows, err := r.db.Query(ctx, query, userID, startDate)
	if err != nil {
		r.logger.Error("failed to get daily progress",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to get daily progress: %w", err)
	}
	defer rows.Close()

	var daily []DailyProgress
	for rows.Next() {
		var dp DailyProgress
		err := rows.Scan(
			&dp.Date,
			&dp.SessionCount,
			&dp.CompletedCount,
			&dp.AverageCompletion,
		)
		if err != nil {
			r.logger.Error("failed to scan daily progress", zap.Error(err))
			continue
		}
		daily = append(daily, dp)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating daily progress", zap.Error(err))
		return nil, fmt.Errorf("error iterating daily progress: %w", err)
	}

	return daily, nil
}
