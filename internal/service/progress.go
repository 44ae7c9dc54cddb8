package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Samgith2025/recovery-plus-sub000/internal/repository"
	"go.uber.org/zap"
)

// ProgressRepositoryInterface defines the interface for progress data access
type ProgressRepositoryInterface interface {
	GetProgressStats(ctx context.Context, userID string, days int) (*repository.ProgressStats, error)
	GetDailyProgress(ctx context.Context, userID string, days int) ([]repository.DailyProgress, error)
}

// ProgressService aggregates per-user session progress
type ProgressService struct {
	repo   ProgressRepositoryInterface
	logger *zap.Logger
}

// NewProgressService creates a new ProgressService
func NewProgressService(repo ProgressRepositoryInterface, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		repo:   repo,
		logger: logger,
	}
}

// ProgressOverview represents aggregated progress data for a user
type ProgressOverview struct {
	Period            string                     `json:"period"`
	TotalSessions     int                        `json:"total_sessions"`
	CompletedSessions int                        `json:"completed_sessions"`
	AbandonedSessions int                        `json:"abandoned_sessions"`
	AverageCompletion float64                    `json:"average_completion"`
	StreakDays        int                        `json:"streak_days"`
	LastCompletedAt   *time.Time                 `json:"last_completed_at,omitempty"`
	TimeSeriesData    []repository.DailyProgress `json:"time_series_data"`
}

// GetOverview retrieves progress aggregates with time range filtering
func (s *ProgressService) GetOverview(ctx context.Context, userID string, days int) (*ProgressOverview, error) {
	s.logger.Info("getting progress overview",
		zap.String("user_id", userID),
		zap.Int("days", days),
	)

	// Validate days parameter
	if days != 7 && days != 30 && days != 90 {
		s.logger.Warn("invalid days parameter, defaulting to 7",
			zap.Int("days", days),
		)
		days = 7
	}

	stats, err := s.repo.GetProgressStats(ctx, userID, days)
	if err != nil {
		s.logger.Error("failed to get progress stats",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to get progress stats: %w", err)
	}

	daily, err := s.repo.GetDailyProgress(ctx, userID, days)
	if err != nil {
		s.logger.Error("failed to get daily progress",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to get daily progress: %w", err)
	}

	// Handle empty datasets gracefully
	if stats.TotalSessions == 0 {
		s.logger.Info("no sessions found for user in time period",
			zap.String("user_id", userID),
			zap.Int("days", days),
		)
		return &ProgressOverview{
			Period:         fmt.Sprintf("%d days", days),
			TimeSeriesData: []repository.DailyProgress{},
		}, nil
	}

	overview := &ProgressOverview{
		Period:            fmt.Sprintf("%d days", days),
		TotalSessions:     stats.TotalSessions,
		CompletedSessions: stats.CompletedSessions,
		AbandonedSessions: stats.AbandonedSessions,
		AverageCompletion: stats.AverageCompletion,
		StreakDays:        streakDays(daily, time.Now()),
		LastCompletedAt:   stats.LastCompletedAt,
		TimeSeriesData:    daily,
	}

	s.logger.Info("progress overview retrieved successfully",
		zap.String("user_id", userID),
		zap.Int("total_sessions", overview.TotalSessions),
		zap.Int("streak_days", overview.StreakDays),
	)

	return overview, nil
}

// streakDays counts consecutive calendar days ending today (or
// yesterday, so an unfinished today does not break the streak) with at
// least one completed session.
func streakDays(daily []repository.DailyProgress, now time.Time) int {
	completedOn := make(map[string]bool, len(daily))
	for _, d := range daily {
		if d.CompletedCount > 0 {
			completedOn[d.Date.Format("2006-01-02")] = true
		}
	}

	day := now
	if !completedOn[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for completedOn[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}

	return streak
}
