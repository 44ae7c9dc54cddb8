package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"

	"github.com/Samgith2025/recovery-plus-sub000/internal/service"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/api"
)

// ProgressHandler implements progress API endpoints
type ProgressHandler struct {
	service *service.ProgressService
	logger  *zap.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(service *service.ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger,
	}
}

// GetApiV1ProgressOverview returns aggregated session activity for a
// user over the requested period
func (h *ProgressHandler) GetApiV1ProgressOverview(c *gin.Context, params api.GetApiV1ProgressOverviewParams) {
	userID := uuidToString(params.UserId)

	days := 7
	if params.Days != nil {
		days = *params.Days
	}

	overview, err := h.service.GetOverview(c.Request.Context(), userID, days)
	if err != nil {
		h.logger.Error("failed to get progress overview",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Int("days", days),
		)
		respondServiceError(c, err, "Failed to get progress overview")
		return
	}

	timeSeries := make([]api.DailyProgressPoint, 0, len(overview.TimeSeriesData))
	for _, point := range overview.TimeSeriesData {
		timeSeries = append(timeSeries, api.DailyProgressPoint{
			Date:              types.Date{Time: point.Date},
			SessionCount:      point.SessionCount,
			CompletedCount:    point.CompletedCount,
			AverageCompletion: point.AverageCompletion,
		})
	}

	response := api.ProgressOverviewResponse{
		Period:            overview.Period,
		TotalSessions:     overview.TotalSessions,
		CompletedSessions: overview.CompletedSessions,
		AbandonedSessions: overview.AbandonedSessions,
		AverageCompletion: overview.AverageCompletion,
		StreakDays:        overview.StreakDays,
		LastCompletedAt:   overview.LastCompletedAt,
		TimeSeries:        timeSeries,
	}

	c.JSON(http.StatusOK, response)
}
