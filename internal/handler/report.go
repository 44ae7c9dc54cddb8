package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"

	"github.com/Samgith2025/recovery-plus-sub000/internal/service"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/api"
)

// ReportHandler implements report API endpoints
type ReportHandler struct {
	service *service.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// PostApiV1ReportsGenerate generates a PDF report for a completed session
func (h *ReportHandler) PostApiV1ReportsGenerate(c *gin.Context) {
	var req api.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: ptr(err.Error()),
		})
		return
	}

	sessionID := uuidToString(req.SessionId)

	userName := "User"
	if req.UserName != nil && *req.UserName != "" {
		userName = *req.UserName
	}

	reportID, err := h.service.GenerateReport(c.Request.Context(), sessionID, userName)
	if err != nil {
		h.logger.Error("failed to generate report",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		respondServiceError(c, err, "Failed to generate report")
		return
	}

	h.logger.Info("report generated",
		zap.String("report_id", reportID),
		zap.String("session_id", sessionID),
	)

	c.JSON(http.StatusOK, gin.H{
		"report_id": reportID,
		"message":   "Report generated successfully",
	})
}

// GetApiV1Reports lists a user's reports
func (h *ReportHandler) GetApiV1Reports(c *gin.Context, params api.GetApiV1ReportsParams) {
	userID := uuidToString(params.UserId)

	reports, err := h.service.GetReportsByUserID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list reports",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		respondServiceError(c, err, "Failed to list reports")
		return
	}

	response := make([]api.ReportInfoResponse, 0, len(reports))
	for _, report := range reports {
		response = append(response, api.ReportInfoResponse{
			Id:          stringToUUID(report.ID),
			SessionId:   stringToUUID(report.SessionID),
			UserId:      stringToUUID(report.UserID),
			GeneratedAt: ptr(report.GeneratedAt),
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetApiV1ReportsId downloads a report
func (h *ReportHandler) GetApiV1ReportsId(c *gin.Context, id types.UUID) {
	reportID := id.String()

	h.logger.Info("downloading report",
		zap.String("report_id", reportID),
	)

	pdfBytes, err := h.service.GetReport(c.Request.Context(), reportID)
	if err != nil {
		h.logger.Error("failed to get report",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Report not found",
			Details: ptr(err.Error()),
		})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=recovery_report_%s.pdf", reportID))
	c.Header("Content-Length", fmt.Sprintf("%d", len(pdfBytes)))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)

	h.logger.Info("report downloaded",
		zap.String("report_id", reportID),
		zap.Int("size_bytes", len(pdfBytes)),
	)
}
