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

// PrivacyHandler implements GDPR compliance endpoints
type PrivacyHandler struct {
	service *service.PrivacyService
	logger  *zap.Logger
}

// NewPrivacyHandler creates a new PrivacyHandler
func NewPrivacyHandler(service *service.PrivacyService, logger *zap.Logger) *PrivacyHandler {
	return &PrivacyHandler{
		service: service,
		logger:  logger,
	}
}

// DeleteApiV1UsersUserIdData handles user data deletion requests (GDPR
// right to be forgotten)
func (h *PrivacyHandler) DeleteApiV1UsersUserIdData(c *gin.Context, userId types.UUID) {
	userID := userId.String()
	ipAddress := c.ClientIP()
	userAgent := c.Request.UserAgent()

	h.logger.Info("processing user data deletion request (GDPR)",
		zap.String("user_id", userID),
		zap.String("ip", ipAddress),
	)

	if err := h.service.DeleteUserData(c.Request.Context(), userID, ipAddress, userAgent); err != nil {
		h.logger.Error("failed to delete user data",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to delete user data",
			Details: ptr(err.Error()),
		})
		return
	}

	h.logger.Info("user data deleted successfully (GDPR)",
		zap.String("user_id", userID),
	)

	c.JSON(http.StatusOK, gin.H{
		"message": "User data deleted successfully",
		"user_id": userID,
	})
}

// GetApiV1UsersUserIdExport handles user data export requests (GDPR
// right to data portability)
func (h *PrivacyHandler) GetApiV1UsersUserIdExport(c *gin.Context, userId types.UUID) {
	userID := userId.String()
	ipAddress := c.ClientIP()
	userAgent := c.Request.UserAgent()

	h.logger.Info("processing user data export request (GDPR)",
		zap.String("user_id", userID),
	)

	jsonData, err := h.service.ExportUserData(c.Request.Context(), userID, ipAddress, userAgent)
	if err != nil {
		h.logger.Error("failed to export user data",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to export user data",
			Details: ptr(err.Error()),
		})
		return
	}

	h.logger.Info("user data exported successfully (GDPR)",
		zap.String("user_id", userID),
		zap.Int("data_size_bytes", len(jsonData)),
	)

	filename := fmt.Sprintf("user_data_%s.json", userID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/json", jsonData)
}
