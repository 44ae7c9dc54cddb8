package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Samgith2025/recovery-plus-sub000/internal/service"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/api"
)

// QuestionnaireHandler implements questionnaire API endpoints
type QuestionnaireHandler struct {
	service *service.QuestionnaireService
	logger  *zap.Logger
}

// NewQuestionnaireHandler creates a new QuestionnaireHandler
func NewQuestionnaireHandler(service *service.QuestionnaireService, logger *zap.Logger) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		service: service,
		logger:  logger,
	}
}

// GetApiV1Questionnaires lists active questionnaires
func (h *QuestionnaireHandler) GetApiV1Questionnaires(c *gin.Context) {
	infos, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list questionnaires", zap.Error(err))
		respondServiceError(c, err, "Failed to list questionnaires")
		return
	}

	response := make([]api.QuestionnaireInfoResponse, 0, len(infos))
	for _, info := range infos {
		response = append(response, api.QuestionnaireInfoResponse{
			Id:            info.ID,
			Title:         info.Title,
			Version:       info.Version,
			QuestionCount: info.QuestionCount,
			SectionCount:  info.SectionCount,
			ShowProgress:  info.ShowProgress,
			AllowBack:     info.AllowBack,
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetApiV1QuestionnairesId returns a full questionnaire definition
func (h *QuestionnaireHandler) GetApiV1QuestionnairesId(c *gin.Context, id string) {
	definition, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get questionnaire",
			zap.Error(err),
			zap.String("questionnaire_id", id),
		)
		respondServiceError(c, err, "Failed to get questionnaire")
		return
	}

	response := api.QuestionnaireResponse{
		Id:        definition.ID,
		Title:     definition.Title,
		Version:   definition.Version,
		Active:    definition.Active,
		Config:    definition.Config,
		CreatedAt: ptr(definition.CreatedAt),
		UpdatedAt: ptr(definition.UpdatedAt),
	}

	c.JSON(http.StatusOK, response)
}
