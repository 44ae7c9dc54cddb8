package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"

	"github.com/Samgith2025/recovery-plus-sub000/internal/service"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/api"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/model"
)

// SessionHandler implements session API endpoints
type SessionHandler struct {
	service *service.SessionService
	logger  *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(service *service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger,
	}
}

// toSessionResponse converts a stored session to its API projection
func toSessionResponse(s *model.Session) api.SessionResponse {
	return api.SessionResponse{
		Id:                stringToUUID(s.ID),
		UserId:            stringToUUID(s.UserID),
		QuestionnaireId:   s.QuestionnaireID,
		Status:            string(s.Status),
		CurrentIndex:      s.CurrentIndex,
		CompletionPercent: s.CompletionPercent,
		StartedAt:         ptr(s.StartedAt),
		UpdatedAt:         ptr(s.UpdatedAt),
		CompletedAt:       s.CompletedAt,
	}
}

// toSessionStateResponse converts a service snapshot to its API shape
func toSessionStateResponse(state *service.SessionState) api.SessionStateResponse {
	return api.SessionStateResponse{
		Session:  toSessionResponse(state.Session),
		Question: state.Question,
		Summary:  state.Summary,
	}
}

// PostApiV1SessionsStart starts a questionnaire session
func (h *SessionHandler) PostApiV1SessionsStart(c *gin.Context) {
	var req api.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: ptr(err.Error()),
		})
		return
	}

	userID := uuidToString(req.UserId)

	state, err := h.service.StartSession(c.Request.Context(), userID, req.QuestionnaireId)
	if err != nil {
		h.logger.Error("failed to start session",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("questionnaire_id", req.QuestionnaireId),
		)
		respondServiceError(c, err, "Failed to start session")
		return
	}

	h.logger.Info("session started",
		zap.String("session_id", state.Session.ID),
		zap.String("user_id", userID),
		zap.String("questionnaire_id", req.QuestionnaireId),
	)

	c.JSON(http.StatusOK, toSessionStateResponse(state))
}

// GetApiV1Sessions lists a user's sessions
func (h *SessionHandler) GetApiV1Sessions(c *gin.Context, params api.GetApiV1SessionsParams) {
	userID := uuidToString(params.UserId)

	sessions, err := h.service.ListSessions(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list sessions",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		respondServiceError(c, err, "Failed to list sessions")
		return
	}

	response := make([]api.SessionResponse, 0, len(sessions))
	for i := range sessions {
		response = append(response, toSessionResponse(&sessions[i]))
	}

	c.JSON(http.StatusOK, response)
}

// GetApiV1SessionsSessionId returns the current state of a session
func (h *SessionHandler) GetApiV1SessionsSessionId(c *gin.Context, sessionId types.UUID) {
	sessionID := sessionId.String()

	state, err := h.service.GetSessionState(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to get session state",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		respondServiceError(c, err, "Failed to get session state")
		return
	}

	c.JSON(http.StatusOK, toSessionStateResponse(state))
}

// PostApiV1SessionsSessionIdAnswers validates and stores one answer
func (h *SessionHandler) PostApiV1SessionsSessionIdAnswers(c *gin.Context, sessionId types.UUID) {
	var req api.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: ptr(err.Error()),
		})
		return
	}

	sessionID := sessionId.String()

	state, err := h.service.SubmitAnswer(c.Request.Context(), sessionID, req.QuestionId, req.Value)
	if err != nil {
		h.logger.Error("failed to submit answer",
			zap.Error(err),
			zap.String("session_id", sessionID),
			zap.String("question_id", req.QuestionId),
		)
		respondServiceError(c, err, "Failed to submit answer")
		return
	}

	h.logger.Info("answer submitted",
		zap.String("session_id", sessionID),
		zap.String("question_id", req.QuestionId),
		zap.Int("completion_percent", state.Summary.CompletionPercent),
	)

	c.JSON(http.StatusOK, toSessionStateResponse(state))
}

// PostApiV1SessionsSessionIdNext advances past hidden questions to the
// next visible one
func (h *SessionHandler) PostApiV1SessionsSessionIdNext(c *gin.Context, sessionId types.UUID) {
	sessionID := sessionId.String()

	state, err := h.service.NextQuestion(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to advance session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		respondServiceError(c, err, "Failed to advance session")
		return
	}

	c.JSON(http.StatusOK, toSessionStateResponse(state))
}

// PostApiV1SessionsSessionIdPrev steps back to the previous visible
// question
func (h *SessionHandler) PostApiV1SessionsSessionIdPrev(c *gin.Context, sessionId types.UUID) {
	sessionID := sessionId.String()

	state, err := h.service.PrevQuestion(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to step session back",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		respondServiceError(c, err, "Failed to step session back")
		return
	}

	c.JSON(http.StatusOK, toSessionStateResponse(state))
}

// PostApiV1SessionsSessionIdComplete completes a session
func (h *SessionHandler) PostApiV1SessionsSessionIdComplete(c *gin.Context, sessionId types.UUID) {
	sessionID := sessionId.String()

	result, err := h.service.CompleteSession(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to complete session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		respondServiceError(c, err, "Failed to complete session")
		return
	}

	response := api.CompletionResponse{
		Session:           toSessionResponse(result.Session),
		Summary:           result.Summary,
		CompletionMessage: result.CompletionMessage,
	}
	if result.Coaching != nil {
		response.Coaching = &api.CoachingResponse{
			Summary: result.Coaching.Summary,
			Tips:    &result.Coaching.Tips,
			Tone:    result.Coaching.Tone,
		}
	}

	h.logger.Info("session completed",
		zap.String("session_id", sessionID),
		zap.Int("answered_questions", result.Summary.AnsweredQuestions),
	)

	c.JSON(http.StatusOK, response)
}

// PostApiV1SessionsSessionIdAbandon abandons a session
func (h *SessionHandler) PostApiV1SessionsSessionIdAbandon(c *gin.Context, sessionId types.UUID) {
	sessionID := sessionId.String()

	if err := h.service.AbandonSession(c.Request.Context(), sessionID); err != nil {
		h.logger.Error("failed to abandon session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		respondServiceError(c, err, "Failed to abandon session")
		return
	}

	h.logger.Info("session abandoned",
		zap.String("session_id", sessionID),
	)

	c.JSON(http.StatusOK, gin.H{
		"message": "Session abandoned",
	})
}
