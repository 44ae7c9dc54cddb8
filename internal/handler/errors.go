package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Samgith2025/recovery-plus-sub000/internal/service"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/api"
)

// conflictMarkers are error fragments that indicate a request which is
// well formed but refused in the session's current state.
var conflictMarkers = []string{
	"is not active",
	"has expired",
	"is not allowed",
	"is not completed",
}

// respondServiceError maps service errors onto the API error envelope:
// rejected answers and refused completions are 422, missing resources
// are 404, state conflicts are 409 and anything else is a 500. The
// caller logs before invoking this.
func respondServiceError(c *gin.Context, err error, message string) {
	var answerErr *service.ValidationError
	if errors.As(err, &answerErr) {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Code:    "ANSWER_INVALID",
			Message: answerErr.Message,
			Details: ptr(answerErr.QuestionID),
		})
		return
	}

	var incompleteErr *service.IncompleteError
	if errors.As(err, &incompleteErr) {
		missing := make([]string, 0, len(incompleteErr.Summary.Errors))
		for questionID := range incompleteErr.Summary.Errors {
			missing = append(missing, questionID)
		}
		sort.Strings(missing)
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Code:    "SESSION_INCOMPLETE",
			Message: err.Error(),
			Details: ptr(strings.Join(missing, ", ")),
		})
		return
	}

	if strings.Contains(err.Error(), "not found") {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Resource not found",
			Details: ptr(err.Error()),
		})
		return
	}

	for _, marker := range conflictMarkers {
		if strings.Contains(err.Error(), marker) {
			c.JSON(http.StatusConflict, api.ErrorResponse{
				Code:    "CONFLICT",
				Message: err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusInternalServerError, api.ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Details: ptr(err.Error()),
	})
}
