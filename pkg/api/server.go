package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Health check
	GetHealth(c *gin.Context)
	// Start a questionnaire session
	PostApiV1SessionsStart(c *gin.Context)
	// List sessions for a user
	GetApiV1Sessions(c *gin.Context, params GetApiV1SessionsParams)
	// Get session state
	GetApiV1SessionsSessionId(c *gin.Context, sessionId types.UUID)
	// Submit an answer
	PostApiV1SessionsSessionIdAnswers(c *gin.Context, sessionId types.UUID)
	// Advance to the next visible question
	PostApiV1SessionsSessionIdNext(c *gin.Context, sessionId types.UUID)
	// Step back to the previous visible question
	PostApiV1SessionsSessionIdPrev(c *gin.Context, sessionId types.UUID)
	// Complete a session
	PostApiV1SessionsSessionIdComplete(c *gin.Context, sessionId types.UUID)
	// Abandon a session
	PostApiV1SessionsSessionIdAbandon(c *gin.Context, sessionId types.UUID)
	// List active questionnaires
	GetApiV1Questionnaires(c *gin.Context)
	// Get a questionnaire definition
	GetApiV1QuestionnairesId(c *gin.Context, id string)
	// Get progress overview
	GetApiV1ProgressOverview(c *gin.Context, params GetApiV1ProgressOverviewParams)
	// Generate a session report
	PostApiV1ReportsGenerate(c *gin.Context)
	// List reports for a user
	GetApiV1Reports(c *gin.Context, params GetApiV1ReportsParams)
	// Download a report
	GetApiV1ReportsId(c *gin.Context, id types.UUID)
	// Delete all user data
	DeleteApiV1UsersUserIdData(c *gin.Context, userId types.UUID)
	// Export all user data
	GetApiV1UsersUserIdExport(c *gin.Context, userId types.UUID)
}

// ServerInterfaceWrapper binds route parameters before delegating to
// the ServerInterface implementation.
type ServerInterfaceWrapper struct {
	Handler      ServerInterface
	ErrorHandler func(c *gin.Context, err error, statusCode int)
}

func (siw *ServerInterfaceWrapper) bindSessionId(c *gin.Context) (types.UUID, bool) {
	var sessionId types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "sessionId", c.Param("sessionId"), &sessionId,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter sessionId: %w", err), http.StatusBadRequest)
		return sessionId, false
	}
	return sessionId, true
}

func (siw *ServerInterfaceWrapper) GetHealth(c *gin.Context) {
	siw.Handler.GetHealth(c)
}

func (siw *ServerInterfaceWrapper) PostApiV1SessionsStart(c *gin.Context) {
	siw.Handler.PostApiV1SessionsStart(c)
}

func (siw *ServerInterfaceWrapper) GetApiV1Sessions(c *gin.Context) {
	var params GetApiV1SessionsParams
	err := runtime.BindQueryParameter("form", true, true, "user_id", c.Request.URL.Query(), &params.UserId)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter user_id: %w", err), http.StatusBadRequest)
		return
	}
	siw.Handler.GetApiV1Sessions(c, params)
}

func (siw *ServerInterfaceWrapper) GetApiV1SessionsSessionId(c *gin.Context) {
	if sessionId, ok := siw.bindSessionId(c); ok {
		siw.Handler.GetApiV1SessionsSessionId(c, sessionId)
	}
}

func (siw *ServerInterfaceWrapper) PostApiV1SessionsSessionIdAnswers(c *gin.Context) {
	if sessionId, ok := siw.bindSessionId(c); ok {
		siw.Handler.PostApiV1SessionsSessionIdAnswers(c, sessionId)
	}
}

func (siw *ServerInterfaceWrapper) PostApiV1SessionsSessionIdNext(c *gin.Context) {
	if sessionId, ok := siw.bindSessionId(c); ok {
		siw.Handler.PostApiV1SessionsSessionIdNext(c, sessionId)
	}
}

func (siw *ServerInterfaceWrapper) PostApiV1SessionsSessionIdPrev(c *gin.Context) {
	if sessionId, ok := siw.bindSessionId(c); ok {
		siw.Handler.PostApiV1SessionsSessionIdPrev(c, sessionId)
	}
}

func (siw *ServerInterfaceWrapper) PostApiV1SessionsSessionIdComplete(c *gin.Context) {
	if sessionId, ok := siw.bindSessionId(c); ok {
		siw.Handler.PostApiV1SessionsSessionIdComplete(c, sessionId)
	}
}

func (siw *ServerInterfaceWrapper) PostApiV1SessionsSessionIdAbandon(c *gin.Context) {
	if sessionId, ok := siw.bindSessionId(c); ok {
		siw.Handler.PostApiV1SessionsSessionIdAbandon(c, sessionId)
	}
}

func (siw *ServerInterfaceWrapper) GetApiV1Questionnaires(c *gin.Context) {
	siw.Handler.GetApiV1Questionnaires(c)
}

func (siw *ServerInterfaceWrapper) GetApiV1QuestionnairesId(c *gin.Context) {
	siw.Handler.GetApiV1QuestionnairesId(c, c.Param("id"))
}

func (siw *ServerInterfaceWrapper) GetApiV1ProgressOverview(c *gin.Context) {
	var params GetApiV1ProgressOverviewParams
	err := runtime.BindQueryParameter("form", true, true, "user_id", c.Request.URL.Query(), &params.UserId)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter user_id: %w", err), http.StatusBadRequest)
		return
	}
	err = runtime.BindQueryParameter("form", true, false, "days", c.Request.URL.Query(), &params.Days)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter days: %w", err), http.StatusBadRequest)
		return
	}
	siw.Handler.GetApiV1ProgressOverview(c, params)
}

func (siw *ServerInterfaceWrapper) PostApiV1ReportsGenerate(c *gin.Context) {
	siw.Handler.PostApiV1ReportsGenerate(c)
}

func (siw *ServerInterfaceWrapper) GetApiV1Reports(c *gin.Context) {
	var params GetApiV1ReportsParams
	err := runtime.BindQueryParameter("form", true, true, "user_id", c.Request.URL.Query(), &params.UserId)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter user_id: %w", err), http.StatusBadRequest)
		return
	}
	siw.Handler.GetApiV1Reports(c, params)
}

func (siw *ServerInterfaceWrapper) GetApiV1ReportsId(c *gin.Context) {
	var id types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter id: %w", err), http.StatusBadRequest)
		return
	}
	siw.Handler.GetApiV1ReportsId(c, id)
}

func (siw *ServerInterfaceWrapper) DeleteApiV1UsersUserIdData(c *gin.Context) {
	var userId types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "userId", c.Param("userId"), &userId,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter userId: %w", err), http.StatusBadRequest)
		return
	}
	siw.Handler.DeleteApiV1UsersUserIdData(c, userId)
}

func (siw *ServerInterfaceWrapper) GetApiV1UsersUserIdExport(c *gin.Context) {
	var userId types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "userId", c.Param("userId"), &userId,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter userId: %w", err), http.StatusBadRequest)
		return
	}
	siw.Handler.GetApiV1UsersUserIdExport(c, userId)
}

// GinServerOptions provides options for the Gin server.
type GinServerOptions struct {
	BaseURL      string
	ErrorHandler func(c *gin.Context, err error, statusCode int)
}

// RegisterHandlers creates http handlers for each server route.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, GinServerOptions{})
}

// RegisterHandlersWithOptions creates http handlers for each server route with options.
func RegisterHandlersWithOptions(router gin.IRouter, si ServerInterface, options GinServerOptions) {
	errorHandler := options.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(c *gin.Context, err error, statusCode int) {
			c.JSON(statusCode, ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			})
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:      si,
		ErrorHandler: errorHandler,
	}

	router.GET(options.BaseURL+"/health", wrapper.GetHealth)
	router.POST(options.BaseURL+"/api/v1/sessions/start", wrapper.PostApiV1SessionsStart)
	router.GET(options.BaseURL+"/api/v1/sessions", wrapper.GetApiV1Sessions)
	router.GET(options.BaseURL+"/api/v1/sessions/:sessionId", wrapper.GetApiV1SessionsSessionId)
	router.POST(options.BaseURL+"/api/v1/sessions/:sessionId/answers", wrapper.PostApiV1SessionsSessionIdAnswers)
	router.POST(options.BaseURL+"/api/v1/sessions/:sessionId/next", wrapper.PostApiV1SessionsSessionIdNext)
	router.POST(options.BaseURL+"/api/v1/sessions/:sessionId/prev", wrapper.PostApiV1SessionsSessionIdPrev)
	router.POST(options.BaseURL+"/api/v1/sessions/:sessionId/complete", wrapper.PostApiV1SessionsSessionIdComplete)
	router.POST(options.BaseURL+"/api/v1/sessions/:sessionId/abandon", wrapper.PostApiV1SessionsSessionIdAbandon)
	router.GET(options.BaseURL+"/api/v1/questionnaires", wrapper.GetApiV1Questionnaires)
	router.GET(options.BaseURL+"/api/v1/questionnaires/:id", wrapper.GetApiV1QuestionnairesId)
	router.GET(options.BaseURL+"/api/v1/progress/overview", wrapper.GetApiV1ProgressOverview)
	router.POST(options.BaseURL+"/api/v1/reports/generate", wrapper.PostApiV1ReportsGenerate)
	router.GET(options.BaseURL+"/api/v1/reports", wrapper.GetApiV1Reports)
	router.GET(options.BaseURL+"/api/v1/reports/:id", wrapper.GetApiV1ReportsId)
	router.DELETE(options.BaseURL+"/api/v1/users/:userId/data", wrapper.DeleteApiV1UsersUserIdData)
	router.GET(options.BaseURL+"/api/v1/users/:userId/export", wrapper.GetApiV1UsersUserIdExport)
}
