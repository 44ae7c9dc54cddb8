// Package api defines the HTTP contract of the questionnaire backend:
// request and response types, route registration and the embedded
// OpenAPI document they are kept in sync with.
package api

import (
	"time"

	"github.com/oapi-codegen/runtime/types"

	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
)

// ErrorResponse is the envelope for every error the API returns
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// StartSessionRequest begins a questionnaire session
type StartSessionRequest struct {
	UserId          types.UUID `json:"user_id" binding:"required"`
	QuestionnaireId string     `json:"questionnaire_id" binding:"required"`
}

// SubmitAnswerRequest records one answer. Value accepts numbers,
// strings, booleans, lists and keyed bundles.
type SubmitAnswerRequest struct {
	QuestionId string              `json:"question_id" binding:"required"`
	Value      questionnaire.Value `json:"value"`
}

// GenerateReportRequest renders a PDF report for a completed session
type GenerateReportRequest struct {
	SessionId types.UUID `json:"session_id" binding:"required"`
	UserName  *string    `json:"user_name,omitempty"`
}

// SessionResponse is the API projection of a stored session
type SessionResponse struct {
	Id                *types.UUID `json:"id,omitempty"`
	UserId            *types.UUID `json:"user_id,omitempty"`
	QuestionnaireId   string      `json:"questionnaire_id"`
	Status            string      `json:"status"`
	CurrentIndex      int         `json:"current_index"`
	CompletionPercent int         `json:"completion_percent"`
	StartedAt         *time.Time  `json:"started_at,omitempty"`
	UpdatedAt         *time.Time  `json:"updated_at,omitempty"`
	CompletedAt       *time.Time  `json:"completed_at,omitempty"`
}

// SessionStateResponse carries a session, its current question and the
// completion summary. Question is absent when no visible question
// remains.
type SessionStateResponse struct {
	Session  SessionResponse         `json:"session"`
	Question *questionnaire.Question `json:"question,omitempty"`
	Summary  questionnaire.Summary   `json:"summary"`
}

// CoachingResponse is the AI coaching note attached to a completion
type CoachingResponse struct {
	Summary string    `json:"summary"`
	Tips    *[]string `json:"tips,omitempty"`
	Tone    string    `json:"tone"`
}

// CompletionResponse is returned when a session finishes
type CompletionResponse struct {
	Session           SessionResponse       `json:"session"`
	Summary           questionnaire.Summary `json:"summary"`
	Coaching          *CoachingResponse     `json:"coaching,omitempty"`
	CompletionMessage string                `json:"completion_message"`
}

// QuestionnaireInfoResponse is the listing entry for a questionnaire
type QuestionnaireInfoResponse struct {
	Id            string `json:"id"`
	Title         string `json:"title"`
	Version       int    `json:"version"`
	QuestionCount int    `json:"question_count"`
	SectionCount  int    `json:"section_count"`
	ShowProgress  bool   `json:"show_progress"`
	AllowBack     bool   `json:"allow_back"`
}

// QuestionnaireResponse is a full questionnaire definition
type QuestionnaireResponse struct {
	Id        string                `json:"id"`
	Title     string                `json:"title"`
	Version   int                   `json:"version"`
	Active    bool                  `json:"active"`
	Config    *questionnaire.Config `json:"config"`
	CreatedAt *time.Time            `json:"created_at,omitempty"`
	UpdatedAt *time.Time            `json:"updated_at,omitempty"`
}

// DailyProgressPoint is one day of the progress time series
type DailyProgressPoint struct {
	Date              types.Date `json:"date"`
	SessionCount      int        `json:"session_count"`
	CompletedCount    int        `json:"completed_count"`
	AverageCompletion float64    `json:"average_completion"`
}

// ProgressOverviewResponse aggregates session activity over a period
type ProgressOverviewResponse struct {
	Period            string               `json:"period"`
	TotalSessions     int                  `json:"total_sessions"`
	CompletedSessions int                  `json:"completed_sessions"`
	AbandonedSessions int                  `json:"abandoned_sessions"`
	AverageCompletion float64              `json:"average_completion"`
	StreakDays        int                  `json:"streak_days"`
	LastCompletedAt   *time.Time           `json:"last_completed_at,omitempty"`
	TimeSeries        []DailyProgressPoint `json:"time_series"`
}

// ReportInfoResponse is the listing entry for a generated report
type ReportInfoResponse struct {
	Id          *types.UUID `json:"id,omitempty"`
	SessionId   *types.UUID `json:"session_id,omitempty"`
	UserId      *types.UUID `json:"user_id,omitempty"`
	GeneratedAt *time.Time  `json:"generated_at,omitempty"`
}

// GetApiV1SessionsParams defines parameters for GetApiV1Sessions
type GetApiV1SessionsParams struct {
	UserId types.UUID `form:"user_id" json:"user_id"`
}

// GetApiV1ProgressOverviewParams defines parameters for GetApiV1ProgressOverview
type GetApiV1ProgressOverviewParams struct {
	UserId types.UUID `form:"user_id" json:"user_id"`
	Days   *int       `form:"days,omitempty" json:"days,omitempty"`
}

// GetApiV1ReportsParams defines parameters for GetApiV1Reports
type GetApiV1ReportsParams struct {
	UserId types.UUID `form:"user_id" json:"user_id"`
}
