package model

import (
	"time"

	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
)

// User represents a user in the system
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// SessionStatus represents the status of a questionnaire session
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// Session represents one user's run through a questionnaire. Responses
// is the caller-owned map handed to the evaluation engine wholesale;
// CurrentIndex is a position in the full flattened question list.
type Session struct {
	ID                string                  `json:"id"`
	UserID            string                  `json:"user_id"`
	QuestionnaireID   string                  `json:"questionnaire_id"`
	Status            SessionStatus           `json:"status"`
	CurrentIndex      int                     `json:"current_index"`
	Responses         questionnaire.Responses `json:"responses"`
	CompletionPercent int                     `json:"completion_percent"`
	ArchivePath       *string                 `json:"archive_path,omitempty"`
	StartedAt         time.Time               `json:"started_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
	CompletedAt       *time.Time              `json:"completed_at,omitempty"`
}

// SessionAnswer is one row of a session's exported response array, in
// questionnaire order. Position preserves that order across reads.
type SessionAnswer struct {
	ID         string              `json:"id"`
	SessionID  string              `json:"session_id"`
	QuestionID string              `json:"question_id"`
	Value      questionnaire.Value `json:"value"`
	Position   int                 `json:"position"`
	AnsweredAt time.Time           `json:"answered_at"`
}

// Questionnaire represents a stored questionnaire definition. Config is
// the parsed, validated form served to the engine.
type Questionnaire struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Version   int                   `json:"version"`
	Config    *questionnaire.Config `json:"config"`
	Active    bool                  `json:"active"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// CoachingNote represents the AI-generated coaching text attached to a
// completed session
type CoachingNote struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Summary   string    `json:"summary"`
	Tips      []string  `json:"tips,omitempty"`
	Tone      string    `json:"tone"`
	CreatedAt time.Time `json:"created_at"`
}

// Report represents a generated session report
type Report struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	BlobPath    string    `json:"blob_path"`
	GeneratedAt time.Time `json:"generated_at"`
	CreatedAt   time.Time `json:"created_at"`
}
