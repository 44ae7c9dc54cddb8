package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Samgith2025/recovery-plus-sub000/pkg/model"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SessionRepository manages questionnaire sessions and their answers
type SessionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

// CreateSession creates a new questionnaire session
func (r *SessionRepository) CreateSession(ctx context.Context, session *model.Session) error {
	rawResponses, err := json.Marshal(session.Responses)
	if err != nil {
		return fmt.Errorf("failed to encode session responses: %w", err)
	}

	query := `
		INSERT INTO sessions (
			id, user_id, questionnaire_id, status, current_index,
			responses, completion_percent, started_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`

	_, err = r.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.QuestionnaireID,
		session.Status,
		session.CurrentIndex,
		rawResponses,
		session.CompletionPercent,
	)
	if err != nil {
		r.logger.Error("failed to create session",
			zap.Error(err),
			zap.String("session_id", session.ID),
			zap.String("user_id", session.UserID),
		)
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// FindByID retrieves a session by ID
func (r *SessionRepository) FindByID(ctx context.Context, sessionID string) (*model.Session, error) {
	query := `
		SELECT id, user_id, questionnaire_id, status, current_index,
		       responses, completion_percent, archive_path,
		       started_at, updated_at, completed_at
		FROM sessions
		WHERE id = $1
	`

	var session model.Session
	var rawResponses []byte
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.QuestionnaireID,
		&session.Status,
		&session.CurrentIndex,
		&rawResponses,
		&session.CompletionPercent,
		&session.ArchivePath,
		&session.StartedAt,
		&session.UpdatedAt,
		&session.CompletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		r.logger.Error("failed to get session", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.Responses = questionnaire.Responses{}
	if err := json.Unmarshal(rawResponses, &session.Responses); err != nil {
		r.logger.Error("failed to decode session responses",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return nil, fmt.Errorf("failed to decode session responses: %w", err)
	}

	return &session, nil
}

// FindByUserID retrieves all sessions for a user, newest first
func (r *SessionRepository) FindByUserID(ctx context.Context, userID string) ([]model.Session, error) {
	query := `
		SELECT id, user_id, questionnaire_id, status, current_index,
		       responses, completion_percent, archive_path,
		       started_at, updated_at, completed_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY started_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to get sessions", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var session model.Session
		var rawResponses []byte
		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.QuestionnaireID,
			&session.Status,
			&session.CurrentIndex,
			&rawResponses,
			&session.CompletionPercent,
			&session.ArchivePath,
			&session.StartedAt,
			&session.UpdatedAt,
			&session.CompletedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan session", zap.Error(err))
			continue
		}

		session.Responses = questionnaire.Responses{}
		if err := json.Unmarshal(rawResponses, &session.Responses); err != nil {
			r.logger.Error("failed to decode session responses",
				zap.Error(err),
				zap.String("session_id", session.ID),
			)
			continue
		}

		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating sessions", zap.Error(err))
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// UpdateProgress replaces a session's response map wholesale and records
// the current position and completion percentage
func (r *SessionRepository) UpdateProgress(ctx context.Context, sessionID string, responses questionnaire.Responses, currentIndex, completionPercent int) error {
	rawResponses, err := json.Marshal(responses)
	if err != nil {
		return fmt.Errorf("failed to encode session responses: %w", err)
	}

	query := `
		UPDATE sessions
		SET responses = $1, current_index = $2, completion_percent = $3, updated_at = NOW()
		WHERE id = $4 AND status = 'active'
	`

	result, err := r.db.Exec(ctx, query, rawResponses, currentIndex, completionPercent, sessionID)
	if err != nil {
		r.logger.Error("failed to update session progress",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return fmt.Errorf("failed to update session progress: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("active session not found: %s", sessionID)
	}

	return nil
}

// CompleteSession marks a session completed and records where its archive
// was stored
func (r *SessionRepository) CompleteSession(ctx context.Context, sessionID string, archivePath *string) error {
	query := `
		UPDATE sessions
		SET status = 'completed', archive_path = $1, completed_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = 'active'
	`

	result, err := r.db.Exec(ctx, query, archivePath, sessionID)
	if err != nil {
		r.logger.Error("failed to complete session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return fmt.Errorf("failed to complete session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("active session not found: %s", sessionID)
	}

	return nil
}

// UpdateStatus sets a session's status
func (r *SessionRepository) UpdateStatus(ctx context.Context, sessionID string, status model.SessionStatus) error {
	query := `
		UPDATE sessions
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, status, sessionID)
	if err != nil {
		r.logger.Error("failed to update session status",
			zap.Error(err),
			zap.String("session_id", sessionID),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("failed to update session status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	return nil
}

// ReplaceAnswers replaces a session's stored answer rows with the given
// response array, preserving its order
func (r *SessionRepository) ReplaceAnswers(ctx context.Context, sessionID string, entries []questionnaire.ResponseEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM session_answers WHERE session_id = $1`, sessionID)
	if err != nil {
		r.logger.Error("failed to clear session answers",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return fmt.Errorf("failed to clear session answers: %w", err)
	}

	query := `
		INSERT INTO session_answers (id, session_id, question_id, value, position, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for position, entry := range entries {
		rawValue, err := json.Marshal(entry.Value)
		if err != nil {
			return fmt.Errorf("failed to encode answer value: %w", err)
		}

		_, err = tx.Exec(ctx, query,
			uuid.New().String(),
			sessionID,
			entry.QuestionID,
			rawValue,
			position,
			entry.Timestamp,
		)
		if err != nil {
			r.logger.Error("failed to insert session answer",
				zap.Error(err),
				zap.String("session_id", sessionID),
				zap.String("question_id", entry.QuestionID),
			)
			return fmt.Errorf("failed to insert session answer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session answers: %w", err)
	}

	return nil
}

// FindAnswers retrieves a session's stored answer rows in questionnaire order
func (r *SessionRepository) FindAnswers(ctx context.Context, sessionID string) ([]model.SessionAnswer, error) {
	query := `
		SELECT id, session_id, question_id, value, position, answered_at
		FROM session_answers
		WHERE session_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		r.logger.Error("failed to get session answers",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return nil, fmt.Errorf("failed to get session answers: %w", err)
	}
	defer rows.Close()

	var answers []model.SessionAnswer
	for rows.Next() {
		var answer model.SessionAnswer
		var rawValue []byte
		err := rows.Scan(
			&answer.ID,
			&answer.SessionID,
			&answer.QuestionID,
			&rawValue,
			&answer.Position,
			&answer.AnsweredAt,
		)
		if err != nil {
			r.logger.Error("failed to scan session answer", zap.Error(err))
			continue
		}

		value, err := questionnaire.ParseValue(rawValue)
		if err != nil {
			r.logger.Error("failed to decode answer value",
				zap.Error(err),
				zap.String("question_id", answer.QuestionID),
			)
			continue
		}
		answer.Value = value

		answers = append(answers, answer)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating session answers", zap.Error(err))
		return nil, fmt.Errorf("error iterating session answers: %w", err)
	}

	return answers, nil
}

// DeleteByUserID removes all sessions for a user and returns how many
// were deleted. Answer rows go with them via ON DELETE CASCADE.
func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM sessions WHERE user_id = $1`

	result, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to delete sessions",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}

	return result.RowsAffected(), nil
}

// SaveCoachingNote stores the coaching note generated for a completed
// session, replacing any earlier note for the same session.
func (r *SessionRepository) SaveCoachingNote(ctx context.Context, note *model.CoachingNote) error {
	query := `
		INSERT INTO coaching_notes (id, session_id, summary, tips, tone, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			summary = EXCLUDED.summary,
			tips = EXCLUDED.tips,
			tone = EXCLUDED.tone,
			created_at = NOW()
	`

	_, err := r.db.Exec(ctx, query,
		note.ID,
		note.SessionID,
		note.Summary,
		note.Tips,
		note.Tone,
	)
	if err != nil {
		r.logger.Error("failed to save coaching note",
			zap.Error(err),
			zap.String("session_id", note.SessionID),
		)
		return fmt.Errorf("failed to save coaching note: %w", err)
	}

	return nil
}

// FindCoachingNote retrieves the coaching note for a session
func (r *SessionRepository) FindCoachingNote(ctx context.Context, sessionID string) (*model.CoachingNote, error) {
	query := `
		SELECT id, session_id, summary, tips, tone, created_at
		FROM coaching_notes
		WHERE session_id = $1
	`

	note := &model.CoachingNote{}
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&note.ID,
		&note.SessionID,
		&note.Summary,
		&note.Tips,
		&note.Tone,
		&note.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("coaching note not found: %s", sessionID)
		}
		r.logger.Error("failed to get coaching note",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return nil, fmt.Errorf("failed to get coaching note: %w", err)
	}

	return note, nil
}
