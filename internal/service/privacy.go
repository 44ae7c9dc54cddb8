package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Samgith2025/recovery-plus-sub000/internal/audit"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/model"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PrivacyService handles data protection operations: full export and
// erasure of a user's questionnaire data
type PrivacyService struct {
	db          *pgxpool.Pool
	auditLogger *audit.Logger
	logger      *zap.Logger
}

// NewPrivacyService creates a new privacy service
func NewPrivacyService(db *pgxpool.Pool, auditLogger *audit.Logger, logger *zap.Logger) *PrivacyService {
	return &PrivacyService{
		db:          db,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// UserDataExport represents all user data for export
type UserDataExport struct {
	User          *model.User           `json:"user"`
	Sessions      []model.Session       `json:"sessions"`
	Answers       []model.SessionAnswer `json:"answers"`
	CoachingNotes []model.CoachingNote  `json:"coaching_notes"`
	Reports       []model.Report        `json:"reports"`
	AuditTrail    []audit.Entry         `json:"audit_trail"`
	ExportedAt    time.Time             `json:"exported_at"`
}

// auditExportLimit caps how much audit history rides along in an export.
const auditExportLimit = 500

// DeleteUserData deletes all questionnaire data for a user (right to be
// forgotten). Answer rows and coaching notes go with their sessions via
// ON DELETE CASCADE.
func (s *PrivacyService) DeleteUserData(ctx context.Context, userID, ipAddress, userAgent string) error {
	s.logger.Info("Starting user data deletion",
		zap.String("user_id", userID),
	)

	// Start transaction
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Delete reports
	_, err = tx.Exec(ctx, "DELETE FROM reports WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to delete reports: %w", err)
	}

	// Delete sessions (cascades to answers and coaching notes)
	_, err = tx.Exec(ctx, "DELETE FROM sessions WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	// Mark user as deleted (soft delete to maintain referential integrity in audit logs)
	_, err = tx.Exec(ctx, "UPDATE users SET deleted_at = $1 WHERE id = $2", time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to mark user as deleted: %w", err)
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Log audit entry
	if err := s.auditLogger.LogDelete(ctx, userID, audit.ResourceUser, userID, ipAddress, userAgent); err != nil {
		s.logger.Error("Failed to log audit entry for user deletion", zap.Error(err))
	}

	s.logger.Info("User data deletion completed",
		zap.String("user_id", userID),
	)

	return nil
}

// ExportUserData exports all user data to JSON (right to data
// portability)
func (s *PrivacyService) ExportUserData(ctx context.Context, userID, ipAddress, userAgent string) ([]byte, error) {
	s.logger.Info("Starting user data export",
		zap.String("user_id", userID),
	)

	export := UserDataExport{
		ExportedAt: time.Now(),
	}

	// Get user
	var user model.User
	err := s.db.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at, deleted_at
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	export.User = &user

	// Get sessions
	sessionRows, err := s.db.Query(ctx, `
		SELECT id, user_id, questionnaire_id, status, current_index,
		       responses, completion_percent, archive_path,
		       started_at, updated_at, completed_at
		FROM sessions WHERE user_id = $1
		ORDER BY started_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	defer sessionRows.Close()

	for sessionRows.Next() {
		var session model.Session
		var rawResponses []byte
		err := sessionRows.Scan(
			&session.ID, &session.UserID, &session.QuestionnaireID, &session.Status,
			&session.CurrentIndex, &rawResponses, &session.CompletionPercent,
			&session.ArchivePath, &session.StartedAt, &session.UpdatedAt, &session.CompletedAt,
		)
		if err != nil {
			s.logger.Error("Failed to scan session", zap.Error(err))
			continue
		}
		session.Responses = questionnaire.Responses{}
		if err := json.Unmarshal(rawResponses, &session.Responses); err != nil {
			s.logger.Error("Failed to decode session responses", zap.Error(err))
			continue
		}
		export.Sessions = append(export.Sessions, session)
	}

	// Get answers across all of the user's sessions
	answerRows, err := s.db.Query(ctx, `
		SELECT a.id, a.session_id, a.question_id, a.value, a.position, a.answered_at
		FROM session_answers a
		JOIN sessions s ON s.id = a.session_id
		WHERE s.user_id = $1
		ORDER BY a.session_id, a.position
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session answers: %w", err)
	}
	defer answerRows.Close()

	for answerRows.Next() {
		var answer model.SessionAnswer
		var rawValue []byte
		err := answerRows.Scan(
			&answer.ID, &answer.SessionID, &answer.QuestionID,
			&rawValue, &answer.Position, &answer.AnsweredAt,
		)
		if err != nil {
			s.logger.Error("Failed to scan session answer", zap.Error(err))
			continue
		}
		value, err := questionnaire.ParseValue(rawValue)
		if err != nil {
			s.logger.Error("Failed to decode answer value", zap.Error(err))
			continue
		}
		answer.Value = value
		export.Answers = append(export.Answers, answer)
	}

	// Get coaching notes
	noteRows, err := s.db.Query(ctx, `
		SELECT n.id, n.session_id, n.summary, n.tips, n.tone, n.created_at
		FROM coaching_notes n
		JOIN sessions s ON s.id = n.session_id
		WHERE s.user_id = $1
		ORDER BY n.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coaching notes: %w", err)
	}
	defer noteRows.Close()

	for noteRows.Next() {
		var note model.CoachingNote
		err := noteRows.Scan(
			&note.ID, &note.SessionID, &note.Summary, &note.Tips, &note.Tone, &note.CreatedAt,
		)
		if err != nil {
			s.logger.Error("Failed to scan coaching note", zap.Error(err))
			continue
		}
		export.CoachingNotes = append(export.CoachingNotes, note)
	}

	// Get reports
	reportRows, err := s.db.Query(ctx, `
		SELECT id, session_id, user_id, blob_path, created_at
		FROM reports WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	defer reportRows.Close()

	for reportRows.Next() {
		var report model.Report
		err := reportRows.Scan(
			&report.ID, &report.SessionID, &report.UserID, &report.BlobPath, &report.CreatedAt,
		)
		if err != nil {
			s.logger.Error("Failed to scan report", zap.Error(err))
			continue
		}
		report.GeneratedAt = report.CreatedAt
		export.Reports = append(export.Reports, report)
	}

	// Processing records are part of the export too
	trail, err := s.auditLogger.History(ctx, userID, auditExportLimit)
	if err != nil {
		s.logger.Error("Failed to load audit history for export", zap.Error(err))
	} else {
		export.AuditTrail = trail
	}

	// Convert to JSON
	jsonData, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export data: %w", err)
	}

	// Log audit entry
	if err := s.auditLogger.LogExport(ctx, userID, audit.ResourceUser, userID, ipAddress, userAgent); err != nil {
		s.logger.Error("Failed to log audit entry for user data export", zap.Error(err))
	}

	s.logger.Info("User data export completed",
		zap.String("user_id", userID),
		zap.Int("sessions", len(export.Sessions)),
		zap.Int("answers", len(export.Answers)),
		zap.Int("coaching_notes", len(export.CoachingNotes)),
		zap.Int("reports", len(export.Reports)),
	)

	return jsonData, nil
}
