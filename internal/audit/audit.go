// Package audit persists a trail of privacy-sensitive operations in the
// audit_logs table. Trail rows outlive user erasure, so the erasure itself
// stays provable.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Operation classifies what was done to a resource. The constants form the
// closed vocabulary stored in the operation_type column.
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
	OperationRead   Operation = "READ"
	OperationExport Operation = "EXPORT"
)

// Resource names the kind of record an operation touched.
type Resource string

const (
	ResourceSession       Resource = "session"
	ResourceQuestionnaire Resource = "questionnaire"
	ResourceReport        Resource = "report"
	ResourceArchive       Resource = "session_archive"
	ResourceUser          Resource = "user"
)

// Entry is one row of the audit trail. The JSON tags matter: entries are
// included verbatim in user data exports.
type Entry struct {
	UserID     string         `json:"user_id"`
	Operation  Operation      `json:"operation"`
	Resource   Resource       `json:"resource"`
	ResourceID string         `json:"resource_id"`
	Timestamp  time.Time      `json:"timestamp"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Logger writes audit entries to the database and mirrors them to the
// application log.
type Logger struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLogger(db *pgxpool.Pool, logger *zap.Logger) *Logger {
	return &Logger{db: db, logger: logger}
}

// Record persists a single entry. A zero Timestamp is stamped with the
// current time.
func (l *Logger) Record(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := l.db.Exec(ctx, `
		INSERT INTO audit_logs (
			user_id, operation_type, resource_type, resource_id,
			timestamp, ip_address, user_agent, additional_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.UserID,
		entry.Operation,
		entry.Resource,
		entry.ResourceID,
		entry.Timestamp,
		entry.IPAddress,
		entry.UserAgent,
		entry.Metadata,
	)
	if err != nil {
		l.logger.Error("failed to persist audit entry",
			zap.Error(err),
			zap.String("user_id", entry.UserID),
			zap.String("operation", string(entry.Operation)),
		)
		return fmt.Errorf("failed to persist audit entry: %w", err)
	}

	l.logger.Info("audit entry recorded",
		zap.String("user_id", entry.UserID),
		zap.String("operation", string(entry.Operation)),
		zap.String("resource", string(entry.Resource)),
		zap.String("resource_id", entry.ResourceID),
	)

	return nil
}

// LogDelete records an erasure of the given resource.
func (l *Logger) LogDelete(ctx context.Context, userID string, resource Resource, resourceID, ipAddress, userAgent string) error {
	return l.Record(ctx, Entry{
		UserID:     userID,
		Operation:  OperationDelete,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})
}

// LogExport records that a copy of the resource left the system.
func (l *Logger) LogExport(ctx context.Context, userID string, resource Resource, resourceID, ipAddress, userAgent string) error {
	return l.Record(ctx, Entry{
		UserID:     userID,
		Operation:  OperationExport,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})
}

// History returns the user's most recent audit entries, newest first.
func (l *Logger) History(ctx context.Context, userID string, limit int) ([]Entry, error) {
	rows, err := l.db.Query(ctx, `
		SELECT user_id, operation_type, resource_type, resource_id,
		       timestamp, ip_address, user_agent
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.UserID,
			&e.Operation,
			&e.Resource,
			&e.ResourceID,
			&e.Timestamp,
			&e.IPAddress,
			&e.UserAgent,
		)
		if err != nil {
			l.logger.Error("failed to scan audit entry", zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit history: %w", err)
	}

	return entries, nil
}
