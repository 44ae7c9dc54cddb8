package integration_tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/Samgith2025/recovery-plus-sub000/pkg/api"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReportAndPrivacyFlowIntegration covers the surfaces downstream of
// a completed session: PDF reports, the full data export, and erasure.
func TestReportAndPrivacyFlowIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	router := setupRouter(t, pool)

	userID := createTestUser(t, pool)
	questionnaireID := seedCheckInQuestionnaire(t, pool)

	// Complete a short session first; a low pain score keeps both
	// branches closed so two answers finish the flow.
	state := startSession(t, router, userID, questionnaireID)
	sessionUUID := *state.Session.Id
	sessionID := sessionUUID.String()

	submitAnswer(t, router, sessionID, "pain_level", questionnaire.NumberValue(2))

	w := doRequest(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code, "Complete should return 200 OK: %s", w.Body.String())

	var reportID string

	t.Run("Generate a report for the completed session", func(t *testing.T) {
		userName := "Alex"
		w := doRequest(t, router, http.MethodPost, "/api/v1/reports/generate", api.GenerateReportRequest{
			SessionId: sessionUUID,
			UserName:  &userName,
		})
		require.Equal(t, http.StatusOK, w.Code, "Generate report should return 200 OK: %s", w.Body.String())

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		reportID = resp["report_id"]
		require.NotEmpty(t, reportID, "Response should carry the report ID")
	})

	t.Run("Report listing includes the new report", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/reports?user_id="+userID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var reports []api.ReportInfoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reports))
		require.Len(t, reports, 1)
		require.NotNil(t, reports[0].Id)
		assert.Equal(t, reportID, reports[0].Id.String())
	})

	t.Run("Report download returns the PDF", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/reports/"+reportID, nil)
		require.Equal(t, http.StatusOK, w.Code, "Download should return 200 OK: %s", w.Body.String())

		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"), "Body should be a PDF document")
	})

	t.Run("Reports are refused for active sessions", func(t *testing.T) {
		active := startSession(t, router, userID, questionnaireID)

		w := doRequest(t, router, http.MethodPost, "/api/v1/reports/generate", api.GenerateReportRequest{
			SessionId: *active.Session.Id,
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		var errResp api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.Equal(t, "CONFLICT", errResp.Code)
	})

	t.Run("Export returns every stored record", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/users/"+userID.String()+"/export", nil)
		require.Equal(t, http.StatusOK, w.Code, "Export should return 200 OK: %s", w.Body.String())

		var export struct {
			User          json.RawMessage   `json:"user"`
			Sessions      []json.RawMessage `json:"sessions"`
			Answers       []json.RawMessage `json:"answers"`
			CoachingNotes []json.RawMessage `json:"coaching_notes"`
			Reports       []json.RawMessage `json:"reports"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &export))

		assert.NotEmpty(t, export.User, "Export should include the user record")
		assert.Len(t, export.Sessions, 2, "Both sessions should be exported")
		assert.Len(t, export.Answers, 2, "The completed session's answers should be exported")
		assert.Len(t, export.CoachingNotes, 1)
		assert.Len(t, export.Reports, 1)

		assertAuditEntry(t, pool, userID.String(), "EXPORT")
	})

	t.Run("Erasure removes sessions and soft-deletes the user", func(t *testing.T) {
		w := doRequest(t, router, http.MethodDelete, "/api/v1/users/"+userID.String()+"/data", nil)
		require.Equal(t, http.StatusOK, w.Code, "Erasure should return 200 OK: %s", w.Body.String())

		ctx := context.Background()

		var sessionCount int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM sessions WHERE user_id = $1`, userID.String()).Scan(&sessionCount))
		assert.Equal(t, 0, sessionCount, "No sessions should remain")

		var reportCount int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM reports WHERE user_id = $1`, userID.String()).Scan(&reportCount))
		assert.Equal(t, 0, reportCount, "No reports should remain")

		var deleted bool
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT deleted_at IS NOT NULL FROM users WHERE id = $1`, userID.String()).Scan(&deleted))
		assert.True(t, deleted, "The user row should be soft-deleted")

		assertAuditEntry(t, pool, userID.String(), "DELETE")
	})

	t.Run("Health endpoint reports healthy", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var health map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
		assert.Equal(t, "healthy", health["status"])
	})
}

// assertAuditEntry checks that the given operation was audit-logged for
// the user
func assertAuditEntry(t *testing.T, pool *pgxpool.Pool, userID, operation string) {
	t.Helper()

	var count int
	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM audit_logs WHERE user_id = $1 AND operation_type = $2`,
		userID, operation).Scan(&count)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 1, "Expected an audit entry for %s", operation)
}
