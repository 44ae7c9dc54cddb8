package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Samgith2025/recovery-plus-sub000/internal/ai"
	"github.com/Samgith2025/recovery-plus-sub000/internal/audit"
	"github.com/Samgith2025/recovery-plus-sub000/internal/handler"
	"github.com/Samgith2025/recovery-plus-sub000/internal/pdf"
	"github.com/Samgith2025/recovery-plus-sub000/internal/repository"
	"github.com/Samgith2025/recovery-plus-sub000/internal/service"
	"github.com/Samgith2025/recovery-plus-sub000/internal/storage"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/api"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// TestSessionFlowIntegration walks the session API end to end: start,
// answer, branch, navigate, complete.
func TestSessionFlowIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	router := setupRouter(t, pool)

	userID := createTestUser(t, pool)
	questionnaireID := seedCheckInQuestionnaire(t, pool)

	t.Run("Complete session flow with branching", func(t *testing.T) {
		// Step 1: Start a session
		t.Log("Step 1: Starting session")
		state := startSession(t, router, userID, questionnaireID)
		require.NotNil(t, state.Session.Id, "Session ID should not be nil")
		sessionID := state.Session.Id.String()

		require.NotNil(t, state.Question, "First question should be present")
		assert.Equal(t, "pain_level", state.Question.ID, "Flow should open on the pain question")
		// did_exercise carries a default, so one of the two visible
		// questions is already answered
		assert.Equal(t, 4, state.Summary.TotalQuestions)
		assert.Equal(t, 2, state.Summary.VisibleQuestions)
		assert.Equal(t, 1, state.Summary.AnsweredQuestions)
		assert.Equal(t, 50, state.Summary.CompletionPercent)
		assert.False(t, state.Summary.IsComplete)

		// Step 2: A high pain score opens the location branch
		t.Log("Step 2: Answering pain level above the branch threshold")
		state = submitAnswer(t, router, sessionID, "pain_level", questionnaire.NumberValue(7))
		assert.Equal(t, 3, state.Summary.VisibleQuestions, "pain_location should become visible")
		assert.Equal(t, 2, state.Summary.AnsweredQuestions)
		assert.Equal(t, 67, state.Summary.CompletionPercent)
		require.NotNil(t, state.Question)
		assert.Equal(t, "pain_level", state.Question.ID, "Cursor should not move on submit")

		// Step 3: Navigate into the branch
		t.Log("Step 3: Advancing to the branch question")
		state = advance(t, router, sessionID)
		require.NotNil(t, state.Question)
		assert.Equal(t, "pain_location", state.Question.ID)

		state = submitAnswer(t, router, sessionID, "pain_location", questionnaire.StringValue("lower_back"))
		assert.Equal(t, 3, state.Summary.AnsweredQuestions)
		assert.Equal(t, 100, state.Summary.CompletionPercent)
		assert.True(t, state.Summary.IsComplete, "All currently visible questions are answered")

		// Step 4: The exercise answer opens another branch
		t.Log("Step 4: Answering the exercise questions")
		state = advance(t, router, sessionID)
		require.NotNil(t, state.Question)
		assert.Equal(t, "did_exercise", state.Question.ID)

		state = submitAnswer(t, router, sessionID, "did_exercise", questionnaire.BoolValue(true))
		assert.Equal(t, 4, state.Summary.VisibleQuestions, "exercise_sets should become visible")
		assert.Equal(t, 75, state.Summary.CompletionPercent)
		assert.False(t, state.Summary.IsComplete)

		state = advance(t, router, sessionID)
		require.NotNil(t, state.Question)
		assert.Equal(t, "exercise_sets", state.Question.ID)

		// Step 5: A rule violation is rejected without losing the session
		t.Log("Step 5: Submitting an answer that fails validation")
		w := doRequest(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/answers",
			api.SubmitAnswerRequest{QuestionId: "exercise_sets", Value: questionnaire.NumberValue(0)})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var errResp api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.Equal(t, "ANSWER_INVALID", errResp.Code)
		assert.Equal(t, "At least one set counts", errResp.Message)

		state = submitAnswer(t, router, sessionID, "exercise_sets", questionnaire.NumberValue(3))
		assert.Equal(t, 100, state.Summary.CompletionPercent)
		assert.True(t, state.Summary.IsComplete)

		// Step 6: Complete the session
		t.Log("Step 6: Completing the session")
		w = doRequest(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/complete", nil)
		require.Equal(t, http.StatusOK, w.Code, "Complete should return 200 OK: %s", w.Body.String())

		var completion api.CompletionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completion))
		assert.Equal(t, "completed", completion.Session.Status)
		assert.Equal(t, "Great work today.", completion.CompletionMessage)
		require.NotNil(t, completion.Coaching, "Static coaching note should be attached")
		assert.NotEmpty(t, completion.Coaching.Summary)

		// Step 7: Verify persistence
		t.Log("Step 7: Verifying persisted state")
		verifySessionPersistence(t, pool, sessionID)
	})

	t.Run("Completion is refused while answers are missing", func(t *testing.T) {
		state := startSession(t, router, userID, questionnaireID)
		sessionID := state.Session.Id.String()

		w := doRequest(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/complete", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var errResp api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.Equal(t, "SESSION_INCOMPLETE", errResp.Code)
		require.NotNil(t, errResp.Details)
		assert.Contains(t, *errResp.Details, "pain_level")
	})

	t.Run("Navigation skips hidden questions in both directions", func(t *testing.T) {
		state := startSession(t, router, userID, questionnaireID)
		sessionID := state.Session.Id.String()

		// A low pain score keeps the location branch closed
		submitAnswer(t, router, sessionID, "pain_level", questionnaire.NumberValue(2))

		state = advance(t, router, sessionID)
		require.NotNil(t, state.Question)
		assert.Equal(t, "did_exercise", state.Question.ID, "Next should step over the hidden branch")

		state = stepBack(t, router, sessionID)
		require.NotNil(t, state.Question)
		assert.Equal(t, "pain_level", state.Question.ID, "Prev should land back on the pain question")
	})

	t.Run("Abandoned sessions refuse further answers", func(t *testing.T) {
		state := startSession(t, router, userID, questionnaireID)
		sessionID := state.Session.Id.String()

		w := doRequest(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/abandon", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doRequest(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/answers",
			api.SubmitAnswerRequest{QuestionId: "pain_level", Value: questionnaire.NumberValue(5)})
		assert.Equal(t, http.StatusConflict, w.Code)

		var errResp api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.Equal(t, "CONFLICT", errResp.Code)
	})

	t.Run("Session listing includes the user's sessions", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/sessions?user_id="+userID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var sessions []api.SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessions))
		assert.GreaterOrEqual(t, len(sessions), 4, "All sessions from this test should be listed")
	})
}

// verifySessionPersistence checks the database rows written on completion
func verifySessionPersistence(t *testing.T, pool *pgxpool.Pool, sessionID string) {
	ctx := context.Background()

	var status string
	var archivePath *string
	var completedAt *time.Time
	err := pool.QueryRow(ctx,
		`SELECT status, archive_path, completed_at FROM sessions WHERE id = $1`,
		sessionID).Scan(&status, &archivePath, &completedAt)
	require.NoError(t, err, "Should be able to read the session row")
	assert.Equal(t, "completed", status)
	assert.NotNil(t, archivePath, "Completion should record the archive path")
	assert.NotNil(t, completedAt, "Completion should record the completion time")

	rows, err := pool.Query(ctx,
		`SELECT question_id FROM session_answers WHERE session_id = $1 ORDER BY position`,
		sessionID)
	require.NoError(t, err, "Should be able to read answers")
	defer rows.Close()

	var questionIDs []string
	for rows.Next() {
		var questionID string
		require.NoError(t, rows.Scan(&questionID))
		questionIDs = append(questionIDs, questionID)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"pain_level", "pain_location", "did_exercise", "exercise_sets"}, questionIDs,
		"Answers should persist in questionnaire order")

	var noteCount int
	err = pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM coaching_notes WHERE session_id = $1`, sessionID).Scan(&noteCount)
	require.NoError(t, err)
	assert.Equal(t, 1, noteCount, "Completion should store one coaching note")
}

// startSession starts a session through the API and returns its state
func startSession(t *testing.T, router *gin.Engine, userID uuid.UUID, questionnaireID string) api.SessionStateResponse {
	w := doRequest(t, router, http.MethodPost, "/api/v1/sessions/start", api.StartSessionRequest{
		UserId:          userID,
		QuestionnaireId: questionnaireID,
	})
	require.Equal(t, http.StatusOK, w.Code, "Start session should return 200 OK: %s", w.Body.String())

	return parseState(t, w)
}

// submitAnswer submits one answer and returns the refreshed state
func submitAnswer(t *testing.T, router *gin.Engine, sessionID, questionID string, value questionnaire.Value) api.SessionStateResponse {
	w := doRequest(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/answers",
		api.SubmitAnswerRequest{QuestionId: questionID, Value: value})
	require.Equal(t, http.StatusOK, w.Code, "Submit answer should return 200 OK: %s", w.Body.String())

	return parseState(t, w)
}

// advance moves the cursor to the next visible question
func advance(t *testing.T, router *gin.Engine, sessionID string) api.SessionStateResponse {
	w := doRequest(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code, "Next should return 200 OK: %s", w.Body.String())

	return parseState(t, w)
}

// stepBack moves the cursor to the previous visible question
func stepBack(t *testing.T, router *gin.Engine, sessionID string) api.SessionStateResponse {
	w := doRequest(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/prev", nil)
	require.Equal(t, http.StatusOK, w.Code, "Prev should return 200 OK: %s", w.Body.String())

	return parseState(t, w)
}

func parseState(t *testing.T, w *httptest.ResponseRecorder) api.SessionStateResponse {
	var state api.SessionStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state), "Should be able to parse session state")
	return state
}

// doRequest performs one request against the router. A nil body sends
// no payload.
func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	return w
}

// apiServer implements api.ServerInterface for the tests by embedding
// the per-resource handlers, mirroring the production wiring.
type apiServer struct {
	*handler.SessionHandler
	*handler.QuestionnaireHandler
	*handler.ProgressHandler
	*handler.ReportHandler
	*handler.PrivacyHandler
	pool *pgxpool.Pool
}

func (s *apiServer) GetHealth(c *gin.Context) {
	if err := s.pool.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// setupRouter assembles the full API stack against the given database,
// with in-memory blob storage and the static coach.
func setupRouter(t *testing.T, pool *pgxpool.Pool) *gin.Engine {
	logger := zap.NewNop()
	blobStore := storage.NewMockBlobStore(logger)
	coach := ai.NewDisabledCoach(logger)
	predicates := questionnaire.NewPredicateRegistry()

	sessionRepo := repository.NewSessionRepository(pool, logger)
	questionnaireRepo := repository.NewQuestionnaireRepository(pool, logger)
	reportRepo := repository.NewReportRepository(pool, logger)
	progressRepo := repository.NewProgressRepository(pool, logger)

	sessionService := service.NewSessionService(sessionRepo, questionnaireRepo, blobStore, coach, predicates, logger)
	questionnaireService := service.NewQuestionnaireService(questionnaireRepo, logger)
	progressService := service.NewProgressService(progressRepo, logger)
	reportService := service.NewReportService(reportRepo, sessionRepo, questionnaireRepo, blobStore, pdf.NewGenerator(logger), logger)

	auditLogger := audit.NewLogger(pool, logger)
	privacyService := service.NewPrivacyService(pool, auditLogger, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api.RegisterHandlers(router, &apiServer{
		SessionHandler:       handler.NewSessionHandler(sessionService, logger),
		QuestionnaireHandler: handler.NewQuestionnaireHandler(questionnaireService, logger),
		ProgressHandler:      handler.NewProgressHandler(progressService, logger),
		ReportHandler:        handler.NewReportHandler(reportService, logger),
		PrivacyHandler:       handler.NewPrivacyHandler(privacyService, logger),
		pool:                 pool,
	})

	return router
}

// setupTestDatabase starts a PostgreSQL container and applies the schema
func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("recovery_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	runMigrations(t, pool)

	cleanup := func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return pool, cleanup
}

// runMigrations creates the schema the API persists into
func runMigrations(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS questionnaires (
			id VARCHAR(255) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			config JSONB NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			questionnaire_id VARCHAR(255) NOT NULL REFERENCES questionnaires(id),
			status VARCHAR(50) NOT NULL,
			current_index INTEGER NOT NULL DEFAULT 0,
			responses JSONB NOT NULL DEFAULT '{}',
			completion_percent INTEGER NOT NULL DEFAULT 0
				CHECK (completion_percent >= 0 AND completion_percent <= 100),
			archive_path VARCHAR(500),
			started_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS session_answers (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			question_id VARCHAR(255) NOT NULL,
			value JSONB NOT NULL,
			position INTEGER NOT NULL,
			answered_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS coaching_notes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			session_id UUID NOT NULL UNIQUE REFERENCES sessions(id) ON DELETE CASCADE,
			summary TEXT NOT NULL,
			tips TEXT[],
			tone VARCHAR(20) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			blob_path VARCHAR(500) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			operation_type VARCHAR(50) NOT NULL,
			resource_type VARCHAR(50) NOT NULL,
			resource_id VARCHAR(255),
			timestamp TIMESTAMP NOT NULL DEFAULT NOW(),
			ip_address VARCHAR(100),
			user_agent VARCHAR(500),
			additional_data JSONB
		)`,
	}

	for _, migration := range migrations {
		_, err := pool.Exec(ctx, migration)
		require.NoError(t, err)
	}
}

// createTestUser inserts a user row and returns its ID
func createTestUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	ctx := context.Background()
	userID := uuid.New()

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, name, email) VALUES ($1, $2, $3)`,
		userID.String(), "Test User", fmt.Sprintf("test-%s@example.com", userID))
	require.NoError(t, err)

	return userID
}

// seedCheckInQuestionnaire stores the branching check-in fixture: the
// pain location branch opens above pain level 3, the exercise sets
// branch opens when exercises were done.
func seedCheckInQuestionnaire(t *testing.T, pool *pgxpool.Pool) string {
	ctx := context.Background()
	questionnaireID := "daily-checkin"

	config := `{
		"id": "daily-checkin",
		"title": "Daily Recovery Check-In",
		"sections": [
			{
				"id": "pain",
				"title": "Pain",
				"questions": [
					{"id": "pain_level", "type": "pain_scale", "text": "How bad is your pain right now?", "required": true, "scale": {"min": 0, "max": 10}},
					{"id": "pain_location", "type": "body_map", "text": "Where does it hurt?",
						"options": [{"value": "lower_back", "label": "Lower back"}, {"value": "neck", "label": "Neck"}],
						"show_if": [{"depends_on": "pain_level", "condition": "greater_than", "value": 3}]}
				]
			},
			{
				"id": "exercise",
				"title": "Exercise",
				"questions": [
					{"id": "did_exercise", "type": "boolean", "text": "Did you do your exercises today?", "required": true, "default": false},
					{"id": "exercise_sets", "type": "number", "text": "How many sets did you complete?",
						"rules": [{"type": "min_value", "value": 1, "message": "At least one set counts"}],
						"show_if": [{"depends_on": "did_exercise", "condition": "equals", "value": true}]}
				]
			}
		],
		"settings": {"allow_back": true, "show_progress": true, "auto_save": true, "completion_message": "Great work today."}
	}`

	_, err := pool.Exec(ctx,
		`INSERT INTO questionnaires (id, title, config) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		questionnaireID, "Daily Recovery Check-In", []byte(config))
	require.NoError(t, err)

	return questionnaireID
}
