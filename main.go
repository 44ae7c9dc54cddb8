package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Samgith2025/recovery-plus-sub000/internal/ai"
	"github.com/Samgith2025/recovery-plus-sub000/internal/audit"
	"github.com/Samgith2025/recovery-plus-sub000/internal/config"
	"github.com/Samgith2025/recovery-plus-sub000/internal/handler"
	"github.com/Samgith2025/recovery-plus-sub000/internal/middleware"
	"github.com/Samgith2025/recovery-plus-sub000/internal/pdf"
	"github.com/Samgith2025/recovery-plus-sub000/internal/repository"
	"github.com/Samgith2025/recovery-plus-sub000/internal/security"
	"github.com/Samgith2025/recovery-plus-sub000/internal/service"
	"github.com/Samgith2025/recovery-plus-sub000/internal/storage"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/api"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	pool   *pgxpool.Pool
	cfg    *config.Config
)

func main() {
	// Load configuration
	var err error
	cfg, err = config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize Zap logger
	if cfg.Server.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database connection pool with pgx
	pool, err = pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Test database connection
	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	// Load and validate the embedded OpenAPI contract
	spec, err := api.Spec(context.Background())
	if err != nil {
		logger.Fatal("Failed to load OpenAPI contract", zap.Error(err))
	}

	// Initialize encryption for archived session payloads
	encryptor, err := security.NewEncryptor([]byte(cfg.Security.EncryptionKey))
	if err != nil {
		logger.Fatal("Failed to initialize encryptor", zap.Error(err))
	}

	// Initialize blob storage for session archives and generated reports
	blobStore, err := storage.NewArchiveClient(
		cfg.Storage.AccountName,
		cfg.Storage.AccountKey,
		cfg.Storage.ArchiveContainer,
		cfg.Storage.ReportContainer,
		encryptor,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to initialize blob storage client", zap.Error(err))
	}

	// Initialize the coaching client; fall back to static notes when disabled
	var coach ai.CoachClient
	if cfg.OpenAI.Enabled {
		aiClient, err := ai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
		if err != nil {
			logger.Fatal("Failed to initialize OpenAI client", zap.Error(err))
		}
		coach = ai.NewOpenAICoach(aiClient, logger)
	} else {
		logger.Info("Coaching disabled, using static completion notes")
		coach = ai.NewDisabledCoach(logger)
	}

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(pool, logger)
	questionnaireRepo := repository.NewQuestionnaireRepository(pool, logger)
	reportRepo := repository.NewReportRepository(pool, logger)
	progressRepo := repository.NewProgressRepository(pool, logger)

	// Registry for custom validation predicates referenced by questionnaire
	// configs. Configs stay data-only; code-backed checks are registered here.
	predicates := questionnaire.NewPredicateRegistry()

	// Initialize services
	sessionService := service.NewSessionService(
		sessionRepo,
		questionnaireRepo,
		blobStore,
		coach,
		predicates,
		logger,
	)
	questionnaireService := service.NewQuestionnaireService(questionnaireRepo, logger)
	progressService := service.NewProgressService(progressRepo, logger)

	// Initialize PDF generator
	pdfGenerator := pdf.NewGenerator(logger)

	reportService := service.NewReportService(
		reportRepo,
		sessionRepo,
		questionnaireRepo,
		blobStore,
		pdfGenerator,
		logger,
	)

	// Initialize privacy service
	auditLogger := audit.NewLogger(pool, logger)
	privacyService := service.NewPrivacyService(pool, auditLogger, logger)

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(sessionService, logger)
	questionnaireHandler := handler.NewQuestionnaireHandler(questionnaireService, logger)
	progressHandler := handler.NewProgressHandler(progressService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	privacyHandler := handler.NewPrivacyHandler(privacyService, logger)

	// Create a unified handler that implements the ServerInterface
	apiHandler := &APIHandler{
		session:       sessionHandler,
		questionnaire: questionnaireHandler,
		progress:      progressHandler,
		report:        reportHandler,
		privacy:       privacyHandler,
		pool:          pool,
		logger:        logger,
	}

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	r := gin.New()

	// Add recovery middleware (must be first)
	r.Use(middleware.RecoveryMiddleware(logger))

	// Add CORS middleware
	r.Use(middleware.CORSMiddleware())

	// Add request ID middleware
	r.Use(middleware.RequestIDMiddleware())

	// Add request logging middleware
	r.Use(middleware.RequestLoggingMiddleware(logger))

	// Add error logging middleware
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	// Serve the API contract
	r.GET("/openapi.json", api.SpecHandler(spec))

	// Register generated API handlers
	api.RegisterHandlers(r, apiHandler)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close database connections
	pool.Close()

	logger.Info("Server exited")
}

// APIHandler implements the generated ServerInterface by delegating to individual handlers
type APIHandler struct {
	session       *handler.SessionHandler
	questionnaire *handler.QuestionnaireHandler
	progress      *handler.ProgressHandler
	report        *handler.ReportHandler
	privacy       *handler.PrivacyHandler
	pool          *pgxpool.Pool
	logger        *zap.Logger
}

// Session endpoints
func (h *APIHandler) PostApiV1SessionsStart(c *gin.Context) {
	h.session.PostApiV1SessionsStart(c)
}

func (h *APIHandler) GetApiV1Sessions(c *gin.Context, params api.GetApiV1SessionsParams) {
	h.session.GetApiV1Sessions(c, params)
}

func (h *APIHandler) GetApiV1SessionsSessionId(c *gin.Context, sessionId openapi_types.UUID) {
	h.session.GetApiV1SessionsSessionId(c, sessionId)
}

func (h *APIHandler) PostApiV1SessionsSessionIdAnswers(c *gin.Context, sessionId openapi_types.UUID) {
	h.session.PostApiV1SessionsSessionIdAnswers(c, sessionId)
}

func (h *APIHandler) PostApiV1SessionsSessionIdNext(c *gin.Context, sessionId openapi_types.UUID) {
	h.session.PostApiV1SessionsSessionIdNext(c, sessionId)
}

func (h *APIHandler) PostApiV1SessionsSessionIdPrev(c *gin.Context, sessionId openapi_types.UUID) {
	h.session.PostApiV1SessionsSessionIdPrev(c, sessionId)
}

func (h *APIHandler) PostApiV1SessionsSessionIdComplete(c *gin.Context, sessionId openapi_types.UUID) {
	h.session.PostApiV1SessionsSessionIdComplete(c, sessionId)
}

func (h *APIHandler) PostApiV1SessionsSessionIdAbandon(c *gin.Context, sessionId openapi_types.UUID) {
	h.session.PostApiV1SessionsSessionIdAbandon(c, sessionId)
}

// Questionnaire endpoints
func (h *APIHandler) GetApiV1Questionnaires(c *gin.Context) {
	h.questionnaire.GetApiV1Questionnaires(c)
}

func (h *APIHandler) GetApiV1QuestionnairesId(c *gin.Context, id string) {
	h.questionnaire.GetApiV1QuestionnairesId(c, id)
}

// Progress endpoints
func (h *APIHandler) GetApiV1ProgressOverview(c *gin.Context, params api.GetApiV1ProgressOverviewParams) {
	h.progress.GetApiV1ProgressOverview(c, params)
}

// Report endpoints
func (h *APIHandler) PostApiV1ReportsGenerate(c *gin.Context) {
	h.report.PostApiV1ReportsGenerate(c)
}

func (h *APIHandler) GetApiV1Reports(c *gin.Context, params api.GetApiV1ReportsParams) {
	h.report.GetApiV1Reports(c, params)
}

func (h *APIHandler) GetApiV1ReportsId(c *gin.Context, id openapi_types.UUID) {
	h.report.GetApiV1ReportsId(c, id)
}

// Privacy endpoints
func (h *APIHandler) DeleteApiV1UsersUserIdData(c *gin.Context, userId openapi_types.UUID) {
	h.privacy.DeleteApiV1UsersUserIdData(c, userId)
}

func (h *APIHandler) GetApiV1UsersUserIdExport(c *gin.Context, userId openapi_types.UUID) {
	h.privacy.GetApiV1UsersUserIdExport(c, userId)
}

// GetHealth implements the health check endpoint
func (h *APIHandler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	// Check database connectivity
	if err := h.pool.Ping(ctx); err != nil {
		h.logger.Error("health check failed: database unreachable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}

	// Return healthy status
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
		"service":  "recovery-plus-backend",
		"version":  "1.0.0",
	})
}
