package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Samgith2025/recovery-plus-sub000/internal/pdf"
	"github.com/Samgith2025/recovery-plus-sub000/internal/storage"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/model"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportRepositoryInterface defines the report data access the service needs
type ReportRepositoryInterface interface {
	SaveReport(ctx context.Context, report *model.Report) error
	FindByID(ctx context.Context, reportID string) (*model.Report, error)
	FindByUserID(ctx context.Context, userID string) ([]model.Report, error)
}

// ReportService generates PDF reports for completed sessions
type ReportService struct {
	reportRepo        ReportRepositoryInterface
	sessionRepo       SessionRepositoryInterface
	questionnaireRepo QuestionnaireRepositoryInterface
	blobStore         storage.BlobStore
	pdfGen            *pdf.Generator
	logger            *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	reportRepo ReportRepositoryInterface,
	sessionRepo SessionRepositoryInterface,
	questionnaireRepo QuestionnaireRepositoryInterface,
	blobStore storage.BlobStore,
	pdfGen *pdf.Generator,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reportRepo:        reportRepo,
		sessionRepo:       sessionRepo,
		questionnaireRepo: questionnaireRepo,
		blobStore:         blobStore,
		pdfGen:            pdfGen,
		logger:            logger,
	}
}

// GenerateReport builds a PDF report for a completed session, uploads
// it to blob storage, and records it. Returns the report ID.
func (s *ReportService) GenerateReport(ctx context.Context, sessionID string, userName string) (string, error) {
	s.logger.Info("generating session report",
		zap.String("session_id", sessionID),
	)

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	if session.Status != model.SessionStatusCompleted {
		return "", fmt.Errorf("session is not completed: %s", session.Status)
	}

	definition, err := s.questionnaireRepo.FindByID(ctx, session.QuestionnaireID)
	if err != nil {
		return "", fmt.Errorf("failed to get questionnaire: %w", err)
	}

	answers, err := s.sessionRepo.FindAnswers(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to get session answers: %w", err)
	}

	engine := questionnaire.NewEngine(definition.Config, nil)
	engine.SetResponses(session.Responses)

	reportData := &pdf.SessionReportData{
		UserName:           userName,
		QuestionnaireTitle: definition.Title,
		Summary:            engine.Summary(),
		Sections:           buildReportSections(definition.Config, answers),
		CompletionMessage:  definition.Config.Settings.CompletionMessage,
	}
	if session.CompletedAt != nil {
		reportData.CompletedAt = *session.CompletedAt
	}

	if note, err := s.sessionRepo.FindCoachingNote(ctx, sessionID); err == nil {
		reportData.CoachingSummary = note.Summary
		reportData.CoachingTips = note.Tips
	}

	pdfBytes, err := s.pdfGen.Generate(reportData)
	if err != nil {
		s.logger.Error("failed to generate PDF",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return "", fmt.Errorf("failed to generate PDF: %w", err)
	}

	reportID := uuid.New().String()
	filename := fmt.Sprintf("%s_%s.pdf", reportID, time.Now().Format("20060102"))
	blobPath, err := s.blobStore.UploadReport(ctx, filename, pdfBytes)
	if err != nil {
		s.logger.Error("failed to upload PDF to blob storage",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
		return "", fmt.Errorf("failed to upload PDF: %w", err)
	}

	report := &model.Report{
		ID:          reportID,
		SessionID:   sessionID,
		UserID:      session.UserID,
		BlobPath:    blobPath,
		GeneratedAt: time.Now(),
	}

	if err := s.reportRepo.SaveReport(ctx, report); err != nil {
		s.logger.Error("failed to save report record",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
		return "", fmt.Errorf("failed to save report record: %w", err)
	}

	s.logger.Info("session report generated successfully",
		zap.String("report_id", reportID),
		zap.String("session_id", sessionID),
		zap.String("blob_path", blobPath),
	)

	return reportID, nil
}

// GetReport retrieves a report PDF for download
func (s *ReportService) GetReport(ctx context.Context, reportID string) ([]byte, error) {
	s.logger.Info("retrieving report", zap.String("report_id", reportID))

	report, err := s.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report record: %w", err)
	}

	pdfBytes, err := s.blobStore.DownloadReport(ctx, report.BlobPath)
	if err != nil {
		s.logger.Error("failed to download PDF from blob storage",
			zap.Error(err),
			zap.String("report_id", reportID),
			zap.String("blob_path", report.BlobPath),
		)
		return nil, fmt.Errorf("failed to download PDF: %w", err)
	}

	s.logger.Info("report retrieved successfully",
		zap.String("report_id", reportID),
		zap.Int("size_bytes", len(pdfBytes)),
	)

	return pdfBytes, nil
}

// GetReportsByUserID retrieves all report records for a user
func (s *ReportService) GetReportsByUserID(ctx context.Context, userID string) ([]model.Report, error) {
	reports, err := s.reportRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	return reports, nil
}

// buildReportSections lays stored answers out by questionnaire section,
// keeping questionnaire order and skipping questions with no stored
// answer.
func buildReportSections(cfg *questionnaire.Config, answers []model.SessionAnswer) []pdf.ReportSection {
	byQuestion := make(map[string]questionnaire.Value, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Value
	}

	var sections []pdf.ReportSection
	for _, sec := range cfg.Sections {
		var items []pdf.ReportItem
		for _, q := range sec.Questions {
			value, ok := byQuestion[q.ID]
			if !ok || value.IsEmpty() {
				continue
			}
			items = append(items, pdf.ReportItem{
				Question: q.Text,
				Answer:   value.Display(),
			})
		}
		if len(items) > 0 {
			sections = append(sections, pdf.ReportSection{
				Title: sec.Title,
				Items: items,
			})
		}
	}

	return sections
}
