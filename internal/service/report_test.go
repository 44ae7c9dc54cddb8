package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Samgith2025/recovery-plus-sub000/internal/pdf"
	"github.com/Samgith2025/recovery-plus-sub000/internal/storage"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/model"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockReportRepository is a mock implementation of ReportRepositoryInterface
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) SaveReport(ctx context.Context, report *model.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) FindByID(ctx context.Context, reportID string) (*model.Report, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportRepository) FindByUserID(ctx context.Context, userID string) ([]model.Report, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

type reportServiceMocks struct {
	reports        *MockReportRepository
	sessions       *MockSessionRepository
	questionnaires *MockQuestionnaireRepository
	blobs          *storage.MockBlobStore
}

func newTestReportService() (*ReportService, *reportServiceMocks) {
	m := &reportServiceMocks{
		reports:        new(MockReportRepository),
		sessions:       new(MockSessionRepository),
		questionnaires: new(MockQuestionnaireRepository),
		blobs:          storage.NewMockBlobStore(zap.NewNop()),
	}
	svc := NewReportService(m.reports, m.sessions, m.questionnaires, m.blobs, pdf.NewGenerator(zap.NewNop()), zap.NewNop())
	return svc, m
}

func completedTestSession() *model.Session {
	now := time.Now()
	session := testSession(questionnaire.Responses{
		"pain_level":   questionnaire.NumberValue(2),
		"did_exercise": questionnaire.BoolValue(false),
	})
	session.Status = model.SessionStatusCompleted
	session.CompletedAt = &now
	session.CompletionPercent = 100
	return session
}

func testAnswers() []model.SessionAnswer {
	now := time.Now()
	return []model.SessionAnswer{
		{ID: "a1", SessionID: "session-1", QuestionID: "pain_level", Value: questionnaire.NumberValue(2), Position: 0, AnsweredAt: now},
		{ID: "a2", SessionID: "session-1", QuestionID: "did_exercise", Value: questionnaire.BoolValue(false), Position: 1, AnsweredAt: now},
	}
}

func TestReportService_GenerateReport_Success(t *testing.T) {
	// Arrange
	svc, m := newTestReportService()
	ctx := context.Background()

	m.sessions.On("FindByID", ctx, "session-1").Return(completedTestSession(), nil)
	m.questionnaires.On("FindByID", ctx, "daily_check_in").Return(testQuestionnaire(), nil)
	m.sessions.On("FindAnswers", ctx, "session-1").Return(testAnswers(), nil)
	m.sessions.On("FindCoachingNote", ctx, "session-1").Return(&model.CoachingNote{
		ID:        "note-1",
		SessionID: "session-1",
		Summary:   "Pain stayed low today.",
		Tips:      []string{"Keep the routine going"},
		Tone:      "encouraging",
	}, nil)

	var saved *model.Report
	m.reports.On("SaveReport", ctx, mock.AnythingOfType("*model.Report")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*model.Report)
	}).Return(nil)

	// Act
	reportID, err := svc.GenerateReport(ctx, "session-1", "Test User")

	// Assert
	assert.NoError(t, err)
	assert.NotEmpty(t, reportID)
	assert.NotNil(t, saved)
	assert.Equal(t, reportID, saved.ID)
	assert.Equal(t, "session-1", saved.SessionID)
	assert.Equal(t, "user-1", saved.UserID)
	assert.NotEmpty(t, saved.BlobPath)

	// The PDF landed in blob storage.
	pdfBytes, err := m.blobs.DownloadReport(ctx, saved.BlobPath)
	assert.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))

	m.reports.AssertExpectations(t)
}

func TestReportService_GenerateReport_NoCoachingNote(t *testing.T) {
	// Arrange
	svc, m := newTestReportService()
	ctx := context.Background()

	m.sessions.On("FindByID", ctx, "session-1").Return(completedTestSession(), nil)
	m.questionnaires.On("FindByID", ctx, "daily_check_in").Return(testQuestionnaire(), nil)
	m.sessions.On("FindAnswers", ctx, "session-1").Return(testAnswers(), nil)
	m.sessions.On("FindCoachingNote", ctx, "session-1").Return(nil, errors.New("coaching note not found: session-1"))
	m.reports.On("SaveReport", ctx, mock.AnythingOfType("*model.Report")).Return(nil)

	// Act
	reportID, err := svc.GenerateReport(ctx, "session-1", "Test User")

	// Assert
	assert.NoError(t, err)
	assert.NotEmpty(t, reportID)
}

func TestReportService_GenerateReport_SessionNotCompleted(t *testing.T) {
	// Arrange
	svc, m := newTestReportService()
	ctx := context.Background()

	session := testSession(questionnaire.Responses{})
	m.sessions.On("FindByID", ctx, "session-1").Return(session, nil)

	// Act
	reportID, err := svc.GenerateReport(ctx, "session-1", "Test User")

	// Assert
	assert.Error(t, err)
	assert.Empty(t, reportID)
	assert.Contains(t, err.Error(), "session is not completed")
	m.reports.AssertNotCalled(t, "SaveReport", mock.Anything, mock.Anything)
}

func TestReportService_GetReport_RoundTrip(t *testing.T) {
	// Arrange
	svc, m := newTestReportService()
	ctx := context.Background()

	m.sessions.On("FindByID", ctx, "session-1").Return(completedTestSession(), nil)
	m.questionnaires.On("FindByID", ctx, "daily_check_in").Return(testQuestionnaire(), nil)
	m.sessions.On("FindAnswers", ctx, "session-1").Return(testAnswers(), nil)
	m.sessions.On("FindCoachingNote", ctx, "session-1").Return(nil, errors.New("coaching note not found: session-1"))

	var saved *model.Report
	m.reports.On("SaveReport", ctx, mock.AnythingOfType("*model.Report")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*model.Report)
	}).Return(nil)

	reportID, err := svc.GenerateReport(ctx, "session-1", "Test User")
	assert.NoError(t, err)

	m.reports.On("FindByID", ctx, reportID).Return(saved, nil)

	// Act
	pdfBytes, err := svc.GetReport(ctx, reportID)

	// Assert
	assert.NoError(t, err)
	assert.Greater(t, len(pdfBytes), 0)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}

func TestReportService_GetReport_NotFound(t *testing.T) {
	// Arrange
	svc, m := newTestReportService()
	ctx := context.Background()

	m.reports.On("FindByID", ctx, "missing").Return(nil, errors.New("report not found: missing"))

	// Act
	pdfBytes, err := svc.GetReport(ctx, "missing")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, pdfBytes)
}

func TestBuildReportSections(t *testing.T) {
	// Arrange
	cfg := testConfig()
	answers := testAnswers()

	// Act
	sections := buildReportSections(cfg, answers)

	// Assert
	assert.Len(t, sections, 2)
	assert.Equal(t, "Pain", sections[0].Title)
	assert.Len(t, sections[0].Items, 1)
	assert.Equal(t, "How bad is your pain right now?", sections[0].Items[0].Question)
	assert.Equal(t, "2", sections[0].Items[0].Answer)
	assert.Equal(t, "Exercise", sections[1].Title)
	assert.Equal(t, "No", sections[1].Items[0].Answer)
}

func TestBuildReportSections_SkipsUnanswered(t *testing.T) {
	// Arrange
	cfg := testConfig()
	answers := []model.SessionAnswer{
		{QuestionID: "pain_level", Value: questionnaire.NumberValue(4), Position: 0},
	}

	// Act
	sections := buildReportSections(cfg, answers)

	// Assert
	assert.Len(t, sections, 1)
	assert.Equal(t, "Pain", sections[0].Title)
	assert.Len(t, sections[0].Items, 1)
}
