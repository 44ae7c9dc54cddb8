package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// Generator renders completed questionnaire sessions as PDF reports
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a new Generator
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{
		logger: logger,
	}
}

// ReportItem is one answered question in the report
type ReportItem struct {
	Question string
	Answer   string
}

// ReportSection groups answered questions under their section heading
type ReportSection struct {
	Title string
	Items []ReportItem
}

// SessionReportData contains all data needed for session report generation
type SessionReportData struct {
	UserName           string
	QuestionnaireTitle string
	CompletedAt        time.Time
	Summary            questionnaire.Summary
	Sections           []ReportSection
	CoachingSummary    string
	CoachingTips       []string
	CompletionMessage  string
}

// Generate creates a PDF report from the provided session data
func (g *Generator) Generate(data *SessionReportData) ([]byte, error) {
	g.logger.Info("generating session report",
		zap.String("user_name", data.UserName),
		zap.String("questionnaire", data.QuestionnaireTitle),
	)

	// Create new PDF
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	// Add page
	pdf.AddPage()

	// Add title
	g.addTitle(pdf, "Session Report", data)

	// Add all sections
	g.addCompletionOverview(pdf, data.Summary)
	g.addAnswerSections(pdf, data.Sections)
	g.addCoachingNote(pdf, data.CoachingSummary, data.CoachingTips)
	g.addClosingMessage(pdf, data.CompletionMessage)

	// Generate PDF bytes
	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("session report generated successfully",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// addTitle adds the report title and header information
func (g *Generator) addTitle(pdf *gofpdf.Fpdf, title string, data *SessionReportData) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("User: %s", data.UserName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Questionnaire: %s", data.QuestionnaireTitle), "", 1, "L", false, 0, "")
	if !data.CompletedAt.IsZero() {
		pdf.CellFormat(0, 8, fmt.Sprintf("Completed: %s", data.CompletedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

// addSectionHeader adds a section header
func (g *Generator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

// addCompletionOverview adds the completion numbers section
func (g *Generator) addCompletionOverview(pdf *gofpdf.Fpdf, summary questionnaire.Summary) {
	g.addSectionHeader(pdf, "Completion Overview")

	pdf.CellFormat(0, 6, fmt.Sprintf("Questions shown: %d of %d", summary.VisibleQuestions, summary.TotalQuestions), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Questions answered: %d", summary.AnsweredQuestions), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Completion: %d%%", summary.CompletionPercent), "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

// addAnswerSections adds one section per questionnaire section with its
// answered questions
func (g *Generator) addAnswerSections(pdf *gofpdf.Fpdf, sections []ReportSection) {
	if len(sections) == 0 {
		g.addSectionHeader(pdf, "Answers")
		pdf.CellFormat(0, 8, "No answers recorded for this session.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, section := range sections {
		g.addSectionHeader(pdf, section.Title)

		if len(section.Items) == 0 {
			pdf.CellFormat(0, 8, "No questions answered in this section.", "", 1, "L", false, 0, "")
			pdf.Ln(5)
			continue
		}

		for _, item := range section.Items {
			pdf.SetFont("Arial", "B", 10)
			pdf.MultiCell(0, 6, item.Question, "", "L", false)
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(0, 5, fmt.Sprintf("  %s", item.Answer), "", "L", false)
			pdf.Ln(2)
		}
		pdf.Ln(5)
	}
}

// addCoachingNote adds the coaching note section when one exists
func (g *Generator) addCoachingNote(pdf *gofpdf.Fpdf, summary string, tips []string) {
	if summary == "" {
		return
	}

	g.addSectionHeader(pdf, "Coaching Note")

	pdf.MultiCell(0, 6, summary, "", "L", false)

	if len(tips) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Suggestions:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, tip := range tips {
			pdf.MultiCell(0, 5, fmt.Sprintf("  - %s", tip), "", "L", false)
		}
	}
	pdf.Ln(5)
}

// addClosingMessage adds the questionnaire's completion message
func (g *Generator) addClosingMessage(pdf *gofpdf.Fpdf, message string) {
	if message == "" {
		return
	}

	pdf.SetFont("Arial", "I", 11)
	pdf.MultiCell(0, 6, message, "", "C", false)
}
