package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Samgith2025/recovery-plus-sub000/internal/ai"
	"github.com/Samgith2025/recovery-plus-sub000/internal/storage"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/model"
	"github.com/Samgith2025/recovery-plus-sub000/pkg/questionnaire"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepositoryInterface defines the session data access the service needs
type SessionRepositoryInterface interface {
	CreateSession(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, sessionID string) (*model.Session, error)
	FindByUserID(ctx context.Context, userID string) ([]model.Session, error)
	UpdateProgress(ctx context.Context, sessionID string, responses questionnaire.Responses, currentIndex, completionPercent int) error
	CompleteSession(ctx context.Context, sessionID string, archivePath *string) error
	UpdateStatus(ctx context.Context, sessionID string, status model.SessionStatus) error
	ReplaceAnswers(ctx context.Context, sessionID string, entries []questionnaire.ResponseEntry) error
	FindAnswers(ctx context.Context, sessionID string) ([]model.SessionAnswer, error)
	SaveCoachingNote(ctx context.Context, note *model.CoachingNote) error
	FindCoachingNote(ctx context.Context, sessionID string) (*model.CoachingNote, error)
}

// ValidationError reports a rejected answer. The session stays active;
// the client should correct the value and resubmit.
type ValidationError struct {
	QuestionID string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid answer for %s: %s", e.QuestionID, e.Message)
}

// IncompleteError refuses completion while visible questions are still
// unanswered or failing validation.
type IncompleteError struct {
	Summary questionnaire.Summary
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("session is not complete: %d of %d visible questions answered",
		e.Summary.AnsweredQuestions, e.Summary.VisibleQuestions)
}

// SessionState is the snapshot returned by every session operation: the
// session row, the question the cursor points at (nil once the visible
// flow is exhausted), and the progress summary.
type SessionState struct {
	Session  *model.Session
	Question *questionnaire.Question
	Summary  questionnaire.Summary
}

// CompletionResult is returned when a session finishes.
type CompletionResult struct {
	Session           *model.Session
	Summary           questionnaire.Summary
	Coaching          *ai.Coaching
	CompletionMessage string
}

// SessionService drives questionnaire sessions. It rebuilds the
// evaluation engine from stored state on every call, so the service
// itself holds nothing between requests. When a questionnaire disables
// auto-save, answers are only persisted on navigation and completion.
type SessionService struct {
	sessionRepo       SessionRepositoryInterface
	questionnaireRepo QuestionnaireRepositoryInterface
	blobStore         storage.BlobStore
	coach             ai.CoachClient
	predicates        *questionnaire.PredicateRegistry
	logger            *zap.Logger
	sessionTimeout    time.Duration
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessionRepo SessionRepositoryInterface,
	questionnaireRepo QuestionnaireRepositoryInterface,
	blobStore storage.BlobStore,
	coach ai.CoachClient,
	predicates *questionnaire.PredicateRegistry,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo:       sessionRepo,
		questionnaireRepo: questionnaireRepo,
		blobStore:         blobStore,
		coach:             coach,
		predicates:        predicates,
		logger:            logger,
		sessionTimeout:    24 * time.Hour,
	}
}

// StartSession creates a new session for the questionnaire, seeds the
// response map with declared defaults, and returns the first visible
// question.
func (s *SessionService) StartSession(ctx context.Context, userID, questionnaireID string) (*SessionState, error) {
	s.logger.Info("starting questionnaire session",
		zap.String("user_id", userID),
		zap.String("questionnaire_id", questionnaireID),
	)

	definition, err := s.questionnaireRepo.FindByID(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}

	responses := definition.Config.DefaultResponses()
	engine := questionnaire.NewEngine(definition.Config, s.predicates)
	engine.SetResponses(responses)

	first, firstIdx := engine.NextVisible(-1)
	summary := engine.Summary()

	now := time.Now()
	session := &model.Session{
		ID:                uuid.New().String(),
		UserID:            userID,
		QuestionnaireID:   questionnaireID,
		Status:            model.SessionStatusActive,
		CurrentIndex:      firstIdx,
		Responses:         responses,
		CompletionPercent: summary.CompletionPercent,
		StartedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("questionnaire session started",
		zap.String("session_id", session.ID),
		zap.Int("visible_questions", summary.VisibleQuestions),
	)

	return &SessionState{Session: session, Question: first, Summary: summary}, nil
}

// SubmitAnswer validates and stores one answer. The cursor does not
// move; navigation is a separate step so clients can submit corrections
// in place.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID, questionID string, value questionnaire.Value) (*SessionState, error) {
	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	definition, err := s.questionnaireRepo.FindByID(ctx, session.QuestionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}

	if definition.Config.Question(questionID) == nil {
		return nil, fmt.Errorf("question not found: %s", questionID)
	}

	engine := questionnaire.NewEngine(definition.Config, s.predicates)
	engine.SetResponses(session.Responses)

	if msg := engine.ValidateResponse(questionID, value); msg != "" {
		return nil, &ValidationError{QuestionID: questionID, Message: msg}
	}

	session.Responses[questionID] = value
	engine.SetResponses(session.Responses)
	summary := engine.Summary()
	session.CompletionPercent = summary.CompletionPercent

	if definition.Config.Settings.AutoSave {
		if err := s.sessionRepo.UpdateProgress(ctx, session.ID, session.Responses, session.CurrentIndex, summary.CompletionPercent); err != nil {
			return nil, fmt.Errorf("failed to save progress: %w", err)
		}
	}

	s.logger.Info("answer submitted",
		zap.String("session_id", session.ID),
		zap.String("question_id", questionID),
		zap.Int("completion_percent", summary.CompletionPercent),
	)

	return &SessionState{Session: session, Question: s.currentQuestion(engine, session.CurrentIndex), Summary: summary}, nil
}

// NextQuestion advances the cursor to the next visible question and
// persists the move. A nil question in the returned state means the
// visible flow is exhausted and the session can be completed.
func (s *SessionService) NextQuestion(ctx context.Context, sessionID string) (*SessionState, error) {
	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	definition, err := s.questionnaireRepo.FindByID(ctx, session.QuestionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}

	engine := questionnaire.NewEngine(definition.Config, s.predicates)
	engine.SetResponses(session.Responses)

	summary := engine.Summary()
	next, nextIdx := engine.NextVisible(session.CurrentIndex)
	if next == nil {
		// End of the visible flow. The cursor stays put so the client
		// can still step back or complete.
		return &SessionState{Session: session, Summary: summary}, nil
	}

	session.CurrentIndex = nextIdx
	session.CompletionPercent = summary.CompletionPercent
	if err := s.sessionRepo.UpdateProgress(ctx, session.ID, session.Responses, session.CurrentIndex, session.CompletionPercent); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	return &SessionState{Session: session, Question: next, Summary: summary}, nil
}

// PrevQuestion steps the cursor back to the nearest earlier visible
// question. Questionnaires with allow_back disabled refuse the move.
func (s *SessionService) PrevQuestion(ctx context.Context, sessionID string) (*SessionState, error) {
	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	definition, err := s.questionnaireRepo.FindByID(ctx, session.QuestionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}

	if !definition.Config.Settings.AllowBack {
		return nil, fmt.Errorf("going back is not allowed for this questionnaire")
	}

	engine := questionnaire.NewEngine(definition.Config, s.predicates)
	engine.SetResponses(session.Responses)

	summary := engine.Summary()
	prev, prevIdx := engine.PrevVisible(session.CurrentIndex)
	if prev == nil {
		// Already at the first visible question.
		return &SessionState{Session: session, Question: s.currentQuestion(engine, session.CurrentIndex), Summary: summary}, nil
	}

	session.CurrentIndex = prevIdx
	session.CompletionPercent = summary.CompletionPercent
	if err := s.sessionRepo.UpdateProgress(ctx, session.ID, session.Responses, session.CurrentIndex, session.CompletionPercent); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	return &SessionState{Session: session, Question: prev, Summary: summary}, nil
}

// GetSessionState returns the current state of a session regardless of
// its status. Completed and abandoned sessions report a nil question.
func (s *SessionService) GetSessionState(ctx context.Context, sessionID string) (*SessionState, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	definition, err := s.questionnaireRepo.FindByID(ctx, session.QuestionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}

	engine := questionnaire.NewEngine(definition.Config, s.predicates)
	engine.SetResponses(session.Responses)

	state := &SessionState{Session: session, Summary: engine.Summary()}
	if session.Status == model.SessionStatusActive {
		state.Question = s.currentQuestion(engine, session.CurrentIndex)
	}

	return state, nil
}

// ListSessions returns all sessions for a user, newest first.
func (s *SessionService) ListSessions(ctx context.Context, userID string) ([]model.Session, error) {
	sessions, err := s.sessionRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	return sessions, nil
}

// sessionArchive is the JSON document uploaded to blob storage when a
// session completes.
type sessionArchive struct {
	SessionID       string                        `json:"session_id"`
	UserID          string                        `json:"user_id"`
	QuestionnaireID string                        `json:"questionnaire_id"`
	Title           string                        `json:"title"`
	CompletedAt     time.Time                     `json:"completed_at"`
	Responses       []questionnaire.ResponseEntry `json:"responses"`
	Summary         questionnaire.Summary         `json:"summary"`
}

// CompleteSession finishes a session: it persists the ordered response
// array, archives it to blob storage, marks the session completed, and
// requests a coaching note. Archive and coaching failures are logged
// but do not block completion.
func (s *SessionService) CompleteSession(ctx context.Context, sessionID string) (*CompletionResult, error) {
	s.logger.Info("completing questionnaire session", zap.String("session_id", sessionID))

	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	definition, err := s.questionnaireRepo.FindByID(ctx, session.QuestionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}

	engine := questionnaire.NewEngine(definition.Config, s.predicates)
	engine.SetResponses(session.Responses)

	summary := engine.Summary()
	if !summary.IsComplete {
		return nil, &IncompleteError{Summary: summary}
	}

	entries := engine.ResponseArray()
	if err := s.sessionRepo.ReplaceAnswers(ctx, session.ID, entries); err != nil {
		return nil, fmt.Errorf("failed to save answers: %w", err)
	}

	now := time.Now()
	archivePath := s.archiveSession(ctx, session, definition, entries, summary, now)

	if err := s.sessionRepo.CompleteSession(ctx, session.ID, archivePath); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	session.Status = model.SessionStatusCompleted
	session.CompletedAt = &now
	session.ArchivePath = archivePath
	session.CompletionPercent = summary.CompletionPercent

	coaching := s.requestCoaching(ctx, definition, engine)
	if coaching != nil {
		note := &model.CoachingNote{
			ID:        uuid.New().String(),
			SessionID: session.ID,
			Summary:   coaching.Summary,
			Tips:      coaching.Tips,
			Tone:      coaching.Tone,
		}
		if err := s.sessionRepo.SaveCoachingNote(ctx, note); err != nil {
			s.logger.Warn("failed to save coaching note",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("questionnaire session completed",
		zap.String("session_id", session.ID),
		zap.Duration("session_duration", now.Sub(session.StartedAt)),
		zap.Int("answered_questions", summary.AnsweredQuestions),
		zap.Int("visible_questions", summary.VisibleQuestions),
	)

	return &CompletionResult{
		Session:           session,
		Summary:           summary,
		Coaching:          coaching,
		CompletionMessage: definition.Config.Settings.CompletionMessage,
	}, nil
}

// AbandonSession marks an active session abandoned.
func (s *SessionService) AbandonSession(ctx context.Context, sessionID string) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if session.Status != model.SessionStatusActive {
		return fmt.Errorf("session is not active: %s", session.Status)
	}

	if err := s.sessionRepo.UpdateStatus(ctx, sessionID, model.SessionStatusAbandoned); err != nil {
		return fmt.Errorf("failed to abandon session: %w", err)
	}

	s.logger.Info("questionnaire session abandoned", zap.String("session_id", sessionID))
	return nil
}

// activeSession loads a session and verifies it can still accept
// operations. Sessions idle past the timeout are marked abandoned.
func (s *SessionService) activeSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Status != model.SessionStatusActive {
		return nil, fmt.Errorf("session is not active: %s", session.Status)
	}

	if time.Since(session.UpdatedAt) > s.sessionTimeout {
		s.logger.Warn("session timed out", zap.String("session_id", sessionID))
		if err := s.sessionRepo.UpdateStatus(ctx, sessionID, model.SessionStatusAbandoned); err != nil {
			s.logger.Error("failed to abandon timed out session", zap.Error(err))
		}
		return nil, fmt.Errorf("session has expired")
	}

	return session, nil
}

// currentQuestion resolves the cursor to a question the user can see.
// When an answer hides the cursor's own question, the next visible one
// stands in.
func (s *SessionService) currentQuestion(engine *questionnaire.Engine, idx int) *questionnaire.Question {
	all := engine.AllQuestions()
	if idx >= 0 && idx < len(all) && engine.ShouldShow(all[idx]) {
		q := all[idx]
		return &q
	}
	next, _ := engine.NextVisible(idx)
	return next
}

func (s *SessionService) archiveSession(
	ctx context.Context,
	session *model.Session,
	definition *model.Questionnaire,
	entries []questionnaire.ResponseEntry,
	summary questionnaire.Summary,
	completedAt time.Time,
) *string {
	archive := sessionArchive{
		SessionID:       session.ID,
		UserID:          session.UserID,
		QuestionnaireID: session.QuestionnaireID,
		Title:           definition.Title,
		CompletedAt:     completedAt,
		Responses:       entries,
		Summary:         summary,
	}

	payload, err := json.Marshal(archive)
	if err != nil {
		s.logger.Error("failed to encode session archive",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return nil
	}

	path, err := s.blobStore.UploadArchive(ctx, session.ID, payload)
	if err != nil {
		s.logger.Error("failed to upload session archive",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return nil
	}

	return &path
}

func (s *SessionService) requestCoaching(ctx context.Context, definition *model.Questionnaire, engine *questionnaire.Engine) *ai.Coaching {
	var answers []ai.AnsweredQuestion
	for _, entry := range engine.ResponseArray() {
		q := definition.Config.Question(entry.QuestionID)
		if q == nil || entry.Value.IsEmpty() {
			continue
		}
		answers = append(answers, ai.AnsweredQuestion{
			Question: q.Text,
			Answer:   entry.Value.Display(),
		})
	}

	if len(answers) == 0 {
		return nil
	}

	coaching, err := s.coach.Coach(ctx, ai.CoachRequest{
		QuestionnaireTitle: definition.Title,
		Answers:            answers,
	})
	if err != nil {
		s.logger.Warn("failed to generate coaching note",
			zap.String("questionnaire_id", definition.ID),
			zap.Error(err),
		)
		return nil
	}

	return coaching
}
