package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

// Coaching represents the normalized coaching text for a completed session
type Coaching struct {
	Summary string   `json:"summary"`
	Tips    []string `json:"tips"`
	Tone    string   `json:"tone"` // encouraging, steady, cautionary
}

// AnsweredQuestion is one question/answer pair the prompt is built from
type AnsweredQuestion struct {
	Question string
	Answer   string
}

// CoachRequest carries the material for one coaching note
type CoachRequest struct {
	QuestionnaireTitle string
	Answers            []AnsweredQuestion
}

// CoachClient produces coaching text for completed questionnaire sessions
type CoachClient interface {
	Coach(ctx context.Context, req CoachRequest) (*Coaching, error)
}

// Ensure both implementations satisfy CoachClient
var _ CoachClient = (*OpenAICoach)(nil)
var _ CoachClient = (*DisabledCoach)(nil)

// OpenAICoach generates coaching notes with the OpenAI API
type OpenAICoach struct {
	client *Client
	logger *zap.Logger
}

// NewOpenAICoach creates a new OpenAI-backed coach
func NewOpenAICoach(client *Client, logger *zap.Logger) *OpenAICoach {
	return &OpenAICoach{
		client: client,
		logger: logger,
	}
}

// Coach builds a prompt from the session's answers and asks the model
// for a short coaching note
func (c *OpenAICoach) Coach(ctx context.Context, req CoachRequest) (*Coaching, error) {
	c.logger.Info("requesting coaching note",
		zap.String("questionnaire", req.QuestionnaireTitle),
		zap.Int("answer_count", len(req.Answers)),
	)

	prompt := c.buildCoachPrompt(req)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(prompt),
		openai.UserMessage("Write the coaching note for the answers above and return it as JSON."),
	}

	response, err := c.client.Complete(ctx, messages)
	if err != nil {
		c.logger.Error("coaching request failed", zap.Error(err))
		return nil, fmt.Errorf("coaching request failed: %w", err)
	}

	coaching, err := c.parseCoachResponse(response)
	if err != nil {
		c.logger.Error("failed to parse coaching response",
			zap.Error(err),
			zap.String("response", response),
		)
		return nil, fmt.Errorf("failed to parse coaching response: %w", err)
	}

	c.logger.Info("coaching note generated",
		zap.String("tone", coaching.Tone),
		zap.Int("tip_count", len(coaching.Tips)),
	)

	return coaching, nil
}

// buildCoachPrompt creates the system prompt for a coaching note
func (c *OpenAICoach) buildCoachPrompt(req CoachRequest) string {
	var answers strings.Builder
	for _, a := range req.Answers {
		answers.WriteString(fmt.Sprintf("Q: %s\nA: %s\n", a.Question, a.Answer))
	}

	return fmt.Sprintf(`You are a supportive recovery coach. A user just completed the "%s" questionnaire in their recovery program. Their answers:

%s
Write a short coaching note and return it as valid JSON:
{
  "summary": "two or three sentences reflecting what their answers say about today",
  "tips": ["up to three short, concrete suggestions for the next day"],
  "tone": "encouraging/steady/cautionary"
}

Rules:
- Be warm and specific to their answers, never generic
- Never diagnose or give medical advice; suggest contacting their clinician when answers look concerning
- Pick "cautionary" tone only when pain or symptoms clearly worsened
- Return ONLY valid JSON, no additional text

Return the JSON now:`, req.QuestionnaireTitle, answers.String())
}

// parseCoachResponse parses the AI response into a Coaching note
func (c *OpenAICoach) parseCoachResponse(response string) (*Coaching, error) {
	// Clean up response - sometimes AI adds markdown code blocks
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var coaching Coaching
	if err := json.Unmarshal([]byte(response), &coaching); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	coaching = c.normalizeCoaching(coaching)

	if coaching.Summary == "" {
		return nil, fmt.Errorf("coaching response missing summary")
	}

	return &coaching, nil
}

// normalizeCoaching validates and normalizes the coaching note
func (c *OpenAICoach) normalizeCoaching(coaching Coaching) Coaching {
	coaching.Summary = strings.TrimSpace(coaching.Summary)

	// Normalize tone
	coaching.Tone = strings.ToLower(strings.TrimSpace(coaching.Tone))
	if coaching.Tone != "encouraging" && coaching.Tone != "steady" && coaching.Tone != "cautionary" {
		c.logger.Warn("invalid tone value, defaulting to steady", zap.String("tone", coaching.Tone))
		coaching.Tone = "steady"
	}

	// Keep at most three tips, dropping empty ones
	var tips []string
	for _, tip := range coaching.Tips {
		tip = strings.TrimSpace(tip)
		if tip == "" {
			continue
		}
		tips = append(tips, tip)
		if len(tips) == 3 {
			break
		}
	}
	if tips == nil {
		tips = []string{}
	}
	coaching.Tips = tips

	return coaching
}

// DisabledCoach returns a fixed note when no AI backend is configured
type DisabledCoach struct {
	logger *zap.Logger
}

// NewDisabledCoach creates a coach that emits a static note
func NewDisabledCoach(logger *zap.Logger) *DisabledCoach {
	return &DisabledCoach{
		logger: logger,
	}
}

// Coach returns a static coaching note
func (c *DisabledCoach) Coach(ctx context.Context, req CoachRequest) (*Coaching, error) {
	c.logger.Info("AI coaching disabled, returning static note",
		zap.String("questionnaire", req.QuestionnaireTitle),
	)

	return &Coaching{
		Summary: "Thanks for completing your check-in. Logging how you feel keeps your recovery plan on track.",
		Tips:    []string{"Keep following your exercise plan", "Check in again tomorrow"},
		Tone:    "steady",
	}, nil
}
