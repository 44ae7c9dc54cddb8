package questionnaire

// QuestionType enumerates the supported question widgets.
type QuestionType string

const (
	TypeSingleChoice QuestionType = "single_choice"
	TypeMultiChoice  QuestionType = "multi_choice"
	TypeScale        QuestionType = "scale"
	TypePainScale    QuestionType = "pain_scale"
	TypeText         QuestionType = "text"
	TypeNumber       QuestionType = "number"
	TypeBodyMap      QuestionType = "body_map"
	TypeBoolean      QuestionType = "boolean"
	TypeDemographics QuestionType = "demographics"
)

// ConditionOp enumerates the comparison operators a condition may use.
type ConditionOp string

const (
	OpEquals      ConditionOp = "equals"
	OpNotEquals   ConditionOp = "not_equals"
	OpGreaterThan ConditionOp = "greater_than"
	OpLessThan    ConditionOp = "less_than"
	OpContains    ConditionOp = "contains"
	OpInArray     ConditionOp = "in_array"
)

// ConditionAction enumerates what a satisfied condition does. Only
// ActionShow participates in visibility today; the others parse and
// validate so configs may already declare them.
type ConditionAction string

const (
	ActionShow    ConditionAction = "show"
	ActionHide    ConditionAction = "hide"
	ActionSkip    ConditionAction = "skip"
	ActionRequire ConditionAction = "require"
)

// RuleType enumerates the validation rule kinds.
type RuleType string

const (
	RuleRequired  RuleType = "required"
	RuleMinLength RuleType = "min_length"
	RuleMaxLength RuleType = "max_length"
	RuleMinValue  RuleType = "min_value"
	RuleMaxValue  RuleType = "max_value"
	RuleEmail     RuleType = "email"
	RuleCustom    RuleType = "custom"
)

// Condition gates a question's visibility on another question's answer.
type Condition struct {
	DependsOn string          `json:"depends_on"`
	Operator  ConditionOp     `json:"condition"`
	Value     Value           `json:"value"`
	Action    ConditionAction `json:"action,omitempty"`
}

// Rule is a declarative validation check attached to a question. Limit
// carries the threshold for length and value rules; Predicate names a
// registry entry for custom rules.
type Rule struct {
	Type      RuleType `json:"type"`
	Limit     float64  `json:"value,omitempty"`
	Message   string   `json:"message"`
	Predicate string   `json:"predicate,omitempty"`
}

// Option is a selectable answer for choice questions.
type Option struct {
	Value Value  `json:"value"`
	Label string `json:"label"`
}

// ScaleBounds bounds a scale or pain-scale question.
type ScaleBounds struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	MinLabel string  `json:"min_label,omitempty"`
	MaxLabel string  `json:"max_label,omitempty"`
}

// Question is a single questionnaire item.
type Question struct {
	ID       string         `json:"id"`
	Type     QuestionType   `json:"type"`
	Text     string         `json:"text"`
	Required bool           `json:"required,omitempty"`
	Options  []Option       `json:"options,omitempty"`
	Scale    *ScaleBounds   `json:"scale,omitempty"`
	Rules    []Rule         `json:"rules,omitempty"`
	ShowIf   []Condition    `json:"show_if,omitempty"`
	Default  *Value         `json:"default,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Section groups consecutive questions under a heading.
type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Settings carries questionnaire-wide behavior flags.
type Settings struct {
	AllowBack         bool   `json:"allow_back"`
	ShowProgress      bool   `json:"show_progress"`
	AutoSave          bool   `json:"auto_save"`
	CompletionMessage string `json:"completion_message,omitempty"`
}

// Config is the ordered, sectioned definition of a questionnaire. It is
// immutable for the engine's purposes once loaded.
type Config struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Sections []Section      `json:"sections"`
	Settings Settings       `json:"settings"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Responses maps question IDs to their current answers. The map is
// owned by the caller; the engine only ever replaces its reference.
type Responses map[string]Value

// Flatten returns every question in section order.
func (c *Config) Flatten() []Question {
	var all []Question
	for _, s := range c.Sections {
		all = append(all, s.Questions...)
	}
	return all
}

// Question returns the question with the given ID, or nil.
func (c *Config) Question(id string) *Question {
	for si := range c.Sections {
		qs := c.Sections[si].Questions
		for qi := range qs {
			if qs[qi].ID == id {
				return &qs[qi]
			}
		}
	}
	return nil
}
