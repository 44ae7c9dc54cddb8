package questionnaire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ParseConfig decodes a questionnaire definition from its JSON
// authoring format. The result is not yet validated; call Validate
// before serving it.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse questionnaire config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for authoring mistakes the runtime
// would otherwise tolerate silently: duplicate or empty IDs, conditions
// referencing unknown questions or the question itself, dependency
// cycles, enum values outside the supported vocabulary, and malformed
// choice or scale questions. All problems found are reported together.
func (c *Config) Validate() error {
	var errs []error

	ids := map[string]bool{}
	for _, q := range c.Flatten() {
		if q.ID == "" {
			errs = append(errs, errors.New("question with empty id"))
			continue
		}
		if ids[q.ID] {
			errs = append(errs, fmt.Errorf("duplicate question id %q", q.ID))
		}
		ids[q.ID] = true
	}

	for _, q := range c.Flatten() {
		errs = append(errs, c.validateQuestion(q, ids)...)
	}

	errs = append(errs, c.findCycles()...)

	return errors.Join(errs...)
}

// DefaultResponses builds a response map from the declared question
// defaults.
func (c *Config) DefaultResponses() Responses {
	r := Responses{}
	for _, q := range c.Flatten() {
		if q.Default != nil && !q.Default.IsZero() {
			r[q.ID] = *q.Default
		}
	}
	return r
}

func (c *Config) validateQuestion(q Question, ids map[string]bool) []error {
	var errs []error

	if !knownQuestionType(q.Type) {
		errs = append(errs, fmt.Errorf("question %q: unknown type %q", q.ID, q.Type))
	}
	switch q.Type {
	case TypeSingleChoice, TypeMultiChoice, TypeBodyMap:
		if len(q.Options) == 0 {
			errs = append(errs, fmt.Errorf("question %q: %s without options", q.ID, q.Type))
		}
	case TypeScale, TypePainScale:
		if q.Scale == nil {
			errs = append(errs, fmt.Errorf("question %q: %s without scale bounds", q.ID, q.Type))
		} else if q.Scale.Min > q.Scale.Max {
			errs = append(errs, fmt.Errorf("question %q: scale min %v above max %v", q.ID, q.Scale.Min, q.Scale.Max))
		}
	}

	for _, cond := range q.ShowIf {
		if cond.DependsOn == "" || !ids[cond.DependsOn] {
			errs = append(errs, fmt.Errorf("question %q: depends on unknown question %q", q.ID, cond.DependsOn))
		} else if cond.DependsOn == q.ID {
			errs = append(errs, fmt.Errorf("question %q: depends on itself", q.ID))
		}
		if !knownConditionOp(cond.Operator) {
			errs = append(errs, fmt.Errorf("question %q: unknown condition %q", q.ID, cond.Operator))
		}
		if cond.Action != "" && !knownConditionAction(cond.Action) {
			errs = append(errs, fmt.Errorf("question %q: unknown action %q", q.ID, cond.Action))
		}
	}

	for _, rule := range q.Rules {
		if !knownRuleType(rule.Type) {
			errs = append(errs, fmt.Errorf("question %q: unknown rule type %q", q.ID, rule.Type))
		}
		if rule.Type == RuleCustom && rule.Predicate == "" {
			errs = append(errs, fmt.Errorf("question %q: custom rule without predicate name", q.ID))
		}
	}

	return errs
}

// findCycles walks the depends_on graph. Forward references are legal
// because evaluation is order-independent; cycles are not.
func (c *Config) findCycles() []error {
	deps := map[string][]string{}
	var order []string
	for _, q := range c.Flatten() {
		order = append(order, q.ID)
		for _, cond := range q.ShowIf {
			deps[q.ID] = append(deps[q.ID], cond.DependsOn)
		}
	}

	const (
		unseen = iota
		visiting
		done
	)
	state := map[string]int{}
	var errs []error

	var visit func(id string)
	visit = func(id string) {
		switch state[id] {
		case visiting:
			errs = append(errs, fmt.Errorf("dependency cycle involving question %q", id))
			return
		case done:
			return
		}
		state[id] = visiting
		for _, dep := range deps[id] {
			visit(dep)
		}
		state[id] = done
	}

	for _, id := range order {
		if state[id] == unseen {
			visit(id)
		}
	}
	return errs
}

func knownQuestionType(t QuestionType) bool {
	switch t {
	case TypeSingleChoice, TypeMultiChoice, TypeScale, TypePainScale,
		TypeText, TypeNumber, TypeBodyMap, TypeBoolean, TypeDemographics:
		return true
	}
	return false
}

func knownConditionOp(op ConditionOp) bool {
	switch op {
	case OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpContains, OpInArray:
		return true
	}
	return false
}

func knownConditionAction(a ConditionAction) bool {
	switch a {
	case ActionShow, ActionHide, ActionSkip, ActionRequire:
		return true
	}
	return false
}

func knownRuleType(t RuleType) bool {
	switch t {
	case RuleRequired, RuleMinLength, RuleMaxLength, RuleMinValue,
		RuleMaxValue, RuleEmail, RuleCustom:
		return true
	}
	return false
}
