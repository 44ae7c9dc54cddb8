package questionnaire

import (
	"regexp"
	"unicode/utf8"
)

// RequiredMessage is returned for an empty answer to a required
// question. The check runs before the question's own rule list and its
// wording is fixed.
const RequiredMessage = "This question is required"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Predicate is a custom check referenced by name from RuleCustom rules.
type Predicate func(Value) bool

// PredicateRegistry resolves the predicate names custom rules carry,
// keeping configurations data-only and serializable.
type PredicateRegistry struct {
	preds map[string]Predicate
}

// NewPredicateRegistry returns an empty registry.
func NewPredicateRegistry() *PredicateRegistry {
	return &PredicateRegistry{preds: map[string]Predicate{}}
}

// Register installs a predicate under the given name, replacing any
// previous entry.
func (r *PredicateRegistry) Register(name string, p Predicate) {
	r.preds[name] = p
}

// Get returns the predicate registered under name. A nil registry
// resolves nothing.
func (r *PredicateRegistry) Get(name string) (Predicate, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.preds[name]
	return p, ok
}

// ValidateResponse checks a candidate value for one question and
// returns the failure message, or "" when the value is acceptable.
// Hidden and unknown questions always pass: they are never required.
func (e *Engine) ValidateResponse(questionID string, v Value) string {
	q := e.cfg.Question(questionID)
	if q == nil || !e.ShouldShow(*q) {
		return ""
	}
	if q.Required && v.IsEmpty() {
		return RequiredMessage
	}
	for _, rule := range q.Rules {
		if msg := e.evalRule(rule, v); msg != "" {
			return msg
		}
	}
	return ""
}

// ValidateAll validates the stored answer of every visible question and
// returns the failures keyed by question ID.
func (e *Engine) ValidateAll() map[string]string {
	errs := map[string]string{}
	for _, q := range e.VisibleQuestions() {
		if msg := e.ValidateResponse(q.ID, e.responses[q.ID]); msg != "" {
			errs[q.ID] = msg
		}
	}
	return errs
}

// evalRule applies one rule and returns its message on failure. Length
// rules only ever fail strings and bound rules only ever fail numbers;
// values outside a rule's type pass it. Unknown rule types never fail.
func (e *Engine) evalRule(rule Rule, v Value) string {
	switch rule.Type {
	case RuleRequired:
		if requiredRuleFails(v) {
			return rule.Message
		}
	case RuleMinLength:
		if s, ok := v.AsString(); ok && utf8.RuneCountInString(s) < int(rule.Limit) {
			return rule.Message
		}
	case RuleMaxLength:
		if s, ok := v.AsString(); ok && utf8.RuneCountInString(s) > int(rule.Limit) {
			return rule.Message
		}
	case RuleMinValue:
		if n, ok := v.AsNumber(); ok && n < rule.Limit {
			return rule.Message
		}
	case RuleMaxValue:
		if n, ok := v.AsNumber(); ok && n > rule.Limit {
			return rule.Message
		}
	case RuleEmail:
		if s, ok := v.AsString(); ok && !emailPattern.MatchString(s) {
			return rule.Message
		}
	case RuleCustom:
		if p, ok := e.predicates.Get(rule.Predicate); ok && !p(v) {
			return rule.Message
		}
	}
	return ""
}

// requiredRuleFails implements the required rule's falsiness contract:
// absent, the empty string, and false fail; the number 0, lists, and
// bundles pass.
func requiredRuleFails(v Value) bool {
	switch v.Kind() {
	case KindInvalid:
		return true
	case KindString:
		s, _ := v.AsString()
		return s == ""
	case KindBool:
		b, _ := v.AsBool()
		return !b
	default:
		return false
	}
}
