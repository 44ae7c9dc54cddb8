package questionnaire

import "time"

// Engine evaluates a questionnaire configuration against the caller's
// response map. It holds only the (config, responses) pair and derives
// visibility, validation, and completion freshly on every call, so any
// query repeated against unchanged inputs returns identical results.
type Engine struct {
	cfg        *Config
	responses  Responses
	predicates *PredicateRegistry
	updatedAt  time.Time
}

// NewEngine creates an engine for the given configuration with an empty
// response map. predicates may be nil when no custom rules are in play.
func NewEngine(cfg *Config, predicates *PredicateRegistry) *Engine {
	return &Engine{
		cfg:        cfg,
		responses:  Responses{},
		predicates: predicates,
	}
}

// SetResponses replaces the engine's view of the answers wholesale. The
// previous map is left untouched. The replacement instant becomes the
// timestamp on every entry of subsequent ResponseArray exports.
func (e *Engine) SetResponses(r Responses) {
	e.responses = r
	e.updatedAt = time.Now().UTC()
}

// Config returns the configuration the engine evaluates.
func (e *Engine) Config() *Config { return e.cfg }

// AllQuestions returns the flattened question list in section order.
func (e *Engine) AllQuestions() []Question {
	return e.cfg.Flatten()
}

// VisibleQuestions filters the flattened list through the visibility
// rules, preserving order.
func (e *Engine) VisibleQuestions() []Question {
	var visible []Question
	for _, q := range e.AllQuestions() {
		if e.ShouldShow(q) {
			visible = append(visible, q)
		}
	}
	return visible
}

// ShouldShow reports whether the question is currently displayable
// given the answers on hand.
func (e *Engine) ShouldShow(q Question) bool {
	return evalConditions(q.ShowIf, e.responses)
}

// NextVisible scans forward from current (exclusive) through the full
// flattened list and returns the first visible question together with
// its full-list index. Pass -1 to find the first visible question.
// Returns (nil, -1) when none remain. Indexes are always positions in
// the full list so they stay stable as answers flip visibility.
func (e *Engine) NextVisible(current int) (*Question, int) {
	all := e.AllQuestions()
	for i := current + 1; i < len(all); i++ {
		if e.ShouldShow(all[i]) {
			return &all[i], i
		}
	}
	return nil, -1
}

// PrevVisible scans backward from current (exclusive) and returns the
// nearest earlier visible question with its full-list index, or
// (nil, -1) when none precedes it.
func (e *Engine) PrevVisible(current int) (*Question, int) {
	all := e.AllQuestions()
	if current > len(all) {
		current = len(all)
	}
	for i := current - 1; i >= 0; i-- {
		if e.ShouldShow(all[i]) {
			return &all[i], i
		}
	}
	return nil, -1
}

// Evaluation is the outcome of running the full pipeline once.
type Evaluation struct {
	Visible    []Question        `json:"visible"`
	Errors     map[string]string `json:"errors"`
	Completion int               `json:"completion"`
	IsComplete bool              `json:"is_complete"`
}

// Evaluate runs visibility, validation, and completion as a pure
// function of the two inputs, with no retained state and no custom
// predicates.
func Evaluate(cfg *Config, responses Responses) Evaluation {
	e := &Engine{cfg: cfg, responses: responses}
	s := e.Summary()
	return Evaluation{
		Visible:    e.VisibleQuestions(),
		Errors:     s.Errors,
		Completion: s.CompletionPercent,
		IsComplete: s.IsComplete,
	}
}
