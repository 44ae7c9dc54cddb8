package questionnaire

import (
	"math"
	"time"
)

// Summary aggregates the session's progress and validation state.
type Summary struct {
	TotalQuestions    int               `json:"total_questions"`
	VisibleQuestions  int               `json:"visible_questions"`
	AnsweredQuestions int               `json:"answered_questions"`
	CompletionPercent int               `json:"completion_percent"`
	IsComplete        bool              `json:"is_complete"`
	Errors            map[string]string `json:"errors"`
}

// ResponseEntry is one row of the canonical export shape handed to
// persistence.
type ResponseEntry struct {
	QuestionID string    `json:"question_id"`
	Value      Value     `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// CompletionPercent returns the share of visible questions holding a
// non-empty answer, rounded to the nearest integer. An empty visible
// set is vacuously complete.
func (e *Engine) CompletionPercent() int {
	visible := e.VisibleQuestions()
	if len(visible) == 0 {
		return 100
	}
	return int(math.Round(100 * float64(e.answeredCount(visible)) / float64(len(visible))))
}

// Summary returns the counts, percentage, completeness flag, and error
// map for the current responses. The session is complete when every
// visible question is answered and nothing fails validation.
func (e *Engine) Summary() Summary {
	visible := e.VisibleQuestions()
	answered := e.answeredCount(visible)
	percent := 100
	if len(visible) > 0 {
		percent = int(math.Round(100 * float64(answered) / float64(len(visible))))
	}
	errs := e.ValidateAll()
	return Summary{
		TotalQuestions:    len(e.AllQuestions()),
		VisibleQuestions:  len(visible),
		AnsweredQuestions: answered,
		CompletionPercent: percent,
		IsComplete:        len(errs) == 0 && percent == 100,
		Errors:            errs,
	}
}

// ResponseArray exports the stored answers of currently visible
// questions in question order. Answers orphaned by a closed branch stay
// in the response map but are dropped from the export.
func (e *Engine) ResponseArray() []ResponseEntry {
	var out []ResponseEntry
	for _, q := range e.AllQuestions() {
		v, ok := e.responses[q.ID]
		if !ok || !e.ShouldShow(q) {
			continue
		}
		out = append(out, ResponseEntry{
			QuestionID: q.ID,
			Value:      v,
			Timestamp:  e.updatedAt,
		})
	}
	return out
}

func (e *Engine) answeredCount(visible []Question) int {
	answered := 0
	for _, q := range visible {
		if !e.responses[q.ID].IsEmpty() {
			answered++
		}
	}
	return answered
}
