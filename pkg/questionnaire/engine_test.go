package questionnaire

import "testing"

// recoveryCheckInConfig is the fixture most engine tests run against: a
// post-operative check-in with two branching chains (pain and exercise).
func recoveryCheckInConfig() *Config {
	return &Config{
		ID:    "post_op_check_in",
		Title: "Post-op check-in",
		Sections: []Section{
			{
				ID:    "pain",
				Title: "Pain",
				Questions: []Question{
					{
						ID:       "pain_now",
						Type:     TypePainScale,
						Text:     "How bad is your pain right now?",
						Required: true,
						Scale:    &ScaleBounds{Min: 0, Max: 10, MinLabel: "No pain", MaxLabel: "Worst imaginable"},
					},
					{
						ID:       "pain_location",
						Type:     TypeBodyMap,
						Text:     "Where does it hurt?",
						Required: true,
						Options: []Option{
							{Value: StringValue("knee"), Label: "Knee"},
							{Value: StringValue("hip"), Label: "Hip"},
							{Value: StringValue("shoulder"), Label: "Shoulder"},
							{Value: StringValue("back"), Label: "Back"},
						},
						ShowIf: []Condition{
							{DependsOn: "pain_now", Operator: OpGreaterThan, Value: NumberValue(0), Action: ActionShow},
						},
					},
					{
						ID:   "pain_description",
						Type: TypeText,
						Text: "Tell us more about the joint pain",
						Rules: []Rule{
							{Type: RuleMinLength, Limit: 3, Message: "Please say a little more"},
						},
						ShowIf: []Condition{
							{DependsOn: "pain_location", Operator: OpInArray, Value: ListValue(StringValue("knee"), StringValue("hip"))},
						},
					},
				},
			},
			{
				ID:    "exercise",
				Title: "Exercise",
				Questions: []Question{
					{
						ID:       "did_exercises",
						Type:     TypeBoolean,
						Text:     "Did you do your exercises today?",
						Required: true,
					},
					{
						ID:   "exercise_count",
						Type: TypeNumber,
						Text: "How many sets did you finish?",
						Rules: []Rule{
							{Type: RuleMinValue, Limit: 0, Message: "Sets cannot be negative"},
							{Type: RuleMaxValue, Limit: 20, Message: "That is more sets than the plan contains"},
						},
						ShowIf: []Condition{
							{DependsOn: "did_exercises", Operator: OpEquals, Value: BoolValue(true)},
						},
					},
					{
						ID:   "skip_reason",
						Type: TypeText,
						Text: "What got in the way?",
						ShowIf: []Condition{
							{DependsOn: "did_exercises", Operator: OpEquals, Value: BoolValue(false)},
						},
					},
				},
			},
		},
		Settings: Settings{AllowBack: true, ShowProgress: true, AutoSave: true},
	}
}

func visibleIDs(e *Engine) []string {
	var ids []string
	for _, q := range e.VisibleQuestions() {
		ids = append(ids, q.ID)
	}
	return ids
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestEngine_AllQuestionsFlattensSections(t *testing.T) {
	e := NewEngine(recoveryCheckInConfig(), nil)

	all := e.AllQuestions()
	if len(all) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(all))
	}
	if all[0].ID != "pain_now" || all[3].ID != "did_exercises" || all[5].ID != "skip_reason" {
		t.Errorf("flattened order is wrong: %v", visibleIDs(e))
	}
}

func TestEngine_VisibleQuestionsFollowAnswers(t *testing.T) {
	e := NewEngine(recoveryCheckInConfig(), nil)

	// Nothing answered: only unconditional questions show.
	if got := visibleIDs(e); !equalIDs(got, []string{"pain_now", "did_exercises"}) {
		t.Errorf("initial visible = %v", got)
	}

	// Pain reported: the body map opens up.
	e.SetResponses(Responses{"pain_now": NumberValue(4)})
	if got := visibleIDs(e); !equalIDs(got, []string{"pain_now", "pain_location", "did_exercises"}) {
		t.Errorf("after pain answer, visible = %v", got)
	}

	// Knee selected: the description follows; exercise branch still closed.
	e.SetResponses(Responses{
		"pain_now":      NumberValue(4),
		"pain_location": StringValue("knee"),
	})
	if got := visibleIDs(e); !equalIDs(got, []string{"pain_now", "pain_location", "pain_description", "did_exercises"}) {
		t.Errorf("after location answer, visible = %v", got)
	}

	// Dropping pain to zero closes the whole pain chain even though the
	// location answer is still in the map.
	e.SetResponses(Responses{
		"pain_now":      NumberValue(0),
		"pain_location": StringValue("knee"),
	})
	if got := visibleIDs(e); !equalIDs(got, []string{"pain_now", "did_exercises"}) {
		t.Errorf("after pain drop, visible = %v", got)
	}
}

func TestEngine_BooleanGate(t *testing.T) {
	// Q2 shows iff Q1 is answered true.
	cfg := &Config{
		ID: "gate",
		Sections: []Section{{
			ID: "s1",
			Questions: []Question{
				{ID: "q1", Type: TypeBoolean, Text: "Gate", Required: true},
				{ID: "q2", Type: TypeText, Text: "Detail", ShowIf: []Condition{
					{DependsOn: "q1", Operator: OpEquals, Value: BoolValue(true)},
				}},
			},
		}},
	}
	e := NewEngine(cfg, nil)

	if got := visibleIDs(e); !equalIDs(got, []string{"q1"}) {
		t.Errorf("with no answers, visible = %v, want [q1]", got)
	}

	e.SetResponses(Responses{"q1": BoolValue(true)})
	if got := visibleIDs(e); !equalIDs(got, []string{"q1", "q2"}) {
		t.Errorf("with q1=true, visible = %v, want [q1 q2]", got)
	}

	e.SetResponses(Responses{"q1": BoolValue(false)})
	if got := visibleIDs(e); !equalIDs(got, []string{"q1"}) {
		t.Errorf("with q1=false, visible = %v, want [q1]", got)
	}
}

func TestEngine_NextVisibleSkipsHidden(t *testing.T) {
	e := NewEngine(recoveryCheckInConfig(), nil)
	e.SetResponses(Responses{"pain_now": NumberValue(0)})

	q, idx := e.NextVisible(-1)
	if q == nil || q.ID != "pain_now" || idx != 0 {
		t.Fatalf("first visible = %v at %d, want pain_now at 0", q, idx)
	}

	// pain_location (1) and pain_description (2) are hidden at zero pain.
	q, idx = e.NextVisible(idx)
	if q == nil || q.ID != "did_exercises" || idx != 3 {
		t.Fatalf("next visible = %v at %d, want did_exercises at 3", q, idx)
	}

	q, idx = e.NextVisible(idx)
	if q != nil || idx != -1 {
		t.Fatalf("expected end of questionnaire, got %v at %d", q, idx)
	}
}

func TestEngine_PrevVisibleSkipsHidden(t *testing.T) {
	e := NewEngine(recoveryCheckInConfig(), nil)
	e.SetResponses(Responses{"pain_now": NumberValue(0)})

	q, idx := e.PrevVisible(3)
	if q == nil || q.ID != "pain_now" || idx != 0 {
		t.Fatalf("previous visible from 3 = %v at %d, want pain_now at 0", q, idx)
	}

	q, idx = e.PrevVisible(0)
	if q != nil || idx != -1 {
		t.Fatalf("expected no question before index 0, got %v at %d", q, idx)
	}

	// Out-of-range starting points are clamped rather than rejected.
	q, _ = e.PrevVisible(99)
	if q == nil || q.ID != "did_exercises" {
		t.Fatalf("previous visible from past the end = %v, want did_exercises", q)
	}
}

func TestEngine_IndexesStayStableAcrossVisibilityChanges(t *testing.T) {
	e := NewEngine(recoveryCheckInConfig(), nil)

	e.SetResponses(Responses{"pain_now": NumberValue(4)})
	q, idx := e.NextVisible(0)
	if q == nil || q.ID != "pain_location" || idx != 1 {
		t.Fatalf("next from 0 = %v at %d, want pain_location at 1", q, idx)
	}

	// Opening the exercise branch must not renumber the pain questions.
	e.SetResponses(Responses{
		"pain_now":      NumberValue(4),
		"did_exercises": BoolValue(true),
	})
	q, idx = e.NextVisible(0)
	if q == nil || q.ID != "pain_location" || idx != 1 {
		t.Fatalf("after branch change, next from 0 = %v at %d, want pain_location at 1", q, idx)
	}
}

func TestEvaluate_PureFunction(t *testing.T) {
	cfg := recoveryCheckInConfig()
	responses := Responses{
		"pain_now":       NumberValue(0),
		"did_exercises":  BoolValue(true),
		"exercise_count": NumberValue(3),
	}

	ev := Evaluate(cfg, responses)
	if len(ev.Visible) != 3 {
		t.Errorf("visible count = %d, want 3", len(ev.Visible))
	}
	if len(ev.Errors) != 0 {
		t.Errorf("errors = %v, want none", ev.Errors)
	}
	if ev.Completion != 100 {
		t.Errorf("completion = %d, want 100", ev.Completion)
	}
	if !ev.IsComplete {
		t.Error("session should be complete")
	}
}
