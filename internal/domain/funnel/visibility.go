package funnel

// QuestionVisible evaluates a question's ShowIf condition against the live
// answer map. Policy is fail-open: no condition, or a referenced field that
// has not been answered yet, means visible. NotIn is checked before In.
// Only single-select values participate in membership checks; a multi-select
// answer on the referenced field counts as unanswered.
func QuestionVisible(q Question, answers map[string]AnswerValue) bool {
	if q.ShowIf == nil {
		return true
	}

	ref, ok := answers[q.ShowIf.Field]
	if !ok || ref.Kind == AnswerMulti || ref.Text == "" {
		return true
	}

	if len(q.ShowIf.NotIn) > 0 && contains(q.ShowIf.NotIn, ref.Text) {
		return false
	}
	if len(q.ShowIf.In) > 0 && !contains(q.ShowIf.In, ref.Text) {
		return false
	}
	return true
}

// VisibleQuestions filters a step's sub-questions down to the currently
// visible ones. Re-evaluated on every read, so changing an earlier answer
// within the same step reveals or hides later questions immediately.
func VisibleQuestions(s Step, answers map[string]AnswerValue) []Question {
	out := make([]Question, 0, len(s.Questions))
	for _, q := range s.Questions {
		if QuestionVisible(q, answers) {
			out = append(out, q)
		}
	}
	return out
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
