package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionVisible_NoCondition(t *testing.T) {
	q := Question{Field: "budget"}

	assert.True(t, QuestionVisible(q, map[string]AnswerValue{}))
}

func TestQuestionVisible_UnansweredReference(t *testing.T) {
	q := Question{
		Field:  "budget",
		ShowIf: &ShowIf{Field: "timeline", NotIn: []string{"research"}},
	}

	// Fail-open: nothing answered yet.
	assert.True(t, QuestionVisible(q, map[string]AnswerValue{}))
}

func TestQuestionVisible_NotIn(t *testing.T) {
	q := Question{
		Field:  "budget",
		ShowIf: &ShowIf{Field: "timeline", NotIn: []string{"research"}},
	}

	answers := map[string]AnswerValue{"timeline": ChoiceAnswer("research")}
	assert.False(t, QuestionVisible(q, answers))

	// Navigating back and changing the earlier answer reveals it again.
	answers["timeline"] = ChoiceAnswer("asap")
	assert.True(t, QuestionVisible(q, answers))
}

func TestQuestionVisible_In(t *testing.T) {
	q := Question{
		Field:  "wallboxPower",
		ShowIf: &ShowIf{Field: "projectType", In: []string{"wallbox"}},
	}

	assert.True(t, QuestionVisible(q, map[string]AnswerValue{"projectType": ChoiceAnswer("wallbox")}))
	assert.False(t, QuestionVisible(q, map[string]AnswerValue{"projectType": ChoiceAnswer("neubau")}))
}

func TestQuestionVisible_NotInBeforeIn(t *testing.T) {
	// Both set: notIn wins when it matches, in applies otherwise.
	q := Question{
		Field: "q",
		ShowIf: &ShowIf{
			Field: "ref",
			NotIn: []string{"blocked"},
			In:    []string{"blocked", "allowed"},
		},
	}

	assert.False(t, QuestionVisible(q, map[string]AnswerValue{"ref": ChoiceAnswer("blocked")}))
	assert.True(t, QuestionVisible(q, map[string]AnswerValue{"ref": ChoiceAnswer("allowed")}))
	assert.False(t, QuestionVisible(q, map[string]AnswerValue{"ref": ChoiceAnswer("other")}))
}

func TestQuestionVisible_MultiAnswerIsUnanswered(t *testing.T) {
	q := Question{
		Field:  "q",
		ShowIf: &ShowIf{Field: "services", NotIn: []string{"pv"}},
	}

	answers := map[string]AnswerValue{"services": MultiAnswer([]string{"pv"})}
	assert.True(t, QuestionVisible(q, answers))
}

func TestVisibleQuestions_FiltersLive(t *testing.T) {
	step := Step{
		Type: StepTwoQuestions,
		Questions: []Question{
			{Field: "timeline"},
			{Field: "budget", ShowIf: &ShowIf{Field: "timeline", NotIn: []string{"research"}}},
		},
	}

	vis := VisibleQuestions(step, map[string]AnswerValue{"timeline": ChoiceAnswer("research")})
	assert.Len(t, vis, 1)
	assert.Equal(t, "timeline", vis[0].Field)

	vis = VisibleQuestions(step, map[string]AnswerValue{"timeline": ChoiceAnswer("asap")})
	assert.Len(t, vis, 2)
}
