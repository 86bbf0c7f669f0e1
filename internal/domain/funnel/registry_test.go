package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDefinition() *Definition {
	return &Definition{
		ID:      "test-funnel",
		Name:    "Test",
		Scoring: Scoring{Hot: 80, Warm: 50, Potential: 25},
		Steps: []Step{
			{
				ID:    "s1",
				Type:  StepSingleChoice,
				Field: "projectType",
				Options: []Option{
					{ID: "a", Label: "A", Score: 10},
					{ID: "b", Label: "B", Score: 20},
				},
			},
			{
				ID:   "s2",
				Type: StepContact,
				ContactFields: []ContactField{
					{Name: "name", Label: "Name", Kind: InputText, Required: true},
					{Name: "email", Label: "E-Mail", Kind: InputEmail, Required: true, Validate: ValidateEmail},
				},
			},
		},
	}
}

func TestNewRegistry_Valid(t *testing.T) {
	r, err := NewRegistry(validDefinition())
	assert.NoError(t, err)

	d, err := r.Get("test-funnel")
	assert.NoError(t, err)
	assert.Equal(t, "Test", d.Name)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrFunnelNotFound)
}

func TestNewRegistry_DuplicateID(t *testing.T) {
	_, err := NewRegistry(validDefinition(), validDefinition())
	assert.ErrorIs(t, err, ErrDuplicateFunnel)
}

func TestValidate_ThresholdOrder(t *testing.T) {
	d := validDefinition()
	d.Scoring = Scoring{Hot: 40, Warm: 50, Potential: 25}

	assert.ErrorIs(t, d.Validate(), ErrInvalidFunnel)
}

func TestValidate_NegativePotential(t *testing.T) {
	d := validDefinition()
	d.Scoring = Scoring{Hot: 80, Warm: 50, Potential: -1}

	assert.ErrorIs(t, d.Validate(), ErrInvalidFunnel)
}

func TestValidate_ShowIfUnknownField(t *testing.T) {
	d := validDefinition()
	d.Steps = append(d.Steps[:1], Step{
		ID:   "tq",
		Type: StepTwoQuestions,
		Questions: []Question{
			{Field: "timeline", Options: []Option{{ID: "x", Label: "X"}}},
			{
				Field:   "budget",
				Options: []Option{{ID: "y", Label: "Y"}},
				ShowIf:  &ShowIf{Field: "doesNotExist", NotIn: []string{"x"}},
			},
		},
	}, d.Steps[1])

	assert.ErrorIs(t, d.Validate(), ErrInvalidFunnel)
}

func TestValidate_TwoQuestionsArity(t *testing.T) {
	d := validDefinition()
	d.Steps = append(d.Steps[:1], Step{
		ID:        "tq",
		Type:      StepTwoQuestions,
		Questions: []Question{{Field: "only", Options: []Option{{ID: "x", Label: "X"}}}},
	}, d.Steps[1])

	assert.ErrorIs(t, d.Validate(), ErrInvalidFunnel)
}

func TestValidate_NoSteps(t *testing.T) {
	d := validDefinition()
	d.Steps = nil

	assert.ErrorIs(t, d.Validate(), ErrInvalidFunnel)
}

func TestDefaults_AreValid(t *testing.T) {
	_, err := NewRegistry(Defaults()...)
	assert.NoError(t, err)
}

func TestStep_FindOption(t *testing.T) {
	step := Step{
		Type:  StepSingleChoice,
		Field: "projectType",
		Options: []Option{
			{ID: "neubau", Label: "Neubau", Score: 30},
		},
	}

	o, ok := step.FindOption("projectType", "neubau")
	assert.True(t, ok)
	assert.Equal(t, 30, o.Score)

	_, ok = step.FindOption("projectType", "missing")
	assert.False(t, ok)

	_, ok = step.FindOption("otherField", "neubau")
	assert.False(t, ok)
}
