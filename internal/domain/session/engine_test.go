package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelwerk/internal/domain/funnel"
)

func intPtr(v int) *int { return &v }

// testDefinition is a compact funnel exercising every step type.
func testDefinition() *funnel.Definition {
	return &funnel.Definition{
		ID:           "test-funnel",
		Name:         "Testfunnel",
		TriggerLabel: "Jetzt starten",
		Scoring:      funnel.Scoring{Hot: 80, Warm: 50, Potential: 25},
		Confirmation: funnel.Confirmation{
			TitleTemplate: "Vielen Dank, [Name]!",
			Message:       "Wir melden uns.",
		},
		Steps: []funnel.Step{
			{
				ID:    "projekt",
				Type:  funnel.StepSingleChoice,
				Title: "Um was geht es?",
				Field: "projectType",
				Options: []funnel.Option{
					{ID: "neubau", Label: "Neubau", Score: 30, Tag: "neubau"},
					{ID: "sanierung", Label: "Sanierung", Score: 25, Tag: "sanierung"},
					{ID: "kleinauftrag", Label: "Kleinauftrag", Score: 10},
				},
			},
			{
				ID:             "leistungen",
				Type:           funnel.StepMultiChoice,
				Title:          "Welche Leistungen?",
				Field:          "services",
				MinSelections:  intPtr(1),
				BonusThreshold: 3,
				BonusScore:     15,
				Options: []funnel.Option{
					{ID: "a", Label: "Leistung A", Score: 10},
					{ID: "b", Label: "Leistung B", Score: 15, Tag: "b-interesse"},
					{ID: "c", Label: "Leistung C", Score: 5},
					{ID: "d", Label: "Leistung D", Score: 20},
				},
			},
			{
				ID:    "rahmen",
				Type:  funnel.StepTwoQuestions,
				Title: "Zeit und Budget",
				Questions: []funnel.Question{
					{
						Field:  "timeline",
						Prompt: "Wann soll es losgehen?",
						Options: []funnel.Option{
							{ID: "asap", Label: "So schnell wie möglich", Score: 20, Tag: "dringend"},
							{ID: "months", Label: "In den nächsten Monaten", Score: 10},
							{ID: "research", Label: "Ich informiere mich nur", Score: 0},
						},
					},
					{
						Field:  "budget",
						Prompt: "Welches Budget?",
						ShowIf: &funnel.ShowIf{Field: "timeline", NotIn: []string{"research"}},
						Options: []funnel.Option{
							{ID: "high", Label: "Über 10.000 Euro", Score: 25},
							{ID: "low", Label: "Unter 10.000 Euro", Score: 5},
						},
					},
				},
			},
			{
				ID:    "kontakt",
				Type:  funnel.StepContact,
				Title: "Ihre Kontaktdaten",
				ContactFields: []funnel.ContactField{
					{Name: "name", Label: "Name", Kind: funnel.InputText, Required: true},
					{Name: "email", Label: "E-Mail", Kind: funnel.InputEmail, Required: true, Validate: funnel.ValidateEmail},
					{Name: "phone", Label: "Telefon", Kind: funnel.InputTel, Required: true, Validate: funnel.ValidatePhone},
					{Name: "plz", Label: "Postleitzahl", Kind: funnel.InputText, Required: false, Validate: funnel.ValidatePLZ},
				},
				ConsentText: "Ich stimme der Verarbeitung meiner Daten zu.",
			},
			{
				ID:    "qualifizierung",
				Type:  funnel.StepOptionalQualification,
				Title: "Noch zwei kurze Fragen",
				Questions: []funnel.Question{
					{
						Field:  "propertyType",
						Prompt: "Um welche Immobilie geht es?",
						Options: []funnel.Option{
							{ID: "haus", Label: "Einfamilienhaus", Score: 10},
							{ID: "gewerbe", Label: "Gewerbeobjekt", Score: 15, Tag: "gewerbe"},
						},
					},
					{
						Field:  "ownership",
						Prompt: "Sind Sie Eigentümer?",
						ShowIf: &funnel.ShowIf{Field: "propertyType", NotIn: []string{"gewerbe"}},
						Options: []funnel.Option{
							{ID: "owner", Label: "Ja", Score: 10},
							{ID: "tenant", Label: "Nein", Score: 0},
						},
					},
				},
			},
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *Session, *funnel.Definition) {
	t.Helper()
	def := testDefinition()
	require.NoError(t, def.Validate())

	sess := New(def.ID, "test-agent", "")
	eng, err := NewEngine(def, sess)
	require.NoError(t, err)
	return eng, sess, def
}

func TestNewEngine_FunnelMismatch(t *testing.T) {
	def := testDefinition()
	sess := New("other-funnel", "", "")

	_, err := NewEngine(def, sess)

	assert.ErrorIs(t, err, ErrFunnelMismatch)
}

func TestSelectSingle_ReplacesScoreEntry(t *testing.T) {
	eng, sess, _ := newTestEngine(t)

	require.NoError(t, eng.SelectSingle("projectType", "neubau"))
	assert.Equal(t, 30, sess.TotalScore())
	assert.Equal(t, []string{"neubau"}, sess.AllTags())

	// Changing the answer replaces, never accumulates.
	require.NoError(t, eng.SelectSingle("projectType", "sanierung"))
	assert.Equal(t, 25, sess.TotalScore())
	assert.Equal(t, []string{"sanierung"}, sess.AllTags())

	// Re-selecting the same option is a no-op.
	require.NoError(t, eng.SelectSingle("projectType", "sanierung"))
	assert.Equal(t, 25, sess.TotalScore())
}

func TestSelectSingle_UnknownFieldAndOption(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	assert.ErrorIs(t, eng.SelectSingle("nope", "neubau"), ErrUnknownField)
	assert.ErrorIs(t, eng.SelectSingle("projectType", "nope"), ErrUnknownOption)
}

func TestToggleMulti_SelfInverse(t *testing.T) {
	eng, sess, _ := newTestEngine(t)
	require.NoError(t, eng.SelectSingle("projectType", "kleinauftrag"))
	require.NoError(t, eng.Advance())

	require.NoError(t, eng.ToggleMulti("services", "b"))
	assert.Equal(t, []string{"b"}, sess.Answers["services"].List)
	assert.Equal(t, 15, sess.Scores["services"].Score)
	assert.Equal(t, []string{"b-interesse"}, sess.Scores["services"].Tags)

	require.NoError(t, eng.ToggleMulti("services", "b"))
	assert.Empty(t, sess.Answers["services"].List)
	assert.Equal(t, 0, sess.Scores["services"].Score)
	assert.Empty(t, sess.Scores["services"].Tags)
}

func TestToggleMulti_FlatBonusAtThreshold(t *testing.T) {
	eng, sess, _ := newTestEngine(t)
	require.NoError(t, eng.SelectSingle("projectType", "kleinauftrag"))
	require.NoError(t, eng.Advance())

	require.NoError(t, eng.ToggleMulti("services", "a"))
	assert.Equal(t, 10, sess.Scores["services"].Score)

	require.NoError(t, eng.ToggleMulti("services", "b"))
	assert.Equal(t, 25, sess.Scores["services"].Score)

	// Third selection crosses the threshold: 10+15+5 plus the flat 15 bonus.
	require.NoError(t, eng.ToggleMulti("services", "c"))
	assert.Equal(t, 45, sess.Scores["services"].Score)

	// A fourth selection keeps a single bonus.
	require.NoError(t, eng.ToggleMulti("services", "d"))
	assert.Equal(t, 65, sess.Scores["services"].Score)

	// Dropping below the threshold removes the bonus again.
	require.NoError(t, eng.ToggleMulti("services", "d"))
	require.NoError(t, eng.ToggleMulti("services", "c"))
	assert.Equal(t, 25, sess.Scores["services"].Score)
}

func TestSelectSingle_HiddenQuestionRejected(t *testing.T) {
	eng, sess, _ := newTestEngine(t)
	require.NoError(t, eng.SelectSingle("projectType", "neubau"))
	require.NoError(t, eng.Advance())
	require.NoError(t, eng.ToggleMulti("services", "a"))
	require.NoError(t, eng.Advance())

	// budget hidden until timeline is answered with a non-research value?
	// No: showIf fails open, so budget is visible while timeline is blank.
	require.NoError(t, eng.SelectSingle("budget", "high"))

	require.NoError(t, eng.SelectSingle("timeline", "research"))
	err := eng.SelectSingle("budget", "low")
	assert.ErrorIs(t, err, ErrQuestionHidden)

	// The earlier budget answer stays attached to the field.
	assert.Equal(t, "high", sess.Answers["budget"].Text)

	require.NoError(t, eng.SelectSingle("timeline", "asap"))
	require.NoError(t, eng.SelectSingle("budget", "low"))
	assert.Equal(t, "low", sess.Answers["budget"].Text)
}

func TestStepComplete_PerType(t *testing.T) {
	eng, sess, def := newTestEngine(t)

	assert.False(t, eng.StepComplete(def.Steps[0]))
	require.NoError(t, eng.SelectSingle("projectType", "neubau"))
	assert.True(t, eng.StepComplete(def.Steps[0]))

	assert.False(t, eng.StepComplete(def.Steps[1]))
	sess.CurrentStep = 1
	require.NoError(t, eng.ToggleMulti("services", "a"))
	assert.True(t, eng.StepComplete(def.Steps[1]))

	assert.False(t, eng.StepComplete(def.Steps[2]))
	sess.CurrentStep = 2
	require.NoError(t, eng.SelectSingle("timeline", "asap"))
	assert.False(t, eng.StepComplete(def.Steps[2]))
	require.NoError(t, eng.SelectSingle("budget", "high"))
	assert.True(t, eng.StepComplete(def.Steps[2]))

	// Optional qualification is always complete.
	assert.True(t, eng.StepComplete(def.Steps[4]))
}

func TestStepComplete_MultiChoiceExplicitZeroMinimum(t *testing.T) {
	def := testDefinition()
	def.Steps[1].MinSelections = intPtr(0)
	require.NoError(t, def.Validate())

	sess := New(def.ID, "", "")
	eng, err := NewEngine(def, sess)
	require.NoError(t, err)

	assert.True(t, eng.StepComplete(def.Steps[1]))
}

func TestValidateContact_PerFieldErrors(t *testing.T) {
	eng, sess, _ := newTestEngine(t)
	sess.CurrentStep = 3

	require.NoError(t, eng.SetText("name", "Max Mustermann"))
	require.NoError(t, eng.SetText("email", "max-at-example.de"))
	require.NoError(t, eng.SetText("phone", "123"))
	require.NoError(t, eng.SetText("plz", "123456"))
	require.NoError(t, eng.SetConsent(true))

	assert.False(t, eng.ValidateContact())
	assert.NotContains(t, sess.Errors, "name")
	assert.Contains(t, sess.Errors, "email")
	assert.Contains(t, sess.Errors, "phone")
	assert.Contains(t, sess.Errors, "plz")

	require.NoError(t, eng.SetText("email", "max@example.de"))
	require.NoError(t, eng.SetText("phone", "+49 170 1234567"))
	require.NoError(t, eng.SetText("plz", "10115"))
	assert.True(t, eng.ValidateContact())
	assert.Empty(t, sess.Errors)
}

func TestValidateContact_OptionalFieldSkippedWhenEmpty(t *testing.T) {
	eng, sess, _ := newTestEngine(t)
	sess.CurrentStep = 3

	require.NoError(t, eng.SetText("name", "Erika"))
	require.NoError(t, eng.SetText("email", "erika@example.de"))
	require.NoError(t, eng.SetText("phone", "030 1234567"))
	require.NoError(t, eng.SetConsent(true))

	// plz is optional; leaving it blank must not produce an error.
	assert.True(t, eng.ValidateContact())
	assert.NotContains(t, sess.Errors, "plz")
}

func TestValidateContact_ConsentUsesReservedKey(t *testing.T) {
	eng, sess, _ := newTestEngine(t)
	sess.CurrentStep = 3

	require.NoError(t, eng.SetText("name", "Erika"))
	require.NoError(t, eng.SetText("email", "erika@example.de"))
	require.NoError(t, eng.SetText("phone", "030 1234567"))

	assert.False(t, eng.ValidateContact())
	assert.Contains(t, sess.Errors, ErrorKeyGDPR)

	// Granting consent clears the gdpr error.
	require.NoError(t, eng.SetConsent(true))
	assert.NotContains(t, sess.Errors, ErrorKeyGDPR)
}

func TestSetText_ClearsFieldError(t *testing.T) {
	eng, sess, _ := newTestEngine(t)
	sess.CurrentStep = 3
	require.NoError(t, eng.SetConsent(true))

	require.NoError(t, eng.SetText("email", "broken"))
	require.NoError(t, eng.SetText("name", "Erika"))
	require.NoError(t, eng.SetText("phone", "030 1234567"))
	assert.False(t, eng.ValidateContact())
	assert.Contains(t, sess.Errors, "email")

	require.NoError(t, eng.SetText("email", "erika@example.de"))
	assert.NotContains(t, sess.Errors, "email")
}

func TestAdvance_RequiresCompleteStep(t *testing.T) {
	eng, sess, _ := newTestEngine(t)

	assert.ErrorIs(t, eng.Advance(), ErrStepIncomplete)
	assert.Equal(t, 0, sess.CurrentStep)

	require.NoError(t, eng.SelectSingle("projectType", "neubau"))
	require.NoError(t, eng.Advance())
	assert.Equal(t, 1, sess.CurrentStep)
}

func TestAdvance_ContactStepValidates(t *testing.T) {
	eng, sess, _ := newTestEngine(t)
	sess.CurrentStep = 3

	require.NoError(t, eng.SetText("name", "Erika"))
	require.NoError(t, eng.SetText("email", "not-an-email"))
	require.NoError(t, eng.SetText("phone", "030 1234567"))
	require.NoError(t, eng.SetConsent(true))

	assert.ErrorIs(t, eng.Advance(), ErrStepInvalid)
	assert.Equal(t, 3, sess.CurrentStep)
	assert.Contains(t, sess.Errors, "email")

	require.NoError(t, eng.SetText("email", "erika@example.de"))
	require.NoError(t, eng.Advance())
	assert.Equal(t, 4, sess.CurrentStep)
}

func TestAdvance_RefusesOnLastStep(t *testing.T) {
	eng, sess, _ := newTestEngine(t)
	sess.CurrentStep = 4

	assert.True(t, eng.OnLastStep())
	assert.ErrorIs(t, eng.Advance(), ErrStepInvalid)
}

func TestBack_KeepsAnswersAndScores(t *testing.T) {
	eng, sess, _ := newTestEngine(t)

	require.NoError(t, eng.SelectSingle("projectType", "neubau"))
	require.NoError(t, eng.Advance())
	require.NoError(t, eng.ToggleMulti("services", "a"))
	sess.Errors["services"] = "irgendein Fehler"

	require.NoError(t, eng.Back())

	assert.Equal(t, 0, sess.CurrentStep)
	assert.Equal(t, "neubau", sess.Answers["projectType"].Text)
	assert.Equal(t, []string{"a"}, sess.Answers["services"].List)
	assert.Equal(t, 40, sess.TotalScore())
	assert.Empty(t, sess.Errors)
}

func TestBack_FailsOnFirstStep(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	assert.ErrorIs(t, eng.Back(), ErrAlreadyFirstStep)
}

func TestCompleteSession_RejectsMutations(t *testing.T) {
	eng, sess, _ := newTestEngine(t)
	sess.Status = StatusComplete

	assert.ErrorIs(t, eng.SelectSingle("projectType", "neubau"), ErrSessionComplete)
	assert.ErrorIs(t, eng.SetConsent(true), ErrSessionComplete)
	assert.ErrorIs(t, eng.Advance(), ErrSessionComplete)
	assert.ErrorIs(t, eng.Back(), ErrSessionComplete)
}

func TestCanSkip_OnlyOptionalStep(t *testing.T) {
	eng, sess, _ := newTestEngine(t)

	assert.False(t, eng.CanSkip())
	sess.CurrentStep = 4
	assert.True(t, eng.CanSkip())
}

func TestConfirmationTitle_SubstitutesName(t *testing.T) {
	eng, sess, _ := newTestEngine(t)
	sess.Answers["name"] = funnel.TextAnswer("Max")

	assert.Equal(t, "Vielen Dank, Max!", eng.ConfirmationTitle())
}

func TestConfirmationTitle_EmptyNameLeavesBlank(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	assert.Equal(t, "Vielen Dank, !", eng.ConfirmationTitle())
}
