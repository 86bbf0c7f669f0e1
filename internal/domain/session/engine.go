package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"funnelwerk/internal/domain/funnel"
)

// Engine drives one session through its funnel definition: answer
// mutations, incremental scoring, per-step validation and bidirectional
// navigation. It mutates the session in place and carries no state of its
// own, so it is safe to construct per request.
type Engine struct {
	def  *funnel.Definition
	sess *Session
}

// NewEngine binds a session to its definition.
func NewEngine(def *funnel.Definition, sess *Session) (*Engine, error) {
	if def.ID != sess.FunnelID {
		return nil, ErrFunnelMismatch
	}
	return &Engine{def: def, sess: sess}, nil
}

// Step returns the current step.
func (e *Engine) Step() funnel.Step {
	return e.def.Steps[e.sess.CurrentStep]
}

// OnLastStep reports whether the session sits on the final step.
func (e *Engine) OnLastStep() bool {
	return e.sess.CurrentStep == len(e.def.Steps)-1
}

func (e *Engine) touch() {
	e.sess.UpdatedAt = time.Now()
}

// SelectSingle records a single-select answer for a field of the current
// step. The field may belong to the step itself (single-choice) or to one
// of its sub-questions. The field's score entry is replaced with the chosen
// option's contribution; repeating the same selection is a no-op.
func (e *Engine) SelectSingle(field, optionID string) error {
	if e.sess.Status == StatusComplete {
		return ErrSessionComplete
	}
	step := e.Step()

	switch step.Type {
	case funnel.StepSingleChoice:
		if step.Field != field {
			return ErrUnknownField
		}
	case funnel.StepTwoQuestions, funnel.StepOptionalQualification:
		q, ok := step.QuestionByField(field)
		if !ok {
			return ErrUnknownField
		}
		// A hidden question cannot be answered; its previously collected
		// answer (if any) stays attached to the field.
		if !funnel.QuestionVisible(q, e.sess.Answers) {
			return ErrQuestionHidden
		}
	default:
		return ErrWrongStepType
	}

	opt, ok := step.FindOption(field, optionID)
	if !ok {
		return ErrUnknownOption
	}

	e.sess.Answers[field] = funnel.ChoiceAnswer(opt.ID)

	entry := ScoreEntry{Score: opt.Score}
	if opt.Tag != "" {
		entry.Tags = []string{opt.Tag}
	}
	e.sess.Scores[field] = entry

	e.touch()
	return nil
}

// ToggleMulti flips one option in a multi-choice field and recomputes the
// field's score entry from scratch: the sum of all selected options plus a
// flat bonus once the selection count reaches the step's bonus threshold.
// Crossing the threshold repeatedly never stacks the bonus.
func (e *Engine) ToggleMulti(field, optionID string) error {
	if e.sess.Status == StatusComplete {
		return ErrSessionComplete
	}
	step := e.Step()
	if step.Type != funnel.StepMultiChoice {
		return ErrWrongStepType
	}
	if step.Field != field {
		return ErrUnknownField
	}
	if _, ok := step.FindOption(field, optionID); !ok {
		return ErrUnknownOption
	}

	var selected []string
	if cur, ok := e.sess.Answers[field]; ok {
		selected = cur.List
	}

	toggledOff := false
	next := make([]string, 0, len(selected)+1)
	for _, id := range selected {
		if id == optionID {
			toggledOff = true
			continue
		}
		next = append(next, id)
	}
	if !toggledOff {
		next = append(next, optionID)
	}

	e.sess.Answers[field] = funnel.MultiAnswer(next)
	e.sess.Scores[field] = multiScore(step, next)

	e.touch()
	return nil
}

func multiScore(step funnel.Step, selected []string) ScoreEntry {
	entry := ScoreEntry{}
	tagSet := make(map[string]bool)

	for _, id := range selected {
		for _, o := range step.Options {
			if o.ID != id {
				continue
			}
			entry.Score += o.Score
			if o.Tag != "" {
				tagSet[o.Tag] = true
			}
		}
	}

	if step.BonusThreshold > 0 && len(selected) >= step.BonusThreshold {
		entry.Score += step.BonusScore
	}

	for t := range tagSet {
		entry.Tags = append(entry.Tags, t)
	}
	sort.Strings(entry.Tags)
	return entry
}

// SetText records a contact-step text input and clears any validation
// error previously attached to that field.
func (e *Engine) SetText(field, value string) error {
	if e.sess.Status == StatusComplete {
		return ErrSessionComplete
	}
	step := e.Step()
	if step.Type != funnel.StepContact {
		return ErrWrongStepType
	}
	if _, ok := step.ContactFieldByName(field); !ok {
		return ErrUnknownField
	}

	e.sess.Answers[field] = funnel.TextAnswer(strings.TrimSpace(value))
	delete(e.sess.Errors, field)

	e.touch()
	return nil
}

// SetConsent records the GDPR checkbox. Granting consent clears a pending
// consent error.
func (e *Engine) SetConsent(consent bool) error {
	if e.sess.Status == StatusComplete {
		return ErrSessionComplete
	}
	e.sess.GDPRConsent = consent
	if consent {
		delete(e.sess.Errors, ErrorKeyGDPR)
	}
	e.touch()
	return nil
}

// StepComplete reports whether a step holds enough answers to leave it.
// Visibility is not consulted for question steps: a previously answered,
// now-hidden question still counts.
func (e *Engine) StepComplete(step funnel.Step) bool {
	switch step.Type {
	case funnel.StepSingleChoice:
		a, ok := e.sess.Answers[step.Field]
		return ok && !a.IsEmpty()

	case funnel.StepMultiChoice:
		a := e.sess.Answers[step.Field]
		min := 1
		if step.MinSelections != nil {
			min = *step.MinSelections
		}
		return len(a.List) >= min

	case funnel.StepTwoQuestions:
		for _, q := range step.Questions {
			a, ok := e.sess.Answers[q.Field]
			if !ok || a.IsEmpty() {
				return false
			}
		}
		return true

	case funnel.StepOptionalQualification:
		return true

	case funnel.StepContact:
		for _, f := range step.ContactFields {
			if f.Required && e.sess.ContactValue(f.Name) == "" {
				return false
			}
		}
		return e.sess.GDPRConsent

	default:
		return false
	}
}

// ValidateContact runs the contact step's per-field pattern checks plus the
// consent check, filling the session's error map. Only meaningful for the
// contact step; any other step validates to true.
func (e *Engine) ValidateContact() bool {
	step := e.Step()
	if step.Type != funnel.StepContact {
		return true
	}

	ok := true
	for _, f := range step.ContactFields {
		value := e.sess.ContactValue(f.Name)

		if value == "" {
			if f.Required {
				e.sess.Errors[f.Name] = fmt.Sprintf("%s ist erforderlich", f.Label)
				ok = false
			}
			continue
		}

		switch f.Validate {
		case funnel.ValidateEmail:
			if !ValidEmail(value) {
				e.sess.Errors[f.Name] = "Bitte geben Sie eine gültige E-Mail-Adresse ein"
				ok = false
			}
		case funnel.ValidatePhone:
			if !ValidPhone(value) {
				e.sess.Errors[f.Name] = "Bitte geben Sie eine gültige Telefonnummer ein"
				ok = false
			}
		case funnel.ValidatePLZ:
			if !ValidPLZ(value) {
				e.sess.Errors[f.Name] = "Bitte geben Sie eine gültige Postleitzahl ein (5 Ziffern)"
				ok = false
			}
		}
	}

	if !e.sess.GDPRConsent {
		e.sess.Errors[ErrorKeyGDPR] = "Bitte stimmen Sie der Datenverarbeitung zu"
		ok = false
	}

	return ok
}

// Advance moves to the next step. The caller must route the last step to
// Submit instead; Advance refuses to run off the end.
func (e *Engine) Advance() error {
	if e.sess.Status == StatusComplete {
		return ErrSessionComplete
	}
	step := e.Step()

	if !e.StepComplete(step) {
		return ErrStepIncomplete
	}
	if step.Type == funnel.StepContact && !e.ValidateContact() {
		return ErrStepInvalid
	}
	if e.OnLastStep() {
		return ErrStepInvalid
	}

	e.sess.CurrentStep++
	e.touch()
	return nil
}

// Back moves one step back, clearing validation errors but keeping all
// answers and their score entries so the prior step renders as left.
func (e *Engine) Back() error {
	if e.sess.Status == StatusComplete {
		return ErrSessionComplete
	}
	if e.sess.CurrentStep == 0 {
		return ErrAlreadyFirstStep
	}
	e.sess.CurrentStep--
	e.sess.Errors = make(map[string]string)
	e.touch()
	return nil
}

// CanSkip reports whether the current step may be skipped as a whole.
func (e *Engine) CanSkip() bool {
	return e.Step().Type == funnel.StepOptionalQualification
}

// ConfirmationTitle renders the confirmation headline with the contact
// name substituted for the [Name] placeholder.
func (e *Engine) ConfirmationTitle() string {
	name := e.sess.ContactValue("name")
	return strings.ReplaceAll(e.def.Confirmation.TitleTemplate, "[Name]", name)
}
