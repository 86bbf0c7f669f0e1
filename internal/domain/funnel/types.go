package funnel

// StepType discriminates the fixed set of step variants. Every switch over
// StepType must cover all five; there is no generic fallback step.
type StepType string

const (
	StepSingleChoice          StepType = "single-choice"
	StepMultiChoice           StepType = "multi-choice"
	StepTwoQuestions          StepType = "two-questions"
	StepOptionalQualification StepType = "optional-qualification"
	StepContact               StepType = "contact"
)

// Definition is an immutable, authored funnel. Definitions are validated
// once at registry construction and never mutated afterwards.
type Definition struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	TriggerLabel string       `json:"trigger_label"`
	Steps        []Step       `json:"steps"`
	Confirmation Confirmation `json:"confirmation"`
	Scoring      Scoring      `json:"scoring"`
}

// Scoring holds the classification thresholds. Must satisfy
// Hot >= Warm >= Potential >= 0; anything below Potential is nurture.
type Scoring struct {
	Hot       int `json:"hot"`
	Warm      int `json:"warm"`
	Potential int `json:"potential"`
}

// Confirmation is the final-screen copy. TitleTemplate may contain a
// "[Name]" placeholder that is replaced with the contact name.
type Confirmation struct {
	TitleTemplate string   `json:"title_template"`
	Message       string   `json:"message"`
	NextSteps     []string `json:"next_steps"`
	UrgentContact string   `json:"urgent_contact,omitempty"`
}

// Step is one screen of the funnel. Which fields are meaningful depends on
// Type:
//
//	single-choice:          Field, Options, Layout
//	multi-choice:           Field, Options, MinSelections, BonusThreshold, BonusScore
//	two-questions:          Questions (exactly two)
//	optional-qualification: Questions (skippable as a whole)
//	contact:                ContactFields, ConsentText, ValueProps
type Step struct {
	ID       string   `json:"id"`
	Type     StepType `json:"type"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`

	Field   string   `json:"field,omitempty"`
	Options []Option `json:"options,omitempty"`
	Layout  string   `json:"layout,omitempty"`

	// MinSelections is nil for the default policy (complete once at least
	// one option is picked). An explicit 0 makes the step always complete.
	MinSelections  *int `json:"min_selections,omitempty"`
	BonusThreshold int  `json:"bonus_threshold,omitempty"`
	BonusScore     int  `json:"bonus_score,omitempty"`

	Questions []Question `json:"questions,omitempty"`

	ContactFields []ContactField `json:"contact_fields,omitempty"`
	ConsentText   string         `json:"consent_text,omitempty"`
	ValueProps    []string       `json:"value_props,omitempty"`
}

// Option is one selectable answer. Score contributes to the session total,
// Tag feeds downstream segmentation.
type Option struct {
	ID      string `json:"id"`
	Icon    string `json:"icon,omitempty"`
	Label   string `json:"label"`
	Subtext string `json:"subtext,omitempty"`
	Score   int    `json:"score"`
	Tag     string `json:"tag,omitempty"`
}

// Question is a single-select sub-question inside a two-questions or
// optional-qualification step.
type Question struct {
	Field   string   `json:"field"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
	ShowIf  *ShowIf  `json:"show_if,omitempty"`
}

// ShowIf hides a question based on another field's collected value.
// NotIn hides when the value is in the set, In hides when it is absent.
// NotIn is evaluated before In.
type ShowIf struct {
	Field string   `json:"field"`
	NotIn []string `json:"not_in,omitempty"`
	In    []string `json:"in,omitempty"`
}

// ContactInputKind is the UI input widget for a contact field.
type ContactInputKind string

const (
	InputText  ContactInputKind = "text"
	InputEmail ContactInputKind = "email"
	InputTel   ContactInputKind = "tel"
)

// ValidationKind selects the pattern check applied to a contact field.
type ValidationKind string

const (
	ValidateNone  ValidationKind = ""
	ValidateEmail ValidationKind = "email"
	ValidatePhone ValidationKind = "phone"
	ValidatePLZ   ValidationKind = "plz"
)

// ContactField describes one input on the contact step.
type ContactField struct {
	Name     string           `json:"name"`
	Label    string           `json:"label"`
	Kind     ContactInputKind `json:"kind"`
	Required bool             `json:"required"`
	Validate ValidationKind   `json:"validate,omitempty"`
}

// AnswerKind discriminates the shape of a collected answer. The shape is
// fixed by the step type that owns the field, never inspected at runtime.
type AnswerKind string

const (
	AnswerChoice AnswerKind = "choice" // single-choice and question fields
	AnswerMulti  AnswerKind = "multi"  // multi-choice fields
	AnswerText   AnswerKind = "text"   // contact fields
)

// AnswerValue is one collected answer. Exactly one value field is
// meaningful, selected by Kind.
type AnswerValue struct {
	Kind AnswerKind `json:"kind"`
	Text string     `json:"text,omitempty"`
	List []string   `json:"list,omitempty"`
}

// ChoiceAnswer builds a single-select answer.
func ChoiceAnswer(optionID string) AnswerValue {
	return AnswerValue{Kind: AnswerChoice, Text: optionID}
}

// MultiAnswer builds a multi-select answer preserving selection order.
func MultiAnswer(optionIDs []string) AnswerValue {
	return AnswerValue{Kind: AnswerMulti, List: optionIDs}
}

// TextAnswer builds a free-text answer.
func TextAnswer(value string) AnswerValue {
	return AnswerValue{Kind: AnswerText, Text: value}
}

// IsEmpty reports whether the answer carries no value.
func (a AnswerValue) IsEmpty() bool {
	switch a.Kind {
	case AnswerMulti:
		return len(a.List) == 0
	default:
		return a.Text == ""
	}
}

// FindOption returns the option with the given id from a step's own option
// list or any of its sub-question option lists.
func (s Step) FindOption(field, optionID string) (Option, bool) {
	if s.Field == field {
		for _, o := range s.Options {
			if o.ID == optionID {
				return o, true
			}
		}
		return Option{}, false
	}
	for _, q := range s.Questions {
		if q.Field != field {
			continue
		}
		for _, o := range q.Options {
			if o.ID == optionID {
				return o, true
			}
		}
	}
	return Option{}, false
}

// QuestionByField returns the sub-question owning the given field.
func (s Step) QuestionByField(field string) (Question, bool) {
	for _, q := range s.Questions {
		if q.Field == field {
			return q, true
		}
	}
	return Question{}, false
}

// ContactFieldByName returns the contact field with the given name.
func (s Step) ContactFieldByName(name string) (ContactField, bool) {
	for _, f := range s.ContactFields {
		if f.Name == name {
			return f, true
		}
	}
	return ContactField{}, false
}
