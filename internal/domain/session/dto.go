package session

import (
	"funnelwerk/internal/domain/funnel"
)

// StartRequest opens a session. Referrer is optional client context.
type StartRequest struct {
	Referrer string `json:"referrer"`
}

// AnswerRequest is a single- or multi-select answer.
type AnswerRequest struct {
	Field    string `json:"field" binding:"required"`
	OptionID string `json:"option_id" binding:"required"`
}

// TextRequest is a contact-field input.
type TextRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// ConsentRequest toggles the GDPR checkbox.
type ConsentRequest struct {
	Consent bool `json:"consent"`
}

// StepView is the current step with its sub-questions filtered down to the
// visible ones for the live answer map.
type StepView struct {
	funnel.Step
	VisibleQuestions []funnel.Question `json:"visible_questions,omitempty"`
}

// ConfirmationView is the rendered final screen.
type ConfirmationView struct {
	Title         string   `json:"title"`
	Message       string   `json:"message"`
	NextSteps     []string `json:"next_steps"`
	UrgentContact string   `json:"urgent_contact,omitempty"`
}

// StateResponse is the full session state the funnel UI renders from.
type StateResponse struct {
	Token        string                        `json:"token"`
	FunnelID     string                        `json:"funnel_id"`
	Status       Status                        `json:"status"`
	StepIndex    int                           `json:"step_index"`
	StepCount    int                           `json:"step_count"`
	Step         *StepView                     `json:"step,omitempty"`
	StepComplete bool                          `json:"step_complete"`
	CanGoBack    bool                          `json:"can_go_back"`
	CanSkip      bool                          `json:"can_skip"`
	Answers      map[string]funnel.AnswerValue `json:"answers"`
	Errors       map[string]string             `json:"errors,omitempty"`
	TotalScore   int                           `json:"total_score"`
	GDPRConsent  bool                          `json:"gdpr_consent"`
	Confirmation *ConfirmationView             `json:"confirmation,omitempty"`
}

// NewStateResponse projects a session onto the wire shape.
func NewStateResponse(def *funnel.Definition, sess *Session) StateResponse {
	resp := StateResponse{
		Token:       sess.Token,
		FunnelID:    sess.FunnelID,
		Status:      sess.Status,
		StepIndex:   sess.CurrentStep,
		StepCount:   len(def.Steps),
		CanGoBack:   sess.CurrentStep > 0,
		Answers:     sess.Answers,
		Errors:      sess.Errors,
		TotalScore:  sess.TotalScore(),
		GDPRConsent: sess.GDPRConsent,
	}

	if sess.Status == StatusComplete {
		eng, err := NewEngine(def, sess)
		title := def.Confirmation.TitleTemplate
		if err == nil {
			title = eng.ConfirmationTitle()
		}
		resp.Confirmation = &ConfirmationView{
			Title:         title,
			Message:       def.Confirmation.Message,
			NextSteps:     def.Confirmation.NextSteps,
			UrgentContact: def.Confirmation.UrgentContact,
		}
		return resp
	}

	step := def.Steps[sess.CurrentStep]
	view := &StepView{Step: step}
	if len(step.Questions) > 0 {
		view.VisibleQuestions = funnel.VisibleQuestions(step, sess.Answers)
	}
	resp.Step = view
	resp.CanSkip = step.Type == funnel.StepOptionalQualification

	if eng, err := NewEngine(def, sess); err == nil {
		resp.StepComplete = eng.StepComplete(step)
	}

	return resp
}
