package lead

import (
	"time"

	"funnelwerk/internal/domain/funnel"
)

// Source tag stamped on every submission this service produces.
const SourceTag = "funnelwerk-website"

// Status is the follow-up lifecycle of a stored submission.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusRejected  Status = "rejected"
	StatusLost      Status = "lost"
)

// Contact is the subset of answers that identifies the person.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	PLZ     string `json:"plz,omitempty"`
	Address string `json:"address,omitempty"`
}

// Submission is a completed funnel run, immutable once built except for
// the follow-up fields (Status, Notes).
type Submission struct {
	ID           int64                         `json:"id"`
	FunnelID     string                        `json:"funnel_id"`
	SessionToken string                        `json:"session_token"`
	Contact      Contact                       `json:"contact"`
	Answers      map[string]funnel.AnswerValue `json:"answers"`

	TotalScore     int                   `json:"total_score"`
	Classification funnel.Classification `json:"classification"`
	Tags           []string              `json:"tags"`

	GDPRConsent bool      `json:"gdpr_consent"`
	UserAgent   string    `json:"user_agent,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`

	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsConverted reports whether the lead already became a customer.
func (s *Submission) IsConverted() bool {
	return s.Status == StatusConverted
}

// BuildInput carries the session data a submission is built from.
type BuildInput struct {
	SessionToken string
	Answers      map[string]funnel.AnswerValue
	TotalScore   int
	Tags         []string
	GDPRConsent  bool
	UserAgent    string
	Referrer     string
}

// Build assembles a Submission from a finished session. Deterministic:
// the same input always yields the same score, classification and tags.
func Build(def *funnel.Definition, in BuildInput, now time.Time) *Submission {
	answers := make(map[string]funnel.AnswerValue, len(in.Answers))
	for k, v := range in.Answers {
		answers[k] = v
	}

	tags := make([]string, len(in.Tags))
	copy(tags, in.Tags)

	return &Submission{
		FunnelID:       def.ID,
		SessionToken:   in.SessionToken,
		Contact:        extractContact(in.Answers),
		Answers:        answers,
		TotalScore:     in.TotalScore,
		Classification: funnel.Classify(in.TotalScore, def.Scoring),
		Tags:           tags,
		GDPRConsent:    in.GDPRConsent,
		UserAgent:      in.UserAgent,
		Referrer:       in.Referrer,
		SubmittedAt:    now,
		Status:         StatusNew,
	}
}

func extractContact(answers map[string]funnel.AnswerValue) Contact {
	text := func(field string) string {
		a, ok := answers[field]
		if !ok || a.Kind != funnel.AnswerText {
			return ""
		}
		return a.Text
	}
	return Contact{
		Name:    text("name"),
		Email:   text("email"),
		Phone:   text("phone"),
		PLZ:     text("plz"),
		Address: text("address"),
	}
}
