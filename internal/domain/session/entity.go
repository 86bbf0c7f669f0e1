package session

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"funnelwerk/internal/domain/funnel"
)

// Status is the lifecycle state of one funnel session.
type Status string

const (
	StatusCollecting Status = "collecting"
	StatusSubmitting Status = "submitting"
	StatusComplete   Status = "complete"
)

// ScoreEntry is the score/tags contribution of one answered field. It is
// replaced, never accumulated, when the field's answer changes.
type ScoreEntry struct {
	Score int      `json:"score"`
	Tags  []string `json:"tags,omitempty"`
}

// Session holds the mutable state of one visitor walking a funnel.
type Session struct {
	Token       string                        `json:"token"`
	FunnelID    string                        `json:"funnel_id"`
	CurrentStep int                           `json:"current_step"`
	Answers     map[string]funnel.AnswerValue `json:"answers"`
	Scores      map[string]ScoreEntry         `json:"scores"`
	GDPRConsent bool                          `json:"gdpr_consent"`
	Errors      map[string]string             `json:"errors"`
	Status      Status                        `json:"status"`

	UserAgent string    `json:"user_agent,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a fresh session at step 0 with empty answers.
func New(funnelID, userAgent, referrer string) *Session {
	now := time.Now()
	return &Session{
		Token:     uuid.NewString(),
		FunnelID:  funnelID,
		Answers:   make(map[string]funnel.AnswerValue),
		Scores:    make(map[string]ScoreEntry),
		Errors:    make(map[string]string),
		Status:    StatusCollecting,
		UserAgent: userAgent,
		Referrer:  referrer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// clone deep-copies a session. The service hands clones to callers so
// projections and persistence never read a map another request is writing.
func (s *Session) clone() *Session {
	out := *s
	out.Answers = copyAnswers(s.Answers)
	out.Scores = make(map[string]ScoreEntry, len(s.Scores))
	for k, v := range s.Scores {
		tags := make([]string, len(v.Tags))
		copy(tags, v.Tags)
		v.Tags = tags
		out.Scores[k] = v
	}
	out.Errors = make(map[string]string, len(s.Errors))
	for k, v := range s.Errors {
		out.Errors[k] = v
	}
	return &out
}

func copyAnswers(in map[string]funnel.AnswerValue) map[string]funnel.AnswerValue {
	out := make(map[string]funnel.AnswerValue, len(in))
	for k, v := range in {
		if v.Kind == funnel.AnswerMulti {
			list := make([]string, len(v.List))
			copy(list, v.List)
			v.List = list
		}
		out[k] = v
	}
	return out
}

// TotalScore sums all score entries.
func (s *Session) TotalScore() int {
	total := 0
	for _, e := range s.Scores {
		total += e.Score
	}
	return total
}

// AllTags returns the deduplicated, sorted union of all entry tags.
// Sorting keeps the submission payload deterministic.
func (s *Session) AllTags() []string {
	seen := make(map[string]bool)
	for _, e := range s.Scores {
		for _, t := range e.Tags {
			seen[t] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ContactValue returns the trimmed text answer of a contact field.
func (s *Session) ContactValue(name string) string {
	a, ok := s.Answers[name]
	if !ok || a.Kind != funnel.AnswerText {
		return ""
	}
	return a.Text
}
