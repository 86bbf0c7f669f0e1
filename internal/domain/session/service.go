package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"funnelwerk/internal/domain/funnel"
	"funnelwerk/internal/domain/lead"
)

// Service keeps active sessions in memory, mirrors every answer change
// into the progress store for recovery, and hands finished sessions to the
// lead intake. Sessions are transient by design: a process restart loses
// the in-memory map but not the progress rows, from which a returning
// visitor's session is rebuilt.
type Service struct {
	registry *funnel.Registry
	progress ProgressStore
	leads    LeadIntake

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService wires the session service.
func NewService(registry *funnel.Registry, progress ProgressStore, leads LeadIntake) *Service {
	return &Service{
		registry: registry,
		progress: progress,
		leads:    leads,
		sessions: make(map[string]*Session),
	}
}

// Start opens a fresh session at step 0 with empty answers, regardless of
// any persisted progress for earlier sessions.
func (s *Service) Start(funnelID, userAgent, referrer string) (*Session, *funnel.Definition, error) {
	def, err := s.registry.Get(funnelID)
	if err != nil {
		return nil, nil, err
	}

	sess := New(funnelID, userAgent, referrer)

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	view := sess.clone()
	s.mu.Unlock()

	log.Printf("session_started funnel=%s token=%s", funnelID, sess.Token)
	return view, def, nil
}

// Get returns a read-only copy of a session, rebuilding it from persisted
// progress when it is not in memory (process restart, returning visitor).
func (s *Service) Get(ctx context.Context, funnelID, token string) (*Session, *funnel.Definition, error) {
	sess, def, err := s.lookup(ctx, funnelID, token)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	view := sess.clone()
	s.mu.Unlock()
	return view, def, nil
}

// lookup returns the live session. Callers must hold s.mu for any access
// to its maps or step index; only clones leave the service.
func (s *Service) lookup(ctx context.Context, funnelID, token string) (*Session, *funnel.Definition, error) {
	def, err := s.registry.Get(funnelID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	sess, ok := s.sessions[token]
	s.mu.Unlock()
	if ok {
		if sess.FunnelID != funnelID {
			return nil, nil, ErrFunnelMismatch
		}
		return sess, def, nil
	}

	rec, err := s.progress.Load(ctx, token, funnelID)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, ErrSessionNotFound
	}

	sess = resume(token, funnelID, def, rec)

	s.mu.Lock()
	if existing, ok := s.sessions[token]; ok {
		sess = existing
	} else {
		s.sessions[token] = sess
	}
	step := sess.CurrentStep
	s.mu.Unlock()

	log.Printf("session_resumed funnel=%s token=%s step=%d", funnelID, token, step)
	return sess, def, nil
}

// resume rebuilds a session from a recovery record. Consent is not part of
// the persisted blob, so a resumed visitor re-confirms it.
func resume(token, funnelID string, def *funnel.Definition, rec *ProgressRecord) *Session {
	sess := New(funnelID, "", "")
	sess.Token = token
	if rec.Answers != nil {
		sess.Answers = rec.Answers
	}
	if rec.Scores != nil {
		sess.Scores = rec.Scores
	}
	if rec.CurrentStep >= 0 && rec.CurrentStep < len(def.Steps) {
		sess.CurrentStep = rec.CurrentStep
	}
	return sess
}

func (s *Service) engine(ctx context.Context, funnelID, token string) (*Engine, *Session, *funnel.Definition, error) {
	sess, def, err := s.lookup(ctx, funnelID, token)
	if err != nil {
		return nil, nil, nil, err
	}
	eng, err := NewEngine(def, sess)
	if err != nil {
		return nil, nil, nil, err
	}
	return eng, sess, def, nil
}

// mutate runs one engine mutation under the service lock. On success the
// progress snapshot and the caller's copy are both taken while the lock is
// still held, so neither can observe a concurrent write.
func (s *Service) mutate(ctx context.Context, sess *Session, persist bool, op func() error) (*Session, error) {
	s.mu.Lock()
	err := op()
	var rec *ProgressRecord
	var view *Session
	if err == nil {
		if persist {
			rec = snapshot(sess)
		}
		view = sess.clone()
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if rec != nil {
		s.persist(ctx, sess.Token, sess.FunnelID, rec)
	}
	return view, nil
}

func (s *Service) persist(ctx context.Context, token, funnelID string, rec *ProgressRecord) {
	if err := s.progress.Save(ctx, token, funnelID, rec); err != nil {
		// Recovery data is best-effort; the live session is unaffected.
		log.Printf("progress_persist_failed token=%s error=%q", token, err)
	}
}

// snapshot deep-copies the recoverable part of a session. Must be called
// with s.mu held.
func snapshot(sess *Session) *ProgressRecord {
	rec := &ProgressRecord{
		Answers:     copyAnswers(sess.Answers),
		Scores:      make(map[string]ScoreEntry, len(sess.Scores)),
		CurrentStep: sess.CurrentStep,
	}
	for k, v := range sess.Scores {
		tags := make([]string, len(v.Tags))
		copy(tags, v.Tags)
		v.Tags = tags
		rec.Scores[k] = v
	}
	return rec
}

// SelectSingle applies a single-select answer and persists progress.
func (s *Service) SelectSingle(ctx context.Context, funnelID, token, field, optionID string) (*Session, error) {
	eng, sess, _, err := s.engine(ctx, funnelID, token)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, true, func() error { return eng.SelectSingle(field, optionID) })
}

// ToggleMulti toggles a multi-select option and persists progress.
func (s *Service) ToggleMulti(ctx context.Context, funnelID, token, field, optionID string) (*Session, error) {
	eng, sess, _, err := s.engine(ctx, funnelID, token)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, true, func() error { return eng.ToggleMulti(field, optionID) })
}

// SetText applies a contact text input and persists progress.
func (s *Service) SetText(ctx context.Context, funnelID, token, field, value string) (*Session, error) {
	eng, sess, _, err := s.engine(ctx, funnelID, token)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, true, func() error { return eng.SetText(field, value) })
}

// SetConsent records the GDPR checkbox. Consent is not part of the
// recovery blob, so nothing is persisted.
func (s *Service) SetConsent(ctx context.Context, funnelID, token string, consent bool) (*Session, error) {
	eng, sess, _, err := s.engine(ctx, funnelID, token)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, false, func() error { return eng.SetConsent(consent) })
}

// Result is the outcome of a navigation call that may have submitted.
type Result struct {
	Session    *Session
	Submitted  bool
	Submission *lead.Submission
}

// Next advances the funnel. On the last step it submits instead, matching
// the single forward control the funnel UI exposes.
func (s *Service) Next(ctx context.Context, funnelID, token string) (*Result, error) {
	eng, sess, def, err := s.engine(ctx, funnelID, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	last := eng.OnLastStep()
	s.mu.Unlock()
	if last {
		return s.submit(ctx, eng, sess, def)
	}

	view, err := s.mutate(ctx, sess, true, eng.Advance)
	if err != nil {
		return nil, err
	}
	return &Result{Session: view}, nil
}

// Back steps backwards, keeping answers and score entries.
func (s *Service) Back(ctx context.Context, funnelID, token string) (*Session, error) {
	eng, sess, _, err := s.engine(ctx, funnelID, token)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, true, eng.Back)
}

// Skip submits from an optional-qualification step without requiring its
// questions to be answered.
func (s *Service) Skip(ctx context.Context, funnelID, token string) (*Result, error) {
	eng, sess, def, err := s.engine(ctx, funnelID, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	can := eng.CanSkip()
	s.mu.Unlock()
	if !can {
		return nil, ErrNotOptionalStep
	}
	return s.submit(ctx, eng, sess, def)
}

// Submit finalizes the session from its last step.
func (s *Service) Submit(ctx context.Context, funnelID, token string) (*Result, error) {
	eng, sess, def, err := s.engine(ctx, funnelID, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	last := eng.OnLastStep()
	s.mu.Unlock()
	if !last {
		return nil, ErrStepIncomplete
	}
	return s.submit(ctx, eng, sess, def)
}

// submit guards the busy flag, validates the closing step, dispatches and
// finalizes. The service mutex is not held across the outbound call.
func (s *Service) submit(ctx context.Context, eng *Engine, sess *Session, def *funnel.Definition) (*Result, error) {
	s.mu.Lock()
	switch sess.Status {
	case StatusComplete:
		s.mu.Unlock()
		return nil, ErrSessionComplete
	case StatusSubmitting:
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	step := eng.Step()
	if step.Type == funnel.StepContact {
		if !eng.ValidateContact() {
			s.mu.Unlock()
			return nil, ErrStepInvalid
		}
	} else if !eng.StepComplete(step) && !eng.CanSkip() {
		s.mu.Unlock()
		return nil, ErrStepIncomplete
	}

	sess.Status = StatusSubmitting
	// Copied under the lock; the intake must not read live session maps.
	in := lead.BuildInput{
		SessionToken: sess.Token,
		Answers:      copyAnswers(sess.Answers),
		TotalScore:   sess.TotalScore(),
		Tags:         sess.AllTags(),
		GDPRConsent:  sess.GDPRConsent,
		UserAgent:    sess.UserAgent,
		Referrer:     sess.Referrer,
	}
	s.mu.Unlock()

	sub, err := s.leads.Submit(ctx, def, in)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		sess.Status = StatusCollecting
		if errors.Is(err, lead.ErrDuplicateSubmission) {
			// The CRM already has this lead; retrying would not help.
			return nil, err
		}
		// Stay on the last step; the visitor may press submit again.
		sess.Errors[ErrorKeySubmit] = "Ihre Anfrage konnte nicht übermittelt werden. Bitte versuchen Sie es erneut."
		return nil, ErrDispatchFailed
	}

	sess.Status = StatusComplete
	delete(sess.Errors, ErrorKeySubmit)

	if cerr := s.progress.Clear(ctx, sess.Token, sess.FunnelID); cerr != nil {
		log.Printf("progress_clear_failed token=%s error=%q", sess.Token, cerr)
	}

	return &Result{Session: sess.clone(), Submitted: true, Submission: sub}, nil
}

// Drop discards an in-memory session and purges its recovery data. Used
// when a visitor explicitly abandons the funnel.
func (s *Service) Drop(ctx context.Context, funnelID, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()

	return s.progress.Clear(ctx, token, funnelID)
}
