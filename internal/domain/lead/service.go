package lead

import (
	"context"
	"errors"
	"log"
	"time"

	"funnelwerk/internal/domain/funnel"
)

// Service owns the submission flow: build, dispatch to the CRM, store,
// notify the dashboard. It also serves the admin follow-up surface.
type Service struct {
	repo       Repository
	dispatcher Dispatcher
	notifier   Notifier
}

// NewService creates a lead service. notifier may be nil.
func NewService(repo Repository, dispatcher Dispatcher, notifier Notifier) *Service {
	return &Service{repo: repo, dispatcher: dispatcher, notifier: notifier}
}

// Submit builds the submission, delivers it to the CRM and stores it.
// Dispatch failure aborts before anything is persisted so the visitor can
// retry. A storage failure after the CRM accepted is logged but not
// returned: failing the request then would make the retry create a
// duplicate lead in the CRM.
func (s *Service) Submit(ctx context.Context, def *funnel.Definition, in BuildInput) (*Submission, error) {
	sub := Build(def, in, time.Now())

	if err := s.dispatcher.Dispatch(ctx, sub); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			return nil, err
		}
		log.Printf("lead_store_failed funnel=%s session=%s error=%q", sub.FunnelID, sub.SessionToken, err)
		return sub, nil
	}

	if s.notifier != nil {
		s.notifier.LeadCreated(sub)
	}

	log.Printf("lead_created id=%d funnel=%s classification=%s score=%d",
		sub.ID, sub.FunnelID, sub.Classification, sub.TotalScore)
	return sub, nil
}

// GetByID returns one submission.
func (s *Service) GetByID(ctx context.Context, id int64) (*Submission, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrLeadNotFound
	}
	return sub, nil
}

// List returns submissions with an optional status filter.
func (s *Service) List(ctx context.Context, status *Status, limit, offset int) ([]*Submission, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}

// Export returns all submissions for the CRM sync job.
func (s *Service) Export(ctx context.Context) ([]*Submission, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus moves a lead through the follow-up lifecycle. Converted
// leads are frozen.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status, notes string) error {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrLeadNotFound
	}
	if sub.IsConverted() {
		return ErrAlreadyConverted
	}
	return s.repo.UpdateStatus(ctx, id, status, notes)
}

// Stats aggregates submissions by status and classification.
func (s *Service) Stats(ctx context.Context) (map[Status]int, map[string]int, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, nil, err
	}
	byClass, err := s.repo.CountByClassification(ctx)
	if err != nil {
		return nil, nil, err
	}
	return byStatus, byClass, nil
}
