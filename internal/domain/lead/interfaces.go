package lead

import "context"

// Dispatcher delivers a submission to the external CRM intake endpoint.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub *Submission) error
}

// Notifier pushes a stored submission to connected dashboard clients.
type Notifier interface {
	LeadCreated(sub *Submission)
}

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, sub *Submission) error
	GetByID(ctx context.Context, id int64) (*Submission, error)
	List(ctx context.Context, status *Status, limit, offset int) ([]*Submission, int, error)
	ListAll(ctx context.Context) ([]*Submission, error)
	UpdateStatus(ctx context.Context, id int64, status Status, notes string) error
	CountByStatus(ctx context.Context) (map[Status]int, error)
	CountByClassification(ctx context.Context) (map[string]int, error)
}
