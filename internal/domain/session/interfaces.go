package session

import (
	"context"

	"funnelwerk/internal/domain/funnel"
	"funnelwerk/internal/domain/lead"
)

// LeadIntake accepts a finished session and turns it into a delivered,
// stored lead. Implemented by the lead service.
type LeadIntake interface {
	Submit(ctx context.Context, def *funnel.Definition, in lead.BuildInput) (*lead.Submission, error)
}
