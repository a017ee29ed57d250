// internal/treat/service.go
package treat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service defines the interface for the Sunday treat workflow.
type Service interface {
	Propose(ctx context.Context, hostID uuid.UUID, proposedDate time.Time, location string) (*Proposal, error)
	Approve(ctx context.Context, id uuid.UUID) (*Proposal, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status Status) (*Proposal, error)
	Delete(ctx context.Context, id, hostID uuid.UUID) error
	ListForHost(ctx context.Context, hostID uuid.UUID) ([]*Proposal, error)
	ListAll(ctx context.Context) ([]*Proposal, error)
}
