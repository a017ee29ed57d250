// internal/event/service.go
package event

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the event lifecycle manager.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Event, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Event, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*CancelResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Detail, error)
	GetAll(ctx context.Context) ([]*Event, error)
	RegisterMember(ctx context.Context, eventID, memberID uuid.UUID) (*Registration, error)
	RegisterGuest(ctx context.Context, eventID uuid.UUID, name, phone string) (*Registration, error)
}
