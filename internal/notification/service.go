// internal/notification/service.go
package notification

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the notification service.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Notification, error)
	ListForMember(ctx context.Context, memberID uuid.UUID) ([]*Notification, error)
}
