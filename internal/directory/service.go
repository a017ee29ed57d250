// internal/directory/service.go
package directory

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the member directory.
type Service interface {
	Register(ctx context.Context, name, phone, password string) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	PromoteToLeader(ctx context.Context, targetID, actingID uuid.UUID) (*Member, error)
	Demote(ctx context.Context, targetID uuid.UUID) (*Member, error)
	CreateAdmin(ctx context.Context, name, username, phone, password string, creatorID uuid.UUID) (*AuthResult, error)
	GetMember(ctx context.Context, id uuid.UUID) (*Member, error)
	ListMembers(ctx context.Context) ([]*Member, error)
}
