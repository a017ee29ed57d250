// internal/directory/domain.go
package directory

import (
	"time"

	"github.com/google/uuid"

	"fitclub/internal/authz"
)

// Member is the club's identity record. The password credential is an
// opaque hashed blob and never leaves this package.
type Member struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Username  string     `json:"username,omitempty"`
	Role      authz.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AuthResult pairs a member with a freshly issued session token.
type AuthResult struct {
	Member *Member `json:"user"`
	Token  string  `json:"token"`
}
