// internal/treat/domain.go
package treat

import (
	"time"

	"github.com/google/uuid"
)

// Status is the treat proposal state. PROPOSED is initial; APPROVED leads
// to COMPLETED; CANCELLED is terminal and reachable generically.
type Status string

const (
	StatusProposed  Status = "PROPOSED"
	StatusApproved  Status = "APPROVED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid reports whether s is one of the defined statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusProposed, StatusApproved, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// SundayTreat is a member's offer to host the Sunday breakfast.
type SundayTreat struct {
	ID           uuid.UUID  `json:"id"`
	HostMemberID uuid.UUID  `json:"host_member_id"`
	ProposedDate time.Time  `json:"proposed_date"`
	Location     string     `json:"location,omitempty"`
	Status       Status     `json:"status"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Host is the member summary returned alongside a proposal.
type Host struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
}

// Proposal pairs a treat with its host.
type Proposal struct {
	Treat *SundayTreat `json:"treat"`
	Host  Host         `json:"host"`
}
