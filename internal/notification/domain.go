// internal/notification/domain.go
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type categorizes a notification for the client feed.
type Type string

const (
	TypeGeneral     Type = "GENERAL"
	TypeEvent       Type = "EVENT"
	TypeCelebration Type = "CELEBRATION"
	TypeReminder    Type = "REMINDER"
	TypeEmergency   Type = "EMERGENCY"
	TypeImportant   Type = "IMPORTANT"
)

// Notification is a broadcast record addressed to all members or to an
// explicit member set. Delivery transport is an external collaborator;
// this service only records. Rows are immutable after creation.
type Notification struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Message       string      `json:"message"`
	Type          Type        `json:"type"`
	TargetAll     bool        `json:"target_all"`
	TargetMembers []uuid.UUID `json:"target_members,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// CreateInput carries everything needed to record a notification.
type CreateInput struct {
	Title         string
	Message       string
	Type          Type
	TargetAll     bool
	TargetMembers []uuid.UUID
}
