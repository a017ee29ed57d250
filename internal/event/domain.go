// internal/event/domain.go
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type is the event category. SUNDAY_PROGRAM is reserved for events the
// treat workflow generates on approval.
type Type string

const (
	TypeRegularDay      Type = "REGULAR_DAY"
	TypeSpecialProgram  Type = "SPECIAL_PROGRAM"
	TypeSundayProgram   Type = "SUNDAY_PROGRAM"
	TypeCelebration     Type = "CELEBRATION"
	TypeGuestSession    Type = "GUEST_SESSION"
	TypeIndependenceDay Type = "INDEPENDENCE_DAY"
	TypeOnam            Type = "ONAM"
	TypeRepublicDay     Type = "REPUBLIC_DAY"
	TypeOther           Type = "OTHER"
)

// CancelledPrefix marks a soft-cancelled event's title.
const CancelledPrefix = "[CANCELLED] "

// Event is a scheduled occurrence on the club calendar.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventType   Type      `json:"event_type"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Registration ties a member or a guest to an event. Guest rows carry no
// member id.
type Registration struct {
	ID         uuid.UUID  `json:"id"`
	EventID    uuid.UUID  `json:"event_id"`
	MemberID   *uuid.UUID `json:"member_id,omitempty"`
	GuestName  string     `json:"guest_name,omitempty"`
	GuestPhone string     `json:"guest_phone,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Registrant is the member view returned with event detail. Guest-only
// registrations are filtered out of this list.
type Registrant struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
}

// Detail is an event plus its registered members.
type Detail struct {
	Event         *Event       `json:"event"`
	Registrations []Registrant `json:"registrations"`
}

// CancelResult reports the rewritten event and the fan-out notification.
type CancelResult struct {
	Event          *Event    `json:"event"`
	NotificationID uuid.UUID `json:"notification_id"`
}

// CreateInput carries the admin create payload. Date validation lives in
// the wire layer; this service accepts any date.
type CreateInput struct {
	Title       string
	Description string
	EventType   Type
	Location    string
	Date        time.Time
}

// UpdateInput merges only the provided fields. Date arrives as a string
// and is parsed by the service.
type UpdateInput struct {
	Title       *string
	Description *string
	EventType   *Type
	Location    *string
	Date        *string
}
