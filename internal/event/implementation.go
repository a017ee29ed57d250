// internal/event/implementation.go
package event

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fitclub/internal/apperr"
	"fitclub/internal/notification"
)

// Execer is the subset of database/sql shared by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Insert writes an event row using the given executor. The treat workflow
// calls this inside its approval transaction.
func Insert(ctx context.Context, db Execer, e *Event) error {
	query := `
		INSERT INTO events (id, title, description, event_type, location, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := db.ExecContext(ctx, query, e.ID, e.Title, e.Description, e.EventType, e.Location, e.Date)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// service implements the Service interface.
type service struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewService creates a new event service instance.
func NewService(db *sql.DB) Service {
	return &service{
		db:     db,
		tracer: otel.Tracer("fitclub/event"),
	}
}

// Create schedules a new event. Past dates are accepted here; date
// validation is owned by the wire layer.
func (s *service) Create(ctx context.Context, input CreateInput) (*Event, error) {
	e := &Event{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		EventType:   input.EventType,
		Location:    input.Location,
		Date:        input.Date,
	}
	if err := Insert(ctx, s.db, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update merges only the provided fields into the event.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Event, error) {
	e, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		e.Title = *input.Title
	}
	if input.Description != nil {
		e.Description = *input.Description
	}
	if input.EventType != nil {
		e.EventType = *input.EventType
	}
	if input.Location != nil {
		e.Location = *input.Location
	}
	if input.Date != nil {
		date, err := time.Parse(time.RFC3339, *input.Date)
		if err != nil {
			return nil, apperr.BadRequest("INVALID_DATE", "date must be RFC 3339")
		}
		e.Date = date
	}

	query := `
		UPDATE events
		SET title = $1, description = $2, event_type = $3, location = $4, date = $5, updated_at = NOW()
		WHERE id = $6
	`
	if _, err := s.db.ExecContext(ctx, query, e.Title, e.Description, e.EventType, e.Location, e.Date, e.ID); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return e, nil
}

// Cancel soft-cancels the event and notifies every distinct registered
// member in the same transaction, so a cancelled event can never commit
// without its fan-out.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*CancelResult, error) {
	ctx, span := s.tracer.Start(ctx, "event.cancel",
		trace.WithAttributes(attribute.String("event.id", id.String())),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	e := &Event{}
	err = tx.QueryRowContext(ctx, `
		SELECT id, title, description, event_type, location, date, created_at, updated_at
		FROM events
		WHERE id = $1
	`, id).Scan(&e.ID, &e.Title, &e.Description, &e.EventType, &e.Location, &e.Date, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("NO_EVENT", "event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT DISTINCT member_id
		FROM event_registrations
		WHERE event_id = $1 AND member_id IS NOT NULL
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrants: %w", err)
	}
	defer rows.Close()

	var targets []uuid.UUID
	for rows.Next() {
		var memberID uuid.UUID
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("failed to scan registrant: %w", err)
		}
		targets = append(targets, memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "Event has been cancelled"
	}
	originalTitle := e.Title
	e.Title = CancelledPrefix + e.Title
	e.Description = e.Description + "\n\nCANCELLED: " + reason

	_, err = tx.ExecContext(ctx, `
		UPDATE events
		SET title = $1, description = $2, updated_at = NOW()
		WHERE id = $3
	`, e.Title, e.Description, e.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}

	n, err := notification.Insert(ctx, tx, notification.CreateInput{
		Title: "Event Cancelled",
		Message: fmt.Sprintf("The event %q scheduled for %s has been cancelled. %s",
			originalTitle, e.Date.Format("02 Jan 2006"), reason),
		Type:          notification.TypeEvent,
		TargetAll:     false,
		TargetMembers: targets,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}

	span.SetAttributes(attribute.Int("notification.targets", len(targets)))
	return &CancelResult{Event: e, NotificationID: n.ID}, nil
}

// Delete hard-deletes an event, but only when it has no registrations and
// has not already happened.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.getEvent(ctx, id)
	if err != nil {
		return err
	}

	var count int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM event_registrations WHERE event_id = $1
	`, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count registrations: %w", err)
	}
	if count > 0 {
		return apperr.Newf("HAS_REGISTRATIONS", 409,
			"cannot delete event: %d registration(s) found; cancel the event instead to notify registered participants", count)
	}

	if e.Date.Before(time.Now()) {
		return apperr.Conflict("PAST_EVENT", "cannot delete a past event, archive instead")
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// GetByID returns the event with its registered members. Guest-only
// registrations carry no member and are excluded from the list.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Detail, error) {
	e, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.name, m.phone
		FROM event_registrations r
		JOIN members m ON m.id = r.member_id
		WHERE r.event_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	registrants := []Registrant{}
	for rows.Next() {
		var reg Registrant
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan registrant: %w", err)
		}
		registrants = append(registrants, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Detail{Event: e, Registrations: registrants}, nil
}

// GetAll returns future events in ascending date order.
func (s *service) GetAll(ctx context.Context) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, event_type, location, date, created_at, updated_at
		FROM events
		WHERE date > NOW()
		ORDER BY date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.EventType, &e.Location, &e.Date, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// RegisterMember adds a member registration to the event.
func (s *service) RegisterMember(ctx context.Context, eventID, memberID uuid.UUID) (*Registration, error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}

	reg := &Registration{
		ID:       uuid.New(),
		EventID:  eventID,
		MemberID: &memberID,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_registrations (id, event_id, member_id)
		VALUES ($1, $2, $3)
	`, reg.ID, reg.EventID, memberID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("ALREADY_REGISTERED", "member is already registered for this event")
		}
		return nil, fmt.Errorf("failed to insert registration: %w", err)
	}
	return reg, nil
}

// RegisterGuest adds a guest registration with no member reference.
func (s *service) RegisterGuest(ctx context.Context, eventID uuid.UUID, name, phone string) (*Registration, error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}

	reg := &Registration{
		ID:         uuid.New(),
		EventID:    eventID,
		GuestName:  name,
		GuestPhone: phone,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_registrations (id, event_id, guest_name, guest_phone)
		VALUES ($1, $2, $3, $4)
	`, reg.ID, reg.EventID, reg.GuestName, reg.GuestPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to insert guest registration: %w", err)
	}
	return reg, nil
}

func (s *service) getEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	e := &Event{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, event_type, location, date, created_at, updated_at
		FROM events
		WHERE id = $1
	`, id).Scan(&e.ID, &e.Title, &e.Description, &e.EventType, &e.Location, &e.Date, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("NO_EVENT", "event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
