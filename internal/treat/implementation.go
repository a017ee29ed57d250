// internal/treat/implementation.go
package treat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"fitclub/internal/apperr"
	"fitclub/internal/event"
	"fitclub/internal/notification"
)

var treatsApproved, _ = otel.Meter("fitclub/treat").Int64Counter(
	"treats.approved",
	metric.WithDescription("Sunday treat proposals approved"),
)

// service implements the Service interface.
type service struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewService creates a new treat workflow instance.
func NewService(db *sql.DB) Service {
	return &service{
		db:     db,
		tracer: otel.Tracer("fitclub/treat"),
	}
}

// Propose registers a hosting offer for the member. A host may have only
// one PROPOSED treat outstanding at a time.
func (s *service) Propose(ctx context.Context, hostID uuid.UUID, proposedDate time.Time, location string) (*Proposal, error) {
	if proposedDate.Before(time.Now()) {
		return nil, apperr.BadRequest("PAST_DATE", "the proposed date cannot be in the past")
	}

	var outstanding int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sunday_treats WHERE host_member_id = $1 AND status = $2
	`, hostID, StatusProposed).Scan(&outstanding)
	if err != nil {
		return nil, fmt.Errorf("failed to check outstanding proposals: %w", err)
	}
	if outstanding > 0 {
		return nil, apperr.Conflict("PENDING_PROPOSAL", "you already have a pending hosting proposal; wait until it is processed")
	}

	host := Host{ID: hostID}
	err = s.db.QueryRowContext(ctx, `SELECT name, phone FROM members WHERE id = $1`, hostID).
		Scan(&host.Name, &host.Phone)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("MEMBER_NOT_FOUND", "member not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	t := &SundayTreat{
		ID:           uuid.New(),
		HostMemberID: hostID,
		ProposedDate: proposedDate,
		Location:     location,
		Status:       StatusProposed,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO sunday_treats (id, host_member_id, proposed_date, location, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, t.ID, t.HostMemberID, t.ProposedDate, nullableString(t.Location), t.Status).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to register proposal: %w", err)
	}

	return &Proposal{Treat: t, Host: host}, nil
}

// Approve flips a PROPOSED treat to APPROVED and, in the same
// transaction, creates the SUNDAY_PROGRAM calendar event and the approval
// notification for the host. A failure in any step rolls back all of them.
func (s *service) Approve(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "treat.approve",
		trace.WithAttributes(attribute.String("treat.id", id.String())),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	t := &SundayTreat{}
	host := Host{}
	var location sql.NullString
	var approvedAt sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT t.id, t.host_member_id, t.proposed_date, t.location, t.status, t.approved_at, t.created_at, t.updated_at,
		       m.name, m.phone
		FROM sunday_treats t
		JOIN members m ON m.id = t.host_member_id
		WHERE t.id = $1
		FOR UPDATE OF t
	`, id).Scan(&t.ID, &t.HostMemberID, &t.ProposedDate, &location, &t.Status, &approvedAt, &t.CreatedAt, &t.UpdatedAt,
		&host.Name, &host.Phone)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("NO_TREAT", "the Sunday treat request is not available")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get treat: %w", err)
	}
	t.Location = location.String
	host.ID = t.HostMemberID

	if t.Status != StatusProposed {
		return nil, apperr.Newf("INVALID_STATE_TRANSITION", 409,
			"cannot approve treat with status %s", t.Status)
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE sunday_treats
		SET status = $1, approved_at = $2, updated_at = NOW()
		WHERE id = $3
	`, StatusApproved, now, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to approve treat: %w", err)
	}
	t.Status = StatusApproved
	t.ApprovedAt = &now

	eventLocation := t.Location
	if eventLocation == "" {
		eventLocation = host.Name + "'s residence"
	}
	calendarEvent := &event.Event{
		ID:          uuid.New(),
		Title:       fmt.Sprintf("Sunday Breakfast at %s's", host.Name),
		Description: fmt.Sprintf("Sunday Breakfast hosted by %s", host.Name),
		EventType:   event.TypeSundayProgram,
		Location:    eventLocation,
		Date:        t.ProposedDate,
	}
	if err := event.Insert(ctx, tx, calendarEvent); err != nil {
		return nil, err
	}

	_, err = notification.Insert(ctx, tx, notification.CreateInput{
		Title: "Sunday Treat Approved",
		Message: fmt.Sprintf("Your Sunday breakfast hosting request for %s has been approved. Thank you for your hospitality",
			t.ProposedDate.Format("02 Jan 2006")),
		Type:          notification.TypeGeneral,
		TargetAll:     false,
		TargetMembers: []uuid.UUID{t.HostMemberID},
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approval: %w", err)
	}

	treatsApproved.Add(ctx, 1)
	return &Proposal{Treat: t, Host: host}, nil
}

// ChangeStatus is the generic admin transition: any status may move to
// any other. It bypasses the approval side effects on purpose, as a
// manual-correction escape hatch; approving through here creates no event.
func (s *service) ChangeStatus(ctx context.Context, id uuid.UUID, status Status) (*Proposal, error) {
	if !status.IsValid() {
		return nil, apperr.BadRequest("INVALID_STATUS", "unknown treat status")
	}

	p, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE sunday_treats
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to change status: %w", err)
	}

	p.Treat.Status = status
	return p, nil
}

// Delete removes a proposal, but only for its own host.
func (s *service) Delete(ctx context.Context, id, hostID uuid.UUID) error {
	var found uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM sunday_treats WHERE id = $1 AND host_member_id = $2
	`, id, hostID).Scan(&found)
	if err == sql.ErrNoRows {
		return apperr.Forbidden("NOT_YOUR_PROPOSAL", "the request is not associated with you")
	}
	if err != nil {
		return fmt.Errorf("failed to get treat: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sunday_treats WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete treat: %w", err)
	}
	return nil
}

// ListForHost returns the host's own future-dated proposals.
func (s *service) ListForHost(ctx context.Context, hostID uuid.UUID) ([]*Proposal, error) {
	return s.list(ctx, `
		SELECT t.id, t.host_member_id, t.proposed_date, t.location, t.status, t.approved_at, t.created_at, t.updated_at,
		       m.name, m.phone
		FROM sunday_treats t
		JOIN members m ON m.id = t.host_member_id
		WHERE t.host_member_id = $1 AND t.proposed_date > NOW()
		ORDER BY t.proposed_date ASC
	`, hostID)
}

// ListAll is the unrestricted admin view.
func (s *service) ListAll(ctx context.Context) ([]*Proposal, error) {
	return s.list(ctx, `
		SELECT t.id, t.host_member_id, t.proposed_date, t.location, t.status, t.approved_at, t.created_at, t.updated_at,
		       m.name, m.phone
		FROM sunday_treats t
		JOIN members m ON m.id = t.host_member_id
		ORDER BY t.proposed_date ASC
	`)
}

func (s *service) list(ctx context.Context, query string, args ...interface{}) ([]*Proposal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query treats: %w", err)
	}
	defer rows.Close()

	var proposals []*Proposal
	for rows.Next() {
		t := &SundayTreat{}
		host := Host{}
		var location sql.NullString
		var approvedAt sql.NullTime
		err := rows.Scan(&t.ID, &t.HostMemberID, &t.ProposedDate, &location, &t.Status, &approvedAt, &t.CreatedAt, &t.UpdatedAt,
			&host.Name, &host.Phone)
		if err != nil {
			return nil, fmt.Errorf("failed to scan treat: %w", err)
		}
		t.Location = location.String
		if approvedAt.Valid {
			t.ApprovedAt = &approvedAt.Time
		}
		host.ID = t.HostMemberID
		proposals = append(proposals, &Proposal{Treat: t, Host: host})
	}
	return proposals, rows.Err()
}

func (s *service) getProposal(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	t := &SundayTreat{}
	host := Host{}
	var location sql.NullString
	var approvedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT t.id, t.host_member_id, t.proposed_date, t.location, t.status, t.approved_at, t.created_at, t.updated_at,
		       m.name, m.phone
		FROM sunday_treats t
		JOIN members m ON m.id = t.host_member_id
		WHERE t.id = $1
	`, id).Scan(&t.ID, &t.HostMemberID, &t.ProposedDate, &location, &t.Status, &approvedAt, &t.CreatedAt, &t.UpdatedAt,
		&host.Name, &host.Phone)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("NO_TREAT", "the Sunday treat request is not available")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get treat: %w", err)
	}
	t.Location = location.String
	if approvedAt.Valid {
		t.ApprovedAt = &approvedAt.Time
	}
	host.ID = t.HostMemberID
	return &Proposal{Treat: t, Host: host}, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
