// internal/notification/implementation.go
package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var notificationsCreated, _ = otel.Meter("fitclub/notification").Int64Counter(
	"notifications.created",
	metric.WithDescription("Notifications recorded, by target mode"),
)

// Execer is the subset of database/sql shared by *sql.DB and *sql.Tx, so a
// notification insert can ride inside a caller-owned transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Insert records a notification using the given executor. Event
// cancellation and treat approval call this with their own transaction so
// the fan-out commits or rolls back with the rest of the write.
func Insert(ctx context.Context, db Execer, input CreateInput) (*Notification, error) {
	n := &Notification{
		ID:            uuid.New(),
		Title:         input.Title,
		Message:       input.Message,
		Type:          input.Type,
		TargetAll:     input.TargetAll,
		TargetMembers: input.TargetMembers,
		CreatedAt:     time.Now(),
	}
	n.UpdatedAt = n.CreatedAt

	targets := make([]string, len(n.TargetMembers))
	for i, id := range n.TargetMembers {
		targets[i] = id.String()
	}

	query := `
		INSERT INTO notifications (id, title, message, type, target_all, target_members, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db.ExecContext(ctx, query,
		n.ID, n.Title, n.Message, n.Type, n.TargetAll, pq.Array(targets), n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	mode := "members"
	if n.TargetAll {
		mode = "all"
	}
	notificationsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("target.mode", mode)))

	return n, nil
}

// service implements the Service interface.
type service struct {
	db *sql.DB
}

// NewService creates a new notification service instance.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// Create records a standalone notification (the direct admin path).
func (s *service) Create(ctx context.Context, input CreateInput) (*Notification, error) {
	return Insert(ctx, s.db, input)
}

// ListForMember returns the member's feed: broadcasts plus notifications
// that name the member explicitly, newest first.
func (s *service) ListForMember(ctx context.Context, memberID uuid.UUID) ([]*Notification, error) {
	query := `
		SELECT id, title, message, type, target_all, target_members, created_at, updated_at
		FROM notifications
		WHERE target_all = TRUE OR $1 = ANY(target_members)
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, memberID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		var targets pq.StringArray
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Type, &n.TargetAll, &targets, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		for _, raw := range targets {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("malformed target member id %q: %w", raw, err)
			}
			n.TargetMembers = append(n.TargetMembers, id)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
