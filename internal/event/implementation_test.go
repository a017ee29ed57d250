// internal/event/implementation_test.go
package event

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitclub/internal/apperr"
	"fitclub/internal/notification"
)

func newTestService(t *testing.T) (Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db), mock
}

func eventColumns() []string {
	return []string{"id", "title", "description", "event_type", "location", "date", "created_at", "updated_at"}
}

func eventRow(id uuid.UUID, title string, date time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(eventColumns()).
		AddRow(id.String(), title, "Bring your own mat", TypeRegularDay, "Clubhouse", date, now, now)
}

func TestCreate(t *testing.T) {
	svc, mock := newTestService(t)
	date := time.Now().Add(48 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO events`)).
		WithArgs(sqlmock.AnyArg(), "Morning Drill", "Warm-up and circuits", TypeRegularDay, "Clubhouse", date).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e, err := svc.Create(context.Background(), CreateInput{
		Title:       "Morning Drill",
		Description: "Warm-up and circuits",
		EventType:   TypeRegularDay,
		Location:    "Clubhouse",
		Date:        date,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMergesProvidedFields(t *testing.T) {
	svc, mock := newTestService(t)
	id := uuid.New()
	date := time.Now().Add(72 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(id).
		WillReturnRows(eventRow(id, "Morning Drill", date))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE events`)).
		WithArgs("Evening Drill", "Bring your own mat", TypeRegularDay, "Clubhouse", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	title := "Evening Drill"
	e, err := svc.Update(context.Background(), id, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Evening Drill", e.Title)
	// Untouched fields survive the merge.
	assert.Equal(t, "Bring your own mat", e.Description)
	assert.Equal(t, TypeRegularDay, e.EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRejectsBadDate(t *testing.T) {
	svc, mock := newTestService(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(id).
		WillReturnRows(eventRow(id, "Morning Drill", time.Now()))

	bad := "next tuesday"
	e, err := svc.Update(context.Background(), id, UpdateInput{Date: &bad})
	assert.Nil(t, e)
	appErr := apperr.From(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "INVALID_DATE", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRewritesAndNotifies(t *testing.T) {
	svc, mock := newTestService(t)
	id := uuid.New()
	memberA, memberB := uuid.New(), uuid.New()
	date := time.Date(2026, 9, 6, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(id).
		WillReturnRows(eventRow(id, "Onam Sadhya", date))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT member_id`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"member_id"}).
			AddRow(memberA.String()).
			AddRow(memberB.String()))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE events`)).
		WithArgs(
			"[CANCELLED] Onam Sadhya",
			"Bring your own mat\n\nCANCELLED: venue flooded",
			id,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	wantMessage := fmt.Sprintf("The event %q scheduled for %s has been cancelled. venue flooded",
		"Onam Sadhya", "06 Sep 2026")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notifications`)).
		WithArgs(
			sqlmock.AnyArg(),
			"Event Cancelled",
			wantMessage,
			notification.TypeEvent,
			false,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.Cancel(context.Background(), id, "venue flooded")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Event.Title, CancelledPrefix))
	assert.Contains(t, result.Event.Description, "CANCELLED: venue flooded")
	assert.NotEqual(t, uuid.Nil, result.NotificationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelDefaultsReason(t *testing.T) {
	svc, mock := newTestService(t)
	id := uuid.New()
	date := time.Date(2026, 9, 6, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(id).
		WillReturnRows(eventRow(id, "Morning Drill", date))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT member_id`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"member_id"}))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE events`)).
		WithArgs(
			"[CANCELLED] Morning Drill",
			"Bring your own mat\n\nCANCELLED: Event has been cancelled",
			id,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notifications`)).
		WithArgs(
			sqlmock.AnyArg(), "Event Cancelled", sqlmock.AnyArg(), notification.TypeEvent,
			false, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := svc.Cancel(context.Background(), id, "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelUnknownEvent(t *testing.T) {
	svc, mock := newTestService(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	result, err := svc.Cancel(context.Background(), id, "whatever")
	assert.Nil(t, result)
	appErr := apperr.From(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NO_EVENT", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRefusedWhenRegistered(t *testing.T) {
	svc, mock := newTestService(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(id).
		WillReturnRows(eventRow(id, "Morning Drill", time.Now().Add(24*time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM event_registrations`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	err := svc.Delete(context.Background(), id)
	appErr := apperr.From(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "HAS_REGISTRATIONS", appErr.Code)
	assert.Contains(t, appErr.Message, "3 registration(s)")
	assert.Contains(t, appErr.Message, "cancel the event instead")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRefusedForPastEvent(t *testing.T) {
	svc, mock := newTestService(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(id).
		WillReturnRows(eventRow(id, "Last Year's Onam", time.Now().Add(-24*time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM event_registrations`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := svc.Delete(context.Background(), id)
	appErr := apperr.From(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "PAST_EVENT", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	svc, mock := newTestService(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(id).
		WillReturnRows(eventRow(id, "Morning Drill", time.Now().Add(24*time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM event_registrations`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM events WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, svc.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	svc, mock := newTestService(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(id).
		WillReturnRows(eventRow(id, "Morning Drill", time.Now().Add(24*time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta(`JOIN members m ON m.id = r.member_id`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone"}).
			AddRow(uuid.New().String(), "Asha", "9000000001"))

	detail, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, detail.Event.ID)
	require.Len(t, detail.Registrations, 1)
	assert.Equal(t, "Asha", detail.Registrations[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAll(t *testing.T) {
	svc, mock := newTestService(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE date > NOW()`)).
		WillReturnRows(sqlmock.NewRows(eventColumns()).
			AddRow(uuid.New().String(), "Morning Drill", "", TypeRegularDay, "Clubhouse", now.Add(24*time.Hour), now, now).
			AddRow(uuid.New().String(), "Onam Sadhya", "", TypeOnam, "Clubhouse", now.Add(48*time.Hour), now, now))

	events, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterMember(t *testing.T) {
	svc, mock := newTestService(t)
	eventID, memberID := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(eventID).
		WillReturnRows(eventRow(eventID, "Morning Drill", time.Now().Add(24*time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO event_registrations`)).
		WithArgs(sqlmock.AnyArg(), eventID, memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	reg, err := svc.RegisterMember(context.Background(), eventID, memberID)
	require.NoError(t, err)
	require.NotNil(t, reg.MemberID)
	assert.Equal(t, memberID, *reg.MemberID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterMemberTwice(t *testing.T) {
	svc, mock := newTestService(t)
	eventID, memberID := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(eventID).
		WillReturnRows(eventRow(eventID, "Morning Drill", time.Now().Add(24*time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO event_registrations`)).
		WithArgs(sqlmock.AnyArg(), eventID, memberID).
		WillReturnError(&pq.Error{Code: "23505"})

	reg, err := svc.RegisterMember(context.Background(), eventID, memberID)
	assert.Nil(t, reg)
	appErr := apperr.From(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "ALREADY_REGISTERED", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterGuest(t *testing.T) {
	svc, mock := newTestService(t)
	eventID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM events`)).
		WithArgs(eventID).
		WillReturnRows(eventRow(eventID, "Guest Day", time.Now().Add(24*time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO event_registrations`)).
		WithArgs(sqlmock.AnyArg(), eventID, "Visitor", "9111111111").
		WillReturnResult(sqlmock.NewResult(0, 1))

	reg, err := svc.RegisterGuest(context.Background(), eventID, "Visitor", "9111111111")
	require.NoError(t, err)
	assert.Nil(t, reg.MemberID)
	assert.Equal(t, "Visitor", reg.GuestName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
