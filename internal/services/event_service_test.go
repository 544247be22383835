package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCreateEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	userID := int64(7)
	mock.ExpectExec("INSERT INTO events").
		WithArgs(sqlmock.AnyArg(), "user.register", "info", "Account created", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := NewEventService(db)
	if err := svc.CreateEvent(context.Background(), "user.register", "info", "Account created", &userID); err != nil {
		t.Fatalf("CreateEvent() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestGetEventsForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	userID := int64(7)
	rows := sqlmock.NewRows([]string{"id", "type", "level", "message", "user_id", "created_at"}).
		AddRow("a-uuid", "todo.import", "info", "3 todos imported successfully", userID, time.Now()).
		AddRow("b-uuid", "user.register", "info", "Account created", userID, time.Now())

	mock.ExpectQuery("SELECT id, type, level, message, user_id, created_at FROM events WHERE user_id = \\?").
		WithArgs(userID, 50).
		WillReturnRows(rows)

	svc := NewEventService(db)
	events, err := svc.GetEventsForUser(context.Background(), userID, 50)
	if err != nil {
		t.Fatalf("GetEventsForUser() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != "todo.import" || events[0].UserID == nil || *events[0].UserID != userID {
		t.Fatalf("unexpected event: %+v", events[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestGetEventsForUserQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	wantErr := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT id, type, level, message, user_id, created_at FROM events").
		WillReturnError(wantErr)

	svc := NewEventService(db)
	if _, err := svc.GetEventsForUser(context.Background(), 7, 50); !errors.Is(err, wantErr) {
		t.Fatalf("expected query error to surface, got %v", err)
	}
}
