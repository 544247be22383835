package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/avern/todo-tracker-be/internal/models"
)

func createTestUser(t *testing.T, db *sql.DB, username string) int64 {
	t.Helper()
	res, err := db.Exec("INSERT INTO users(username, password_hash) VALUES(?, ?)", username, "x")
	if err != nil {
		t.Fatalf("insert user error: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id error: %v", err)
	}
	return id
}

func strPtr(s string) *string { return &s }

func TestTodoRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewTodoService(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")

	created, err := svc.CreateTodo(ctx, alice, TodoInput{Description: "buy milk", Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("CreateTodo() error: %v", err)
	}
	if created.Description != "buy milk" || created.Priority != models.PriorityHigh {
		t.Fatalf("unexpected todo: %+v", created)
	}
	if created.Completed {
		t.Fatal("new todo must not be completed")
	}
	if created.UserID != alice {
		t.Fatalf("expected owner %d, got %d", alice, created.UserID)
	}

	todos, err := svc.GetTodosForUser(ctx, alice)
	if err != nil {
		t.Fatalf("GetTodosForUser() error: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != created.ID {
		t.Fatalf("expected the created todo back, got %+v", todos)
	}

	updated, err := svc.UpdateTodo(ctx, alice, created.ID, TodoInput{
		Description: "buy milk",
		Priority:    models.PriorityLow,
		Completed:   true,
	})
	if err != nil {
		t.Fatalf("UpdateTodo() error: %v", err)
	}
	if !updated.Completed || updated.Priority != models.PriorityLow {
		t.Fatalf("update not reflected: %+v", updated)
	}

	todos, err = svc.GetTodosForUser(ctx, alice)
	if err != nil {
		t.Fatalf("GetTodosForUser() error: %v", err)
	}
	if len(todos) != 1 || !todos[0].Completed {
		t.Fatalf("list does not reflect update: %+v", todos)
	}

	if err := svc.DeleteTodo(ctx, alice, created.ID); err != nil {
		t.Fatalf("DeleteTodo() error: %v", err)
	}

	todos, err = svc.GetTodosForUser(ctx, alice)
	if err != nil {
		t.Fatalf("GetTodosForUser() error: %v", err)
	}
	if len(todos) != 0 {
		t.Fatalf("expected empty list after delete, got %+v", todos)
	}
}

func TestTodoDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewTodoService(db)
	alice := createTestUser(t, db, "alice")

	created, err := svc.CreateTodo(context.Background(), alice, TodoInput{Description: "buy milk"})
	if err != nil {
		t.Fatalf("CreateTodo() error: %v", err)
	}
	if created.Priority != models.PriorityLow {
		t.Fatalf("expected default priority Low, got %q", created.Priority)
	}
	if created.DueDate != nil || created.Category != nil {
		t.Fatalf("expected nil due date and category, got %+v", created)
	}
}

func TestTodoValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewTodoService(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")

	tests := []struct {
		name string
		in   TodoInput
	}{
		{"short description", TodoInput{Description: "ab"}},
		{"whitespace description", TodoInput{Description: "  a  "}},
		{"unknown priority", TodoInput{Description: "buy milk", Priority: "Urgent"}},
		{"unknown category", TodoInput{Description: "buy milk", Category: strPtr("Hobby")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateTodo(ctx, alice, tt.in); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestListOrderingNullsLast(t *testing.T) {
	db := newTestDB(t)
	svc := NewTodoService(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")

	undated, err := svc.CreateTodo(ctx, alice, TodoInput{Description: "someday"})
	if err != nil {
		t.Fatalf("CreateTodo() error: %v", err)
	}
	late, err := svc.CreateTodo(ctx, alice, TodoInput{Description: "later", DueDate: strPtr("2026-12-31")})
	if err != nil {
		t.Fatalf("CreateTodo() error: %v", err)
	}
	early, err := svc.CreateTodo(ctx, alice, TodoInput{Description: "soon", DueDate: strPtr("2026-01-15")})
	if err != nil {
		t.Fatalf("CreateTodo() error: %v", err)
	}

	todos, err := svc.GetTodosForUser(ctx, alice)
	if err != nil {
		t.Fatalf("GetTodosForUser() error: %v", err)
	}
	if len(todos) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(todos))
	}
	if todos[0].ID != early.ID || todos[1].ID != late.ID || todos[2].ID != undated.ID {
		t.Fatalf("wrong order: got %d, %d, %d", todos[0].ID, todos[1].ID, todos[2].ID)
	}
}

func TestCrossUserAccessLooksLikeNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewTodoService(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	created, err := svc.CreateTodo(ctx, bob, TodoInput{Description: "bob's secret"})
	if err != nil {
		t.Fatalf("CreateTodo() error: %v", err)
	}

	// Alice touching Bob's todo must look exactly like a missing id.
	_, foreignErr := svc.UpdateTodo(ctx, alice, created.ID, TodoInput{Description: "hijacked"})
	_, missingErr := svc.UpdateTodo(ctx, alice, 999999, TodoInput{Description: "hijacked"})
	if !errors.Is(foreignErr, ErrTodoNotFound) || !errors.Is(missingErr, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound for both, got %v and %v", foreignErr, missingErr)
	}
	if foreignErr.Error() != missingErr.Error() {
		t.Fatalf("outcomes differ: %q vs %q", foreignErr, missingErr)
	}

	if err := svc.DeleteTodo(ctx, alice, created.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound on foreign delete, got %v", err)
	}

	// Bob's todo is untouched.
	got, err := svc.GetTodosForUser(ctx, bob)
	if err != nil {
		t.Fatalf("GetTodosForUser() error: %v", err)
	}
	if len(got) != 1 || got[0].Description != "bob's secret" {
		t.Fatalf("bob's todo was altered: %+v", got)
	}

	// And Alice never sees it.
	got, err = svc.GetTodosForUser(ctx, alice)
	if err != nil {
		t.Fatalf("GetTodosForUser() error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("alice can see foreign todos: %+v", got)
	}
}

func TestImportAssignsOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewTodoService(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")

	records := []TodoInput{
		{Description: "buy milk"},
		{Description: "walk dog", DueDate: strPtr("2026-03-01"), Priority: models.PriorityMedium},
		{Description: "file taxes", Category: strPtr(models.CategoryWork), Completed: true},
	}

	imported, err := svc.ImportTodos(ctx, alice, records)
	if err != nil {
		t.Fatalf("ImportTodos() error: %v", err)
	}
	if imported != len(records) {
		t.Fatalf("expected %d imported, got %d", len(records), imported)
	}

	todos, err := svc.GetTodosForUser(ctx, alice)
	if err != nil {
		t.Fatalf("GetTodosForUser() error: %v", err)
	}
	if len(todos) != len(records) {
		t.Fatalf("expected %d todos visible, got %d", len(records), len(todos))
	}
	for _, todo := range todos {
		if todo.UserID != alice {
			t.Fatalf("imported todo %d owned by %d, want %d", todo.ID, todo.UserID, alice)
		}
	}
}

// Import is deliberately non-atomic: records before the first failure stay.
func TestImportPartialFailureKeepsEarlierInserts(t *testing.T) {
	db := newTestDB(t)
	svc := NewTodoService(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")

	records := []TodoInput{
		{Description: "buy milk"},
		{Description: "ab"}, // too short, fails validation
		{Description: "never reached"},
	}

	imported, err := svc.ImportTodos(ctx, alice, records)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if imported != 1 {
		t.Fatalf("expected 1 record imported before failure, got %d", imported)
	}

	todos, err := svc.GetTodosForUser(ctx, alice)
	if err != nil {
		t.Fatalf("GetTodosForUser() error: %v", err)
	}
	if len(todos) != 1 || todos[0].Description != "buy milk" {
		t.Fatalf("expected only the first record inserted, got %+v", todos)
	}
}
