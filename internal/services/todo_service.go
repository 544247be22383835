package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avern/todo-tracker-be/internal/models"
)

var (
	// ErrValidation is returned for bad input shape or length.
	ErrValidation = errors.New("validation failed")
	// ErrTodoNotFound covers both a genuinely missing todo and a todo owned
	// by someone else. Callers must not be able to tell the two apart.
	ErrTodoNotFound = errors.New("todo not found or unauthorized")
)

// TodoInput carries the client-supplied fields of a todo. It deliberately
// has no user_id: ownership always comes from the authenticated caller.
type TodoInput struct {
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    string  `json:"priority"`
	Category    *string `json:"category"`
	Completed   bool    `json:"completed"`
}

// TodoServiceProvider defines the interface for todo services. Every
// operation is scoped to the given owner.
type TodoServiceProvider interface {
	CreateTodo(ctx context.Context, userID int64, in TodoInput) (models.Todo, error)
	GetTodosForUser(ctx context.Context, userID int64) ([]models.Todo, error)
	UpdateTodo(ctx context.Context, userID, todoID int64, in TodoInput) (models.Todo, error)
	DeleteTodo(ctx context.Context, userID, todoID int64) error
	ImportTodos(ctx context.Context, userID int64, records []TodoInput) (int, error)
}

// TodoService provides ownership-scoped CRUD over todo items.
type TodoService struct {
	db *sql.DB
}

// NewTodoService creates a new TodoService.
func NewTodoService(db *sql.DB) *TodoService {
	return &TodoService{db: db}
}

// normalize validates in and applies defaults, returning the cleaned input.
func normalize(in TodoInput) (TodoInput, error) {
	in.Description = strings.TrimSpace(in.Description)
	if len(in.Description) < 3 {
		return in, fmt.Errorf("%w: description must be at least 3 characters", ErrValidation)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityLow
	}
	if !models.ValidPriority(in.Priority) {
		return in, fmt.Errorf("%w: unknown priority %q", ErrValidation, in.Priority)
	}
	if in.Category != nil && *in.Category == "" {
		in.Category = nil
	}
	if in.Category != nil && !models.ValidCategory(*in.Category) {
		return in, fmt.Errorf("%w: unknown category %q", ErrValidation, *in.Category)
	}
	if in.DueDate != nil && *in.DueDate == "" {
		in.DueDate = nil
	}
	return in, nil
}

// CreateTodo validates and inserts a new todo owned by userID.
func (s *TodoService) CreateTodo(ctx context.Context, userID int64, in TodoInput) (models.Todo, error) {
	in, err := normalize(in)
	if err != nil {
		return models.Todo{}, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO todos (user_id, description, due_date, priority, category, completed) VALUES (?, ?, ?, ?, ?, ?)",
		userID, in.Description, in.DueDate, in.Priority, in.Category, in.Completed)
	if err != nil {
		return models.Todo{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Todo{}, err
	}
	return s.getTodoScoped(ctx, userID, id)
}

// GetTodosForUser returns all todos owned by userID, ordered by due date
// ascending with undated items last. The id tiebreak keeps the order stable.
func (s *TodoService) GetTodosForUser(ctx context.Context, userID int64) ([]models.Todo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, description, due_date, priority, category, completed, created_at FROM todos WHERE user_id = ? ORDER BY due_date ASC NULLS LAST, id ASC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Description, &t.DueDate, &t.Priority, &t.Category, &t.Completed, &t.CreatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// UpdateTodo replaces every client-editable field of the todo. The WHERE
// clause conjoins id and owner so a foreign todo is indistinguishable from
// a missing one.
func (s *TodoService) UpdateTodo(ctx context.Context, userID, todoID int64, in TodoInput) (models.Todo, error) {
	in, err := normalize(in)
	if err != nil {
		return models.Todo{}, err
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE todos SET description = ?, due_date = ?, priority = ?, category = ?, completed = ? WHERE id = ? AND user_id = ?",
		in.Description, in.DueDate, in.Priority, in.Category, in.Completed, todoID, userID)
	if err != nil {
		return models.Todo{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Todo{}, err
	}
	if n == 0 {
		return models.Todo{}, ErrTodoNotFound
	}
	return s.getTodoScoped(ctx, userID, todoID)
}

// DeleteTodo removes the todo if and only if userID owns it.
func (s *TodoService) DeleteTodo(ctx context.Context, userID, todoID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM todos WHERE id = ? AND user_id = ?", todoID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// ImportTodos inserts each record under userID's ownership; any owner field
// in the incoming payload is never consulted. The batch is not wrapped in a
// transaction: inserts before the first failing record are kept.
func (s *TodoService) ImportTodos(ctx context.Context, userID int64, records []TodoInput) (int, error) {
	imported := 0
	for _, rec := range records {
		rec, err := normalize(rec)
		if err != nil {
			return imported, fmt.Errorf("record %d: %w", imported, err)
		}
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO todos (user_id, description, due_date, priority, category, completed) VALUES (?, ?, ?, ?, ?, ?)",
			userID, rec.Description, rec.DueDate, rec.Priority, rec.Category, rec.Completed)
		if err != nil {
			return imported, fmt.Errorf("record %d: %w", imported, err)
		}
		imported++
	}
	return imported, nil
}

func (s *TodoService) getTodoScoped(ctx context.Context, userID, todoID int64) (models.Todo, error) {
	var t models.Todo
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, description, due_date, priority, category, completed, created_at FROM todos WHERE id = ? AND user_id = ?",
		todoID, userID)
	err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.DueDate, &t.Priority, &t.Category, &t.Completed, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Todo{}, ErrTodoNotFound
		}
		return models.Todo{}, err
	}
	return t, nil
}
