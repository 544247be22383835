package models

import "time"

// Priority levels for a todo item.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Category values a todo item may carry.
const (
	CategoryWork     = "Work"
	CategoryPersonal = "Personal"
	CategoryShopping = "Shopping"
)

// Todo represents a single todo item owned by a user.
// JSON keys follow the wire contract the web client was built against.
type Todo struct {
	ID          int64     `json:"todo_id"`
	UserID      int64     `json:"user_id"`
	Description string    `json:"description"`
	DueDate     *string   `json:"due_date"` // Nullable, ISO date string
	Priority    string    `json:"priority"`
	Category    *string   `json:"category"` // Nullable
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	return c == CategoryWork || c == CategoryPersonal || c == CategoryShopping
}
