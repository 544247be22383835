package monitoring

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avern/todo-tracker-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Reminder periodically scans for incomplete todos whose due date falls
// inside the configured window and records a due-soon event for each. It
// never mutates todos; delivery to the user is the UI's problem.
type Reminder struct {
	db       *sql.DB
	eventSvc services.EventServiceProvider
	schedule cron.Schedule
	window   time.Duration
	done     chan bool
}

// NewReminder creates a reminder scanner driven by a standard cron
// expression.
func NewReminder(db *sql.DB, eventSvc services.EventServiceProvider, cronExpr string, window time.Duration) (*Reminder, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder cron expression %q: %w", cronExpr, err)
	}
	return &Reminder{
		db:       db,
		eventSvc: eventSvc,
		schedule: schedule,
		window:   window,
		done:     make(chan bool),
	}, nil
}

// Run starts the scan loop. It blocks until Stop is called.
func (r *Reminder) Run() {
	log.Info().Msg("Starting background due-date reminder...")

	// Run once immediately on start
	r.scan()

	for {
		next := r.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-r.done:
			timer.Stop()
			log.Info().Msg("Stopping background due-date reminder.")
			return
		case <-timer.C:
			r.scan()
		}
	}
}

// Stop halts the scan loop.
func (r *Reminder) Stop() {
	r.done <- true
}

// scan finds todos due within the window and logs an event per item.
func (r *Reminder) scan() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(r.window).Format("2006-01-02")
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, description, due_date FROM todos WHERE completed = 0 AND due_date IS NOT NULL AND due_date <= ?",
		cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Reminder: failed to query due todos")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, userID  int64
			description string
			dueDate     string
		)
		if err := rows.Scan(&id, &userID, &description, &dueDate); err != nil {
			log.Error().Err(err).Msg("Reminder: failed to scan todo row")
			return
		}

		log.Warn().
			Int64("todo_id", id).
			Int64("user_id", userID).
			Str("due_date", dueDate).
			Msg("Todo is due soon")

		msg := fmt.Sprintf("Todo %q is due by %s", description, dueDate)
		if err := r.eventSvc.CreateEvent(ctx, "todo.due.soon", "warn", msg, &userID); err != nil {
			log.Error().Err(err).Int64("todo_id", id).Msg("Reminder: failed to record event")
		}
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Reminder: row iteration failed")
	}
}
