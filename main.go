package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avern/todo-tracker-be/internal/api"
	"github.com/avern/todo-tracker-be/internal/auth"
	"github.com/avern/todo-tracker-be/internal/config"
	"github.com/avern/todo-tracker-be/internal/database"
	"github.com/avern/todo-tracker-be/internal/logger"
	"github.com/avern/todo-tracker-be/internal/monitoring"
	"github.com/avern/todo-tracker-be/internal/services"
)

func main() {
	// Load configuration. A missing JWT secret is fatal: the process must
	// not come up able to sign tokens with an empty key.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init()

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up services
	tokens := auth.NewTokenManager(cfg.JWTSecret, 24*time.Hour)
	userService := services.NewUserService(db, cfg.BcryptCost)
	todoService := services.NewTodoService(db)
	eventService := services.NewEventService(db)

	// Set up and run the background due-date reminder
	reminder, err := monitoring.NewReminder(db, eventService, cfg.ReminderCron, cfg.ReminderWindow)
	if err != nil {
		log.Fatalf("Failed to initialize reminder: %v", err)
	}
	go reminder.Run()

	// Set up router
	router := api.NewRouter(api.RouterDeps{
		Tokens:        tokens,
		UserService:   userService,
		TodoService:   todoService,
		EventService:  eventService,
		StoreTimeout:  cfg.StoreTimeout,
		AllowedOrigin: cfg.CORSAllowedOrigin,
	})

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	reminder.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
