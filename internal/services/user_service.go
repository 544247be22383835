package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avern/todo-tracker-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateUsername is returned when registering a username that
	// already exists.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown-username and wrong-password
	// so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(ctx context.Context, username, password string) (models.User, error)
	AuthenticateUser(ctx context.Context, username, password string) (models.User, error)
}

// UserService provides registration and credential verification.
type UserService struct {
	db         *sql.DB
	bcryptCost int
}

// NewUserService creates a new UserService hashing passwords at the given
// bcrypt cost.
func NewUserService(db *sql.DB, bcryptCost int) *UserService {
	return &UserService{db: db, bcryptCost: bcryptCost}
}

// CreateUser registers a new user, hashing their password before it is
// persisted. The plaintext and the hash never appear in logs or responses.
func (s *UserService) CreateUser(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users(username, password_hash) VALUES(?, ?)",
		username, string(hashedPassword))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return s.getUserByID(ctx, id)
}

// AuthenticateUser verifies a user's credentials. Both lookup and password
// comparison failures collapse into ErrInvalidCredentials; the bcrypt
// comparison itself is constant-time.
func (s *UserService) AuthenticateUser(ctx context.Context, username, password string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) getUserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
