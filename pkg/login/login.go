package login

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Login represents a credential record for an account that can reach the
// admin area.
type Login struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	LoginID  uuid.UUID
	Username string
}

type LoginService struct {
	repo LoginRepository
}

func NewLoginService(repo LoginRepository) *LoginService {
	return &LoginService{repo: repo}
}

// Login authenticates a username/password pair. Unknown usernames and wrong
// passwords both return ErrInvalidCredentials so the two cases cannot be
// told apart by a caller.
func (s *LoginService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	record, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			slog.Debug("Login attempt for unknown username", "username", username)
			return LoginResult{}, ErrInvalidCredentials
		}
		slog.Error("Failed to look up login", "username", username, "err", err)
		return LoginResult{}, fmt.Errorf("failed to look up login: %w", err)
	}

	valid, err := CheckPasswordHash(password, record.PasswordHash)
	if err != nil || !valid {
		return LoginResult{}, ErrInvalidCredentials
	}

	return LoginResult{LoginID: record.ID, Username: record.Username}, nil
}

// CreateLogin registers a new credential record with a bcrypt-hashed password.
func (s *LoginService) CreateLogin(ctx context.Context, username, password string) (Login, error) {
	if username == "" {
		return Login{}, fmt.Errorf("username cannot be empty")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Login{}, fmt.Errorf("failed to hash password: %w", err)
	}

	record, err := s.repo.Create(ctx, CreateLoginParams{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		return Login{}, err
	}

	slog.Info("Created login", "username", username, "loginId", record.ID)
	return record, nil
}

// GetByID returns the login record for an id.
func (s *LoginService) GetByID(ctx context.Context, id uuid.UUID) (Login, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername returns the login record for a username.
func (s *LoginService) GetByUsername(ctx context.Context, username string) (Login, error) {
	return s.repo.FindByUsername(ctx, username)
}

// HashPassword hashes the plain-text password using bcrypt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPasswordHash compares the plain-text password with the stored hashed password.
func CheckPasswordHash(password, hashedPassword string) (bool, error) {
	if password == "" || hashedPassword == "" {
		return false, fmt.Errorf("password and hashed password cannot be empty")
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		return false, err
	}
	return true, nil
}
