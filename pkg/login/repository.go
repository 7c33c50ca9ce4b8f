package login

import (
	"context"

	"github.com/google/uuid"
)

// CreateLoginParams represents parameters for creating a login record.
type CreateLoginParams struct {
	Username     string
	PasswordHash string
}

// LoginRepository defines the interface for credential storage operations.
type LoginRepository interface {
	Create(ctx context.Context, params CreateLoginParams) (Login, error)
	FindByUsername(ctx context.Context, username string) (Login, error)
	GetByID(ctx context.Context, id uuid.UUID) (Login, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}
