package login

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresLoginRepository implements LoginRepository using PostgreSQL
type PostgresLoginRepository struct {
	db DBTX
}

// NewPostgresLoginRepository creates a new PostgreSQL login repository
func NewPostgresLoginRepository(db DBTX) *PostgresLoginRepository {
	return &PostgresLoginRepository{db: db}
}

func (r *PostgresLoginRepository) Create(ctx context.Context, params CreateLoginParams) (Login, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO login (id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, password_hash, created_at, updated_at`

	var record Login
	err := r.db.QueryRow(ctx, query, uuid.New(), params.Username, params.PasswordHash, now, now).
		Scan(&record.ID, &record.Username, &record.PasswordHash, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Login{}, ErrUsernameAlreadyExists{Username: params.Username}
		}
		return Login{}, fmt.Errorf("failed to create login: %w", err)
	}
	return record, nil
}

func (r *PostgresLoginRepository) FindByUsername(ctx context.Context, username string) (Login, error) {
	query := `
		SELECT id, username, password_hash, created_at, updated_at
		FROM login
		WHERE username = $1`

	var record Login
	err := r.db.QueryRow(ctx, query, username).
		Scan(&record.ID, &record.Username, &record.PasswordHash, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Login{}, ErrLoginNotFound
		}
		return Login{}, fmt.Errorf("failed to find login: %w", err)
	}
	return record, nil
}

func (r *PostgresLoginRepository) GetByID(ctx context.Context, id uuid.UUID) (Login, error) {
	query := `
		SELECT id, username, password_hash, created_at, updated_at
		FROM login
		WHERE id = $1`

	var record Login
	err := r.db.QueryRow(ctx, query, id).
		Scan(&record.ID, &record.Username, &record.PasswordHash, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Login{}, ErrLoginNotFound
		}
		return Login{}, fmt.Errorf("failed to get login: %w", err)
	}
	return record, nil
}

func (r *PostgresLoginRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE login
		SET password_hash = $2, updated_at = $3
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLoginNotFound
	}
	return nil
}
