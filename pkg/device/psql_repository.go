package device

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

// PostgresDeviceRepository implements DeviceRepository using PostgreSQL
type PostgresDeviceRepository struct {
	db DBTX
}

// NewPostgresDeviceRepository creates a new PostgreSQL device repository
func NewPostgresDeviceRepository(db DBTX) *PostgresDeviceRepository {
	return &PostgresDeviceRepository{db: db}
}

// GetOrCreateUnconfirmed inserts an unconfirmed device unless a record for
// (login_id, name) already exists, then reads whichever row won. The unique
// constraint on (login_id, name) makes concurrent calls converge on one
// secret.
func (r *PostgresDeviceRepository) GetOrCreateUnconfirmed(ctx context.Context, params GetOrCreateDeviceParams) (Device, error) {
	insert := `
		INSERT INTO totp_device (id, login_id, name, secret_key, confirmed, created_at)
		VALUES ($1, $2, $3, $4, false, $5)
		ON CONFLICT (login_id, name) DO NOTHING`

	_, err := r.db.Exec(ctx, insert, uuid.New(), params.LoginID, params.Name, params.SecretKey, time.Now().UTC())
	if err != nil {
		return Device{}, fmt.Errorf("failed to create device: %w", err)
	}

	return r.FindByLoginIDAndName(ctx, params.LoginID, params.Name)
}

func (r *PostgresDeviceRepository) FindConfirmedByLoginID(ctx context.Context, loginID uuid.UUID) (Device, error) {
	query := `
		SELECT id, login_id, name, secret_key, confirmed, created_at, COALESCE(confirmed_at, 'epoch'::timestamptz)
		FROM totp_device
		WHERE login_id = $1 AND confirmed = true
		LIMIT 1`

	return r.scanOne(r.db.QueryRow(ctx, query, loginID))
}

func (r *PostgresDeviceRepository) FindByLoginIDAndName(ctx context.Context, loginID uuid.UUID, name string) (Device, error) {
	query := `
		SELECT id, login_id, name, secret_key, confirmed, created_at, COALESCE(confirmed_at, 'epoch'::timestamptz)
		FROM totp_device
		WHERE login_id = $1 AND name = $2`

	return r.scanOne(r.db.QueryRow(ctx, query, loginID, name))
}

// Confirm sets confirmed = true. The WHERE clause keeps the original
// confirmed_at on repeated calls.
func (r *PostgresDeviceRepository) Confirm(ctx context.Context, deviceID uuid.UUID) error {
	query := `
		UPDATE totp_device
		SET confirmed = true, confirmed_at = $2
		WHERE id = $1 AND confirmed = false`

	tag, err := r.db.Exec(ctx, query, deviceID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to confirm device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either already confirmed (fine, idempotent) or missing.
		_, err := r.getByID(ctx, deviceID)
		return err
	}
	return nil
}

func (r *PostgresDeviceRepository) getByID(ctx context.Context, deviceID uuid.UUID) (Device, error) {
	query := `
		SELECT id, login_id, name, secret_key, confirmed, created_at, COALESCE(confirmed_at, 'epoch'::timestamptz)
		FROM totp_device
		WHERE id = $1`

	return r.scanOne(r.db.QueryRow(ctx, query, deviceID))
}

func (r *PostgresDeviceRepository) scanOne(row pgx.Row) (Device, error) {
	var d Device
	err := row.Scan(&d.ID, &d.LoginID, &d.Name, &d.SecretKey, &d.Confirmed, &d.CreatedAt, &d.ConfirmedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Device{}, ErrDeviceNotFound
		}
		return Device{}, fmt.Errorf("failed to scan device: %w", err)
	}
	return d, nil
}
