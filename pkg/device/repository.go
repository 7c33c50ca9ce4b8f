package device

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultDeviceName is the label used for the single TOTP device the login
// flow consults.
const DefaultDeviceName = "default"

// ErrDeviceNotFound is returned when no device record matches the lookup.
var ErrDeviceNotFound = errors.New("device not found")

// Device is a per-login TOTP device record. The secret key is generated once
// at creation and never rewritten; Confirmed only ever moves false -> true.
type Device struct {
	ID          uuid.UUID `json:"id"`
	LoginID     uuid.UUID `json:"login_id"`
	Name        string    `json:"name"`
	SecretKey   string    `json:"secret_key"`
	Confirmed   bool      `json:"confirmed"`
	CreatedAt   time.Time `json:"created_at"`
	ConfirmedAt time.Time `json:"confirmed_at,omitempty"`
}

// GetOrCreateDeviceParams represents parameters for the atomic
// fetch-or-create of an unconfirmed device.
type GetOrCreateDeviceParams struct {
	LoginID uuid.UUID
	Name    string
	// SecretKey is used only when a new record is inserted. When an
	// existing record matches, the stored secret wins so concurrent
	// enrollment attempts always observe one secret.
	SecretKey string
}

// DeviceRepository defines the interface for TOTP device storage operations.
type DeviceRepository interface {
	// GetOrCreateUnconfirmed returns the existing device for (login, name)
	// or inserts a new unconfirmed one. The lookup and insert are a single
	// atomic step.
	GetOrCreateUnconfirmed(ctx context.Context, params GetOrCreateDeviceParams) (Device, error)

	// FindConfirmedByLoginID returns the confirmed device for a login, or
	// ErrDeviceNotFound when none exists.
	FindConfirmedByLoginID(ctx context.Context, loginID uuid.UUID) (Device, error)

	// FindByLoginIDAndName returns the device for (login, name) regardless
	// of confirmation state.
	FindByLoginIDAndName(ctx context.Context, loginID uuid.UUID, name string) (Device, error)

	// Confirm flips the confirmed flag to true. Idempotent: confirming an
	// already-confirmed device is a no-op and keeps the original
	// confirmation time.
	Confirm(ctx context.Context, deviceID uuid.UUID) error
}
