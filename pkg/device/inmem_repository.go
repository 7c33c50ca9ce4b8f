package device

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryDeviceRepository implements DeviceRepository using in-memory storage.
type InMemoryDeviceRepository struct {
	devices map[uuid.UUID]Device // keyed by ID
	mutex   sync.RWMutex
}

// NewInMemoryDeviceRepository creates a new in-memory device repository.
func NewInMemoryDeviceRepository() *InMemoryDeviceRepository {
	return &InMemoryDeviceRepository{
		devices: make(map[uuid.UUID]Device),
	}
}

// GetOrCreateUnconfirmed returns the existing device for (login, name) or
// creates a new unconfirmed one. The write lock is held across lookup and
// insert so two concurrent calls cannot issue two secrets.
func (r *InMemoryDeviceRepository) GetOrCreateUnconfirmed(ctx context.Context, params GetOrCreateDeviceParams) (Device, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, d := range r.devices {
		if d.LoginID == params.LoginID && d.Name == params.Name {
			return d, nil
		}
	}

	d := Device{
		ID:        uuid.New(),
		LoginID:   params.LoginID,
		Name:      params.Name,
		SecretKey: params.SecretKey,
		Confirmed: false,
		CreatedAt: time.Now().UTC(),
	}
	r.devices[d.ID] = d
	return d, nil
}

func (r *InMemoryDeviceRepository) FindConfirmedByLoginID(ctx context.Context, loginID uuid.UUID) (Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, d := range r.devices {
		if d.LoginID == loginID && d.Confirmed {
			return d, nil
		}
	}
	return Device{}, ErrDeviceNotFound
}

func (r *InMemoryDeviceRepository) FindByLoginIDAndName(ctx context.Context, loginID uuid.UUID, name string) (Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, d := range r.devices {
		if d.LoginID == loginID && d.Name == name {
			return d, nil
		}
	}
	return Device{}, ErrDeviceNotFound
}

func (r *InMemoryDeviceRepository) Confirm(ctx context.Context, deviceID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return ErrDeviceNotFound
	}
	if d.Confirmed {
		return nil
	}
	d.Confirmed = true
	d.ConfirmedAt = time.Now().UTC()
	r.devices[deviceID] = d
	return nil
}
