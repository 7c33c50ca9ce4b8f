package device

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileDeviceRepository implements DeviceRepository using file-based storage.
type FileDeviceRepository struct {
	dataDir string
	devices map[uuid.UUID]Device // keyed by ID
	mutex   sync.RWMutex
}

// NewFileDeviceRepository creates a new file-based device repository.
func NewFileDeviceRepository(dataDir string) (*FileDeviceRepository, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileDeviceRepository{
		dataDir: dataDir,
		devices: make(map[uuid.UUID]Device),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

func (r *FileDeviceRepository) filePath() string {
	return filepath.Join(r.dataDir, "devices.json")
}

func (r *FileDeviceRepository) load() error {
	data, err := os.ReadFile(r.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var devices []Device
	if err := json.Unmarshal(data, &devices); err != nil {
		return fmt.Errorf("failed to unmarshal devices: %w", err)
	}

	for _, d := range devices {
		r.devices[d.ID] = d
	}
	return nil
}

// save writes all records to disk. Caller must hold the write lock.
// File mode 0600: the records carry TOTP secrets.
func (r *FileDeviceRepository) save() error {
	devices := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, d)
	}

	data, err := json.MarshalIndent(devices, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal devices: %w", err)
	}

	return os.WriteFile(r.filePath(), data, 0600)
}

func (r *FileDeviceRepository) GetOrCreateUnconfirmed(ctx context.Context, params GetOrCreateDeviceParams) (Device, error) {
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

	if err := r.save(); err != nil {
		// Rollback
		delete(r.devices, d.ID)
		return Device{}, fmt.Errorf("failed to save: %w", err)
	}

	return d, nil
}

func (r *FileDeviceRepository) FindConfirmedByLoginID(ctx context.Context, loginID uuid.UUID) (Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, d := range r.devices {
		if d.LoginID == loginID && d.Confirmed {
			return d, nil
		}
	}
	return Device{}, ErrDeviceNotFound
}

func (r *FileDeviceRepository) FindByLoginIDAndName(ctx context.Context, loginID uuid.UUID, name string) (Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, d := range r.devices {
		if d.LoginID == loginID && d.Name == name {
			return d, nil
		}
	}
	return Device{}, ErrDeviceNotFound
}

func (r *FileDeviceRepository) Confirm(ctx context.Context, deviceID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return ErrDeviceNotFound
	}
	if d.Confirmed {
		return nil
	}

	prev := d
	d.Confirmed = true
	d.ConfirmedAt = time.Now().UTC()
	r.devices[deviceID] = d

	if err := r.save(); err != nil {
		r.devices[deviceID] = prev
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}
