package login

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

// FileLoginRepository implements LoginRepository using file-based storage.
// Records are kept in memory and flushed to a JSON file on every write.
type FileLoginRepository struct {
	dataDir string
	logins  map[uuid.UUID]Login
	mutex   sync.RWMutex
}

// NewFileLoginRepository creates a new file-based login repository.
func NewFileLoginRepository(dataDir string) (*FileLoginRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileLoginRepository{
		dataDir: dataDir,
		logins:  make(map[uuid.UUID]Login),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

func (r *FileLoginRepository) filePath() string {
	return filepath.Join(r.dataDir, "logins.json")
}

func (r *FileLoginRepository) load() error {
	data, err := os.ReadFile(r.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var logins []Login
	if err := json.Unmarshal(data, &logins); err != nil {
		return fmt.Errorf("failed to unmarshal logins: %w", err)
	}

	for _, l := range logins {
		r.logins[l.ID] = l
	}
	return nil
}

// save writes all records to disk. Caller must hold the write lock.
func (r *FileLoginRepository) save() error {
	logins := make([]Login, 0, len(r.logins))
	for _, l := range r.logins {
		logins = append(logins, l)
	}

	data, err := json.MarshalIndent(logins, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal logins: %w", err)
	}

	return os.WriteFile(r.filePath(), data, 0600)
}

func (r *FileLoginRepository) Create(ctx context.Context, params CreateLoginParams) (Login, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, l := range r.logins {
		if l.Username == params.Username {
			return Login{}, ErrUsernameAlreadyExists{Username: params.Username}
		}
	}

	now := time.Now().UTC()
	record := Login{
		ID:           uuid.New(),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.logins[record.ID] = record

	if err := r.save(); err != nil {
		// Rollback
		delete(r.logins, record.ID)
		return Login{}, fmt.Errorf("failed to save: %w", err)
	}

	return record, nil
}

func (r *FileLoginRepository) FindByUsername(ctx context.Context, username string) (Login, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, l := range r.logins {
		if l.Username == username {
			return l, nil
		}
	}
	return Login{}, ErrLoginNotFound
}

func (r *FileLoginRepository) GetByID(ctx context.Context, id uuid.UUID) (Login, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	record, ok := r.logins[id]
	if !ok {
		return Login{}, ErrLoginNotFound
	}
	return record, nil
}

func (r *FileLoginRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	record, ok := r.logins[id]
	if !ok {
		return ErrLoginNotFound
	}

	prev := record
	record.PasswordHash = passwordHash
	record.UpdatedAt = time.Now().UTC()
	r.logins[id] = record

	if err := r.save(); err != nil {
		r.logins[id] = prev
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}
