package login

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryLoginRepository implements LoginRepository using in-memory storage.
// All data is lost when the process stops.
type InMemoryLoginRepository struct {
	logins map[uuid.UUID]Login
	mutex  sync.RWMutex
}

// NewInMemoryLoginRepository creates a new in-memory login repository.
func NewInMemoryLoginRepository() *InMemoryLoginRepository {
	return &InMemoryLoginRepository{
		logins: make(map[uuid.UUID]Login),
	}
}

func (r *InMemoryLoginRepository) Create(ctx context.Context, params CreateLoginParams) (Login, error) {
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
	return record, nil
}

func (r *InMemoryLoginRepository) FindByUsername(ctx context.Context, username string) (Login, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, l := range r.logins {
		if l.Username == username {
			return l, nil
		}
	}
	return Login{}, ErrLoginNotFound
}

func (r *InMemoryLoginRepository) GetByID(ctx context.Context, id uuid.UUID) (Login, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	record, ok := r.logins[id]
	if !ok {
		return Login{}, ErrLoginNotFound
	}
	return record, nil
}

func (r *InMemoryLoginRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	record, ok := r.logins[id]
	if !ok {
		return ErrLoginNotFound
	}
	record.PasswordHash = passwordHash
	record.UpdatedAt = time.Now().UTC()
	r.logins[id] = record
	return nil
}
