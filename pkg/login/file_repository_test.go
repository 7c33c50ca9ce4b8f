package login

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary directory and repository for testing
func setupTestRepo(t *testing.T) *FileLoginRepository {
	tempDir := filepath.Join(os.TempDir(), "login-test-"+uuid.New().String())
	err := os.MkdirAll(tempDir, 0755)
	require.NoError(t, err)

	repo, err := NewFileLoginRepository(tempDir)
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(tempDir)
	})

	return repo
}

func TestFileLoginRepository_CreateAndFind(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	record, err := repo.Create(ctx, CreateLoginParams{
		Username:     "alice",
		PasswordHash: "$2a$10$fakehash",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, record.ID)

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	assert.Equal(t, "$2a$10$fakehash", found.PasswordHash)

	_, err = repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrLoginNotFound)
}

func TestFileLoginRepository_DuplicateUsername(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateLoginParams{Username: "alice", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateLoginParams{Username: "alice", PasswordHash: "h2"})
	var dupErr ErrUsernameAlreadyExists
	assert.ErrorAs(t, err, &dupErr)
}

func TestFileLoginRepository_PersistsAcrossReload(t *testing.T) {
	tempDir := filepath.Join(os.TempDir(), "login-test-reload-"+uuid.New().String())
	defer os.RemoveAll(tempDir)
	ctx := context.Background()

	repo, err := NewFileLoginRepository(tempDir)
	require.NoError(t, err)

	record, err := repo.Create(ctx, CreateLoginParams{Username: "alice", PasswordHash: "h1"})
	require.NoError(t, err)

	// Re-open from the same directory
	reopened, err := NewFileLoginRepository(tempDir)
	require.NoError(t, err)

	found, err := reopened.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
}

func TestFileLoginRepository_UpdatePassword(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	record, err := repo.Create(ctx, CreateLoginParams{Username: "alice", PasswordHash: "old"})
	require.NoError(t, err)

	err = repo.UpdatePassword(ctx, record.ID, "new")
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", found.PasswordHash)

	err = repo.UpdatePassword(ctx, uuid.New(), "whatever")
	assert.ErrorIs(t, err, ErrLoginNotFound)
}
