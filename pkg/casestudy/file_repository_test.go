package casestudy

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
func setupTestRepo(t *testing.T) (*FileCaseStudyRepository, string) {
	tempDir := filepath.Join(os.TempDir(), "casestudy-test-"+uuid.New().String())
	err := os.MkdirAll(tempDir, 0700)
	require.NoError(t, err)

	repo, err := NewFileCaseStudyRepository(tempDir)
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(tempDir)
	})

	return repo, tempDir
}

func TestFileCaseStudyRepository_CreateAndReload(t *testing.T) {
	tempDir := filepath.Join(os.TempDir(), "casestudy-test-reload-"+uuid.New().String())
	defer os.RemoveAll(tempDir)
	ctx := context.Background()

	repo, err := NewFileCaseStudyRepository(tempDir)
	require.NoError(t, err)

	study, err := repo.Create(ctx, CreateCaseStudyParams{
		Title:       "Persisted Project",
		Slug:        "persisted-project",
		TechStack:   "Go, chi",
		IsPublished: true,
	})
	require.NoError(t, err)

	_, err = repo.AddImage(ctx, Image{
		CaseStudyID: study.ID,
		Path:        "uploads/shot.png",
	})
	require.NoError(t, err)

	reopened, err := NewFileCaseStudyRepository(tempDir)
	require.NoError(t, err)

	got, err := reopened.GetBySlug(ctx, "persisted-project")
	require.NoError(t, err)
	assert.Equal(t, study.ID, got.ID)
	assert.Equal(t, "Persisted Project", got.Title)

	images, err := reopened.ListImages(ctx, study.ID)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "uploads/shot.png", images[0].Path)
}

func TestFileCaseStudyRepository_DuplicateSlug(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateCaseStudyParams{Title: "One", Slug: "same"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateCaseStudyParams{Title: "Two", Slug: "same"})
	var slugErr ErrSlugAlreadyExists
	require.ErrorAs(t, err, &slugErr)
	assert.Equal(t, "same", slugErr.Slug)
}

func TestFileCaseStudyRepository_UpdateKeepsOwnSlug(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	study, err := repo.Create(ctx, CreateCaseStudyParams{Title: "Keep", Slug: "keep"})
	require.NoError(t, err)

	// Re-saving a study with its own slug must not count as a collision.
	updated, err := repo.Update(ctx, UpdateCaseStudyParams{
		ID:    study.ID,
		Title: "Keep Renamed",
		Slug:  "keep",
	})
	require.NoError(t, err)
	assert.Equal(t, "Keep Renamed", updated.Title)
}

func TestFileCaseStudyRepository_DeleteRemovesFromDisk(t *testing.T) {
	repo, tempDir := setupTestRepo(t)
	ctx := context.Background()

	study, err := repo.Create(ctx, CreateCaseStudyParams{Title: "Gone", Slug: "gone"})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, study.ID))

	reopened, err := NewFileCaseStudyRepository(tempDir)
	require.NoError(t, err)

	_, err = reopened.GetBySlug(ctx, "gone")
	assert.ErrorIs(t, err, ErrCaseStudyNotFound)
}
