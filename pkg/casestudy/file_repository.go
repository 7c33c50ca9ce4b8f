package casestudy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// fileState is the on-disk shape of the repository.
type fileState struct {
	Studies []CaseStudy `json:"case_studies"`
	Images  []Image     `json:"images"`
}

// FileCaseStudyRepository implements CaseStudyRepository using file-based storage.
type FileCaseStudyRepository struct {
	dataDir string
	studies map[uuid.UUID]CaseStudy
	images  map[uuid.UUID]Image
	mutex   sync.RWMutex
}

// NewFileCaseStudyRepository creates a new file-based case-study repository.
func NewFileCaseStudyRepository(dataDir string) (*FileCaseStudyRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileCaseStudyRepository{
		dataDir: dataDir,
		studies: make(map[uuid.UUID]CaseStudy),
		images:  make(map[uuid.UUID]Image),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

func (r *FileCaseStudyRepository) filePath() string {
	return filepath.Join(r.dataDir, "case_studies.json")
}

func (r *FileCaseStudyRepository) load() error {
	data, err := os.ReadFile(r.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to unmarshal case studies: %w", err)
	}

	for _, s := range state.Studies {
		r.studies[s.ID] = s
	}
	for _, img := range state.Images {
		r.images[img.ID] = img
	}
	return nil
}

// save writes all records to disk. Caller must hold the write lock.
func (r *FileCaseStudyRepository) save() error {
	state := fileState{
		Studies: make([]CaseStudy, 0, len(r.studies)),
		Images:  make([]Image, 0, len(r.images)),
	}
	for _, s := range r.studies {
		state.Studies = append(state.Studies, s)
	}
	for _, img := range r.images {
		state.Images = append(state.Images, img)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal case studies: %w", err)
	}

	return os.WriteFile(r.filePath(), data, 0644)
}

func (r *FileCaseStudyRepository) slugTaken(slug string, excludeID uuid.UUID) bool {
	for _, s := range r.studies {
		if s.Slug == slug && s.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *FileCaseStudyRepository) Create(ctx context.Context, params CreateCaseStudyParams) (CaseStudy, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.slugTaken(params.Slug, uuid.Nil) {
		return CaseStudy{}, ErrSlugAlreadyExists{Slug: params.Slug}
	}

	now := time.Now().UTC()
	study := CaseStudy{
		ID:          uuid.New(),
		Title:       params.Title,
		Slug:        params.Slug,
		Summary:     params.Summary,
		Problem:     params.Problem,
		Solution:    params.Solution,
		TechStack:   params.TechStack,
		KeyResults:  params.KeyResults,
		GithubLink:  params.GithubLink,
		DemoLink:    params.DemoLink,
		Order:       params.Order,
		IsPublished: params.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.studies[study.ID] = study

	if err := r.save(); err != nil {
		// Rollback
		delete(r.studies, study.ID)
		return CaseStudy{}, fmt.Errorf("failed to save: %w", err)
	}

	return study, nil
}

func (r *FileCaseStudyRepository) Update(ctx context.Context, params UpdateCaseStudyParams) (CaseStudy, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	study, ok := r.studies[params.ID]
	if !ok {
		return CaseStudy{}, ErrCaseStudyNotFound
	}
	if r.slugTaken(params.Slug, params.ID) {
		return CaseStudy{}, ErrSlugAlreadyExists{Slug: params.Slug}
	}

	prev := study
	study.Title = params.Title
	study.Slug = params.Slug
	study.Summary = params.Summary
	study.Problem = params.Problem
	study.Solution = params.Solution
	study.TechStack = params.TechStack
	study.KeyResults = params.KeyResults
	study.GithubLink = params.GithubLink
	study.DemoLink = params.DemoLink
	study.Order = params.Order
	study.IsPublished = params.IsPublished
	study.UpdatedAt = time.Now().UTC()
	r.studies[study.ID] = study

	if err := r.save(); err != nil {
		r.studies[study.ID] = prev
		return CaseStudy{}, fmt.Errorf("failed to save: %w", err)
	}

	return study, nil
}

func (r *FileCaseStudyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	study, ok := r.studies[id]
	if !ok {
		return ErrCaseStudyNotFound
	}

	delete(r.studies, id)
	removed := make(map[uuid.UUID]Image)
	for imgID, img := range r.images {
		if img.CaseStudyID == id {
			removed[imgID] = img
			delete(r.images, imgID)
		}
	}

	if err := r.save(); err != nil {
		r.studies[id] = study
		for imgID, img := range removed {
			r.images[imgID] = img
		}
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

func (r *FileCaseStudyRepository) GetByID(ctx context.Context, id uuid.UUID) (CaseStudy, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	study, ok := r.studies[id]
	if !ok {
		return CaseStudy{}, ErrCaseStudyNotFound
	}
	return study, nil
}

func (r *FileCaseStudyRepository) GetBySlug(ctx context.Context, slug string) (CaseStudy, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, s := range r.studies {
		if s.Slug == slug {
			return s, nil
		}
	}
	return CaseStudy{}, ErrCaseStudyNotFound
}

func (r *FileCaseStudyRepository) ListPublished(ctx context.Context) ([]CaseStudy, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var out []CaseStudy
	for _, s := range r.studies {
		if s.IsPublished {
			out = append(out, s)
		}
	}
	sortCaseStudies(out)
	return out, nil
}

func (r *FileCaseStudyRepository) ListAll(ctx context.Context) ([]CaseStudy, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]CaseStudy, 0, len(r.studies))
	for _, s := range r.studies {
		out = append(out, s)
	}
	sortCaseStudies(out)
	return out, nil
}

func (r *FileCaseStudyRepository) AddImage(ctx context.Context, image Image) (Image, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.studies[image.CaseStudyID]; !ok {
		return Image{}, ErrCaseStudyNotFound
	}

	image.ID = uuid.New()
	r.images[image.ID] = image

	if err := r.save(); err != nil {
		delete(r.images, image.ID)
		return Image{}, fmt.Errorf("failed to save: %w", err)
	}
	return image, nil
}

func (r *FileCaseStudyRepository) ListImages(ctx context.Context, caseStudyID uuid.UUID) ([]Image, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var out []Image
	for _, img := range r.images {
		if img.CaseStudyID == caseStudyID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}
