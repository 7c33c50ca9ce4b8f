package casestudy

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryCaseStudyRepository implements CaseStudyRepository using in-memory storage.
type InMemoryCaseStudyRepository struct {
	studies map[uuid.UUID]CaseStudy
	images  map[uuid.UUID]Image
	mutex   sync.RWMutex
}

// NewInMemoryCaseStudyRepository creates a new in-memory case-study repository.
func NewInMemoryCaseStudyRepository() *InMemoryCaseStudyRepository {
	return &InMemoryCaseStudyRepository{
		studies: make(map[uuid.UUID]CaseStudy),
		images:  make(map[uuid.UUID]Image),
	}
}

// slugTaken reports whether another study (not excludeID) uses the slug.
// Caller must hold at least the read lock.
func (r *InMemoryCaseStudyRepository) slugTaken(slug string, excludeID uuid.UUID) bool {
	for _, s := range r.studies {
		if s.Slug == slug && s.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *InMemoryCaseStudyRepository) Create(ctx context.Context, params CreateCaseStudyParams) (CaseStudy, error) {
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
	return study, nil
}

func (r *InMemoryCaseStudyRepository) Update(ctx context.Context, params UpdateCaseStudyParams) (CaseStudy, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	study, ok := r.studies[params.ID]
	if !ok {
		return CaseStudy{}, ErrCaseStudyNotFound
	}
	if r.slugTaken(params.Slug, params.ID) {
		return CaseStudy{}, ErrSlugAlreadyExists{Slug: params.Slug}
	}

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
	return study, nil
}

func (r *InMemoryCaseStudyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.studies[id]; !ok {
		return ErrCaseStudyNotFound
	}
	delete(r.studies, id)
	for imgID, img := range r.images {
		if img.CaseStudyID == id {
			delete(r.images, imgID)
		}
	}
	return nil
}

func (r *InMemoryCaseStudyRepository) GetByID(ctx context.Context, id uuid.UUID) (CaseStudy, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	study, ok := r.studies[id]
	if !ok {
		return CaseStudy{}, ErrCaseStudyNotFound
	}
	return study, nil
}

func (r *InMemoryCaseStudyRepository) GetBySlug(ctx context.Context, slug string) (CaseStudy, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, s := range r.studies {
		if s.Slug == slug {
			return s, nil
		}
	}
	return CaseStudy{}, ErrCaseStudyNotFound
}

func (r *InMemoryCaseStudyRepository) ListPublished(ctx context.Context) ([]CaseStudy, error) {
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

func (r *InMemoryCaseStudyRepository) ListAll(ctx context.Context) ([]CaseStudy, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]CaseStudy, 0, len(r.studies))
	for _, s := range r.studies {
		out = append(out, s)
	}
	sortCaseStudies(out)
	return out, nil
}

func (r *InMemoryCaseStudyRepository) AddImage(ctx context.Context, image Image) (Image, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.studies[image.CaseStudyID]; !ok {
		return Image{}, ErrCaseStudyNotFound
	}
	image.ID = uuid.New()
	r.images[image.ID] = image
	return image, nil
}

func (r *InMemoryCaseStudyRepository) ListImages(ctx context.Context, caseStudyID uuid.UUID) ([]Image, error) {
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

// sortCaseStudies orders by display order ascending, then newest first.
func sortCaseStudies(studies []CaseStudy) {
	sort.Slice(studies, func(i, j int) bool {
		if studies[i].Order != studies[j].Order {
			return studies[i].Order < studies[j].Order
		}
		return studies[i].CreatedAt.After(studies[j].CreatedAt)
	})
}
