package casestudy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/utils"
)

// HomePreviewLimit is the number of published case studies shown on the
// home page.
const HomePreviewLimit = 6

type CaseStudyService struct {
	repo CaseStudyRepository
}

func NewCaseStudyService(repo CaseStudyRepository) *CaseStudyService {
	return &CaseStudyService{repo: repo}
}

// ListPublished returns all published case studies in display order.
func (s *CaseStudyService) ListPublished(ctx context.Context) ([]CaseStudy, error) {
	return s.repo.ListPublished(ctx)
}

// HomePreview returns the first HomePreviewLimit published case studies.
func (s *CaseStudyService) HomePreview(ctx context.Context) ([]CaseStudy, error) {
	studies, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if len(studies) > HomePreviewLimit {
		studies = studies[:HomePreviewLimit]
	}
	return studies, nil
}

// GetPublishedBySlug returns the published case study for a slug. Drafts are
// hidden from this lookup, they return ErrCaseStudyNotFound like a missing
// slug does.
func (s *CaseStudyService) GetPublishedBySlug(ctx context.Context, slug string) (CaseStudy, error) {
	study, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return CaseStudy{}, err
	}
	if !study.IsPublished {
		return CaseStudy{}, ErrCaseStudyNotFound
	}
	return study, nil
}

// ListAll returns every case study including drafts, for the admin area.
func (s *CaseStudyService) ListAll(ctx context.Context) ([]CaseStudy, error) {
	return s.repo.ListAll(ctx)
}

// GetByID returns a case study by id, drafts included.
func (s *CaseStudyService) GetByID(ctx context.Context, id uuid.UUID) (CaseStudy, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new case study. When the slug is empty it is derived from
// the title.
func (s *CaseStudyService) Create(ctx context.Context, params CreateCaseStudyParams) (CaseStudy, error) {
	if params.Title == "" {
		return CaseStudy{}, fmt.Errorf("title cannot be empty")
	}
	if params.Slug == "" {
		params.Slug = utils.Slugify(params.Title)
	}

	study, err := s.repo.Create(ctx, params)
	if err != nil {
		return CaseStudy{}, err
	}

	slog.Info("Created case study", "slug", study.Slug, "caseStudyId", study.ID)
	return study, nil
}

// Update replaces the stored fields of an existing case study. When the slug
// is empty it is derived from the title, same as Create.
func (s *CaseStudyService) Update(ctx context.Context, params UpdateCaseStudyParams) (CaseStudy, error) {
	if params.Title == "" {
		return CaseStudy{}, fmt.Errorf("title cannot be empty")
	}
	if params.Slug == "" {
		params.Slug = utils.Slugify(params.Title)
	}

	study, err := s.repo.Update(ctx, params)
	if err != nil {
		return CaseStudy{}, err
	}

	slog.Info("Updated case study", "slug", study.Slug, "caseStudyId", study.ID)
	return study, nil
}

// Delete removes the case study and its images.
func (s *CaseStudyService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Deleted case study", "caseStudyId", id)
	return nil
}

// AddImage attaches an image record to a case study.
func (s *CaseStudyService) AddImage(ctx context.Context, caseStudyID uuid.UUID, path, altText string, order int) (Image, error) {
	if path == "" {
		return Image{}, fmt.Errorf("image path cannot be empty")
	}
	return s.repo.AddImage(ctx, Image{
		CaseStudyID: caseStudyID,
		Path:        path,
		AltText:     altText,
		Order:       order,
	})
}

// ListImages returns the images of a case study in display order.
func (s *CaseStudyService) ListImages(ctx context.Context, caseStudyID uuid.UUID) ([]Image, error) {
	return s.repo.ListImages(ctx, caseStudyID)
}
