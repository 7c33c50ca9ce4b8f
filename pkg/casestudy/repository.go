package casestudy

import (
	"context"

	"github.com/google/uuid"
)

// CreateCaseStudyParams represents parameters for creating a case study.
type CreateCaseStudyParams struct {
	Title       string
	Slug        string
	Summary     string
	Problem     string
	Solution    string
	TechStack   string
	KeyResults  string
	GithubLink  string
	DemoLink    string
	Order       int
	IsPublished bool
}

// UpdateCaseStudyParams represents parameters for updating a case study.
type UpdateCaseStudyParams struct {
	ID          uuid.UUID
	Title       string
	Slug        string
	Summary     string
	Problem     string
	Solution    string
	TechStack   string
	KeyResults  string
	GithubLink  string
	DemoLink    string
	Order       int
	IsPublished bool
}

// CaseStudyRepository defines the interface for case-study storage operations.
// List results are ordered by display order ascending, then newest first.
type CaseStudyRepository interface {
	Create(ctx context.Context, params CreateCaseStudyParams) (CaseStudy, error)
	Update(ctx context.Context, params UpdateCaseStudyParams) (CaseStudy, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (CaseStudy, error)
	GetBySlug(ctx context.Context, slug string) (CaseStudy, error)
	ListPublished(ctx context.Context) ([]CaseStudy, error)
	ListAll(ctx context.Context) ([]CaseStudy, error)

	AddImage(ctx context.Context, image Image) (Image, error)
	ListImages(ctx context.Context, caseStudyID uuid.UUID) ([]Image, error)
}
