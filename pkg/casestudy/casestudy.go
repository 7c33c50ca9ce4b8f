package casestudy

import (
	"time"

	"github.com/google/uuid"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/utils"
)

// CaseStudy is a project write-up displayed on the portfolio.
type CaseStudy struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	Problem     string    `json:"problem"`
	Solution    string    `json:"solution"`
	TechStack   string    `json:"tech_stack"` // comma-separated, e.g. "Go, PostgreSQL, chi"
	KeyResults  string    `json:"key_results"`
	GithubLink  string    `json:"github_link,omitempty"`
	DemoLink    string    `json:"demo_link,omitempty"`
	Order       int       `json:"order"` // display order, lower first
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TechList splits the comma-separated tech stack into trimmed entries.
func (c CaseStudy) TechList() []string {
	return utils.SplitTrimmed(c.TechStack)
}

// Image is an optional illustration attached to a case study.
type Image struct {
	ID          uuid.UUID `json:"id"`
	CaseStudyID uuid.UUID `json:"case_study_id"`
	Path        string    `json:"path"`
	AltText     string    `json:"alt_text,omitempty"`
	Order       int       `json:"order"`
}
