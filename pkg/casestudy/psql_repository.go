package casestudy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresCaseStudyRepository implements CaseStudyRepository using PostgreSQL
type PostgresCaseStudyRepository struct {
	db DBTX
}

// NewPostgresCaseStudyRepository creates a new PostgreSQL case-study repository
func NewPostgresCaseStudyRepository(db DBTX) *PostgresCaseStudyRepository {
	return &PostgresCaseStudyRepository{db: db}
}

const caseStudyColumns = `id, title, slug, summary, problem, solution, tech_stack, key_results,
	github_link, demo_link, display_order, is_published, created_at, updated_at`

func (r *PostgresCaseStudyRepository) Create(ctx context.Context, params CreateCaseStudyParams) (CaseStudy, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO case_study (` + caseStudyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + caseStudyColumns

	row := r.db.QueryRow(ctx, query,
		uuid.New(), params.Title, params.Slug, params.Summary, params.Problem, params.Solution,
		params.TechStack, params.KeyResults, params.GithubLink, params.DemoLink,
		params.Order, params.IsPublished, now, now)

	study, err := scanCaseStudy(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return CaseStudy{}, ErrSlugAlreadyExists{Slug: params.Slug}
		}
		return CaseStudy{}, fmt.Errorf("failed to create case study: %w", err)
	}
	return study, nil
}

func (r *PostgresCaseStudyRepository) Update(ctx context.Context, params UpdateCaseStudyParams) (CaseStudy, error) {
	query := `
		UPDATE case_study
		SET title = $2, slug = $3, summary = $4, problem = $5, solution = $6,
			tech_stack = $7, key_results = $8, github_link = $9, demo_link = $10,
			display_order = $11, is_published = $12, updated_at = $13
		WHERE id = $1
		RETURNING ` + caseStudyColumns

	row := r.db.QueryRow(ctx, query,
		params.ID, params.Title, params.Slug, params.Summary, params.Problem, params.Solution,
		params.TechStack, params.KeyResults, params.GithubLink, params.DemoLink,
		params.Order, params.IsPublished, time.Now().UTC())

	study, err := scanCaseStudy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CaseStudy{}, ErrCaseStudyNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return CaseStudy{}, ErrSlugAlreadyExists{Slug: params.Slug}
		}
		return CaseStudy{}, fmt.Errorf("failed to update case study: %w", err)
	}
	return study, nil
}

func (r *PostgresCaseStudyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM case_study WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete case study: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCaseStudyNotFound
	}
	return nil
}

func (r *PostgresCaseStudyRepository) GetByID(ctx context.Context, id uuid.UUID) (CaseStudy, error) {
	query := `SELECT ` + caseStudyColumns + ` FROM case_study WHERE id = $1`
	study, err := scanCaseStudy(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CaseStudy{}, ErrCaseStudyNotFound
		}
		return CaseStudy{}, fmt.Errorf("failed to get case study: %w", err)
	}
	return study, nil
}

func (r *PostgresCaseStudyRepository) GetBySlug(ctx context.Context, slug string) (CaseStudy, error) {
	query := `SELECT ` + caseStudyColumns + ` FROM case_study WHERE slug = $1`
	study, err := scanCaseStudy(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CaseStudy{}, ErrCaseStudyNotFound
		}
		return CaseStudy{}, fmt.Errorf("failed to get case study: %w", err)
	}
	return study, nil
}

func (r *PostgresCaseStudyRepository) ListPublished(ctx context.Context) ([]CaseStudy, error) {
	query := `
		SELECT ` + caseStudyColumns + `
		FROM case_study
		WHERE is_published = true
		ORDER BY display_order ASC, created_at DESC`
	return r.list(ctx, query)
}

func (r *PostgresCaseStudyRepository) ListAll(ctx context.Context) ([]CaseStudy, error) {
	query := `
		SELECT ` + caseStudyColumns + `
		FROM case_study
		ORDER BY display_order ASC, created_at DESC`
	return r.list(ctx, query)
}

func (r *PostgresCaseStudyRepository) list(ctx context.Context, query string) ([]CaseStudy, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list case studies: %w", err)
	}
	defer rows.Close()

	var out []CaseStudy
	for rows.Next() {
		study, err := scanCaseStudy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case study: %w", err)
		}
		out = append(out, study)
	}
	return out, rows.Err()
}

func (r *PostgresCaseStudyRepository) AddImage(ctx context.Context, image Image) (Image, error) {
	query := `
		INSERT INTO case_study_image (id, case_study_id, path, alt_text, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, case_study_id, path, alt_text, display_order`

	var out Image
	err := r.db.QueryRow(ctx, query, uuid.New(), image.CaseStudyID, image.Path, image.AltText, image.Order).
		Scan(&out.ID, &out.CaseStudyID, &out.Path, &out.AltText, &out.Order)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Image{}, ErrCaseStudyNotFound
		}
		return Image{}, fmt.Errorf("failed to add image: %w", err)
	}
	return out, nil
}

func (r *PostgresCaseStudyRepository) ListImages(ctx context.Context, caseStudyID uuid.UUID) ([]Image, error) {
	query := `
		SELECT id, case_study_id, path, alt_text, display_order
		FROM case_study_image
		WHERE case_study_id = $1
		ORDER BY display_order ASC`

	rows, err := r.db.Query(ctx, query, caseStudyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var out []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.CaseStudyID, &img.Path, &img.AltText, &img.Order); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func scanCaseStudy(row pgx.Row) (CaseStudy, error) {
	var s CaseStudy
	err := row.Scan(&s.ID, &s.Title, &s.Slug, &s.Summary, &s.Problem, &s.Solution,
		&s.TechStack, &s.KeyResults, &s.GithubLink, &s.DemoLink,
		&s.Order, &s.IsPublished, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return CaseStudy{}, err
	}
	return s, nil
}
