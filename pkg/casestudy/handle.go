package casestudy

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type Handle struct {
	caseStudyService *CaseStudyService
}

func NewHandle(caseStudyService *CaseStudyService) Handle {
	return Handle{
		caseStudyService: caseStudyService,
	}
}

type CaseStudyRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Summary     string `json:"summary"`
	Problem     string `json:"problem"`
	Solution    string `json:"solution"`
	TechStack   string `json:"tech_stack"`
	KeyResults  string `json:"key_results"`
	GithubLink  string `json:"github_link"`
	DemoLink    string `json:"demo_link"`
	Order       int    `json:"order"`
	IsPublished bool   `json:"is_published"`
}

type CaseStudyResponse struct {
	CaseStudy
	TechList []string `json:"tech_list"`
	Images   []Image  `json:"images,omitempty"`
}

func toResponse(study CaseStudy, images []Image) CaseStudyResponse {
	return CaseStudyResponse{
		CaseStudy: study,
		TechList:  study.TechList(),
		Images:    images,
	}
}

// List published case studies
// (GET /api/casestudies)
func (h Handle) ListCaseStudies(w http.ResponseWriter, r *http.Request) {
	studies, err := h.caseStudyService.ListPublished(r.Context())
	if err != nil {
		slog.Error("Failed listing case studies", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed listing case studies"})
		return
	}

	response := make([]CaseStudyResponse, 0, len(studies))
	for _, study := range studies {
		response = append(response, toResponse(study, nil))
	}
	render.JSON(w, r, response)
}

// Get a published case study by slug, images included
// (GET /api/casestudies/{slug})
func (h Handle) GetCaseStudy(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	study, err := h.caseStudyService.GetPublishedBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrCaseStudyNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Case study not found"})
			return
		}
		slog.Error("Failed getting case study", "slug", slug, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed getting case study"})
		return
	}

	images, err := h.caseStudyService.ListImages(r.Context(), study.ID)
	if err != nil {
		slog.Error("Failed listing case study images", "slug", slug, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed getting case study"})
		return
	}

	render.JSON(w, r, toResponse(study, images))
}

// List every case study including drafts
// (GET /api/admin/casestudies)
func (h Handle) AdminListCaseStudies(w http.ResponseWriter, r *http.Request) {
	studies, err := h.caseStudyService.ListAll(r.Context())
	if err != nil {
		slog.Error("Failed listing case studies", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed listing case studies"})
		return
	}

	response := make([]CaseStudyResponse, 0, len(studies))
	for _, study := range studies {
		response = append(response, toResponse(study, nil))
	}
	render.JSON(w, r, response)
}

// Create a case study
// (POST /api/admin/casestudies)
func (h Handle) CreateCaseStudy(w http.ResponseWriter, r *http.Request) {
	var request CaseStudyRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}
	if request.Title == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Title is required"})
		return
	}

	study, err := h.caseStudyService.Create(r.Context(), CreateCaseStudyParams{
		Title:       request.Title,
		Slug:        request.Slug,
		Summary:     request.Summary,
		Problem:     request.Problem,
		Solution:    request.Solution,
		TechStack:   request.TechStack,
		KeyResults:  request.KeyResults,
		GithubLink:  request.GithubLink,
		DemoLink:    request.DemoLink,
		Order:       request.Order,
		IsPublished: request.IsPublished,
	})
	if err != nil {
		var slugErr ErrSlugAlreadyExists
		if errors.As(err, &slugErr) {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, map[string]string{"error": slugErr.Error()})
			return
		}
		slog.Error("Failed creating case study", "title", request.Title, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed creating case study"})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toResponse(study, nil))
}

// Update a case study by id
// (PUT /api/admin/casestudies/{id})
func (h Handle) UpdateCaseStudy(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid id format"})
		return
	}

	var request CaseStudyRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}
	if request.Title == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Title is required"})
		return
	}

	study, err := h.caseStudyService.Update(r.Context(), UpdateCaseStudyParams{
		ID:          id,
		Title:       request.Title,
		Slug:        request.Slug,
		Summary:     request.Summary,
		Problem:     request.Problem,
		Solution:    request.Solution,
		TechStack:   request.TechStack,
		KeyResults:  request.KeyResults,
		GithubLink:  request.GithubLink,
		DemoLink:    request.DemoLink,
		Order:       request.Order,
		IsPublished: request.IsPublished,
	})
	if err != nil {
		if errors.Is(err, ErrCaseStudyNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Case study not found"})
			return
		}
		var slugErr ErrSlugAlreadyExists
		if errors.As(err, &slugErr) {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, map[string]string{"error": slugErr.Error()})
			return
		}
		slog.Error("Failed updating case study", "caseStudyId", id, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed updating case study"})
		return
	}

	render.JSON(w, r, toResponse(study, nil))
}

// Delete a case study by id
// (DELETE /api/admin/casestudies/{id})
func (h Handle) DeleteCaseStudy(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid id format"})
		return
	}

	if err := h.caseStudyService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrCaseStudyNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Case study not found"})
			return
		}
		slog.Error("Failed deleting case study", "caseStudyId", id, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed deleting case study"})
		return
	}

	render.JSON(w, r, map[string]string{"message": "Case study deleted"})
}

// Attach an image record to a case study
// (POST /api/admin/casestudies/{id}/images)
func (h Handle) AddImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid id format"})
		return
	}

	var request struct {
		Path    string `json:"path"`
		AltText string `json:"alt_text"`
		Order   int    `json:"order"`
	}
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}
	if request.Path == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Path is required"})
		return
	}

	image, err := h.caseStudyService.AddImage(r.Context(), id, request.Path, request.AltText, request.Order)
	if err != nil {
		if errors.Is(err, ErrCaseStudyNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Case study not found"})
			return
		}
		slog.Error("Failed adding case study image", "caseStudyId", id, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed adding image"})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, image)
}

// Routes registers the public read-only case-study endpoints.
func Routes(r chi.Router, handle Handle) {
	r.Get("/casestudies", handle.ListCaseStudies)
	r.Get("/casestudies/{slug}", handle.GetCaseStudy)
}

// AdminRoutes registers the write endpoints. The caller is expected to wrap
// the group in auth middleware.
func AdminRoutes(r chi.Router, handle Handle) {
	r.Get("/casestudies", handle.AdminListCaseStudies)
	r.Post("/casestudies", handle.CreateCaseStudy)
	r.Put("/casestudies/{id}", handle.UpdateCaseStudy)
	r.Delete("/casestudies/{id}", handle.DeleteCaseStudy)
	r.Post("/casestudies/{id}/images", handle.AddImage)
}
