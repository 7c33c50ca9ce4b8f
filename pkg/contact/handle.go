package contact

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type Handle struct {
	contactService *ContactService
}

func NewHandle(contactService *ContactService) Handle {
	return Handle{
		contactService: contactService,
	}
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit the contact form
// (POST /api/contact)
func (h Handle) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var request ContactRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}

	err := h.contactService.Submit(r.Context(), Message{
		Name:    request.Name,
		Email:   request.Email,
		Message: request.Message,
	})
	if err != nil {
		var validationErr ErrValidation
		if errors.As(err, &validationErr) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{
				"error": validationErr.Reason,
				"field": validationErr.Field,
			})
			return
		}
		if errors.Is(err, ErrDeliveryFailed) {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"error": ErrDeliveryFailed.Error()})
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Something went wrong"})
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{"message": "Thanks! Your message has been sent."})
}

// Routes registers the contact endpoint.
func Routes(r chi.Router, handle Handle) {
	r.Post("/contact", handle.SubmitContact)
}
