package webapp

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/loginflow"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/ratelimit"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/token"
)

// LimitResetter clears accumulated rate-limit state for a client key.
// Satisfied by ratelimit.Middleware.
type LimitResetter interface {
	Reset(key string)
}

// Handle serves the auth pages and the CV download.
type Handle struct {
	flowService        *loginflow.LoginFlowService
	tokenCookieService *token.TokenCookieService
	cvPath             string
	limitResetter      LimitResetter
}

type HandleOption func(*Handle)

// WithLimitResetter makes a successful login clear the client's rate-limit
// counters, so earlier failed attempts do not lock out a legitimate user.
func WithLimitResetter(resetter LimitResetter) HandleOption {
	return func(h *Handle) {
		h.limitResetter = resetter
	}
}

func NewHandle(flowService *loginflow.LoginFlowService, tokenCookieService *token.TokenCookieService, cvPath string, opts ...HandleOption) Handle {
	h := Handle{
		flowService:        flowService,
		tokenCookieService: tokenCookieService,
		cvPath:             cvPath,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PasscodeRequest struct {
	Passcode string `json:"passcode"`
}

// flowError writes a login-flow error with the matching HTTP status.
func flowError(w http.ResponseWriter, r *http.Request, flowErr *loginflow.Error) {
	status := http.StatusInternalServerError
	switch flowErr.Type {
	case loginflow.ErrorTypeInvalidCredentials, loginflow.ErrorTypeInvalidCode:
		status = http.StatusUnauthorized
	case loginflow.ErrorTypeUnauthorized:
		status = http.StatusUnauthorized
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]string{
		"error":   flowErr.Type,
		"message": flowErr.Message,
	})
}

// redirectJSON tells the frontend where to navigate next.
func redirectJSON(w http.ResponseWriter, r *http.Request, target string) {
	render.JSON(w, r, map[string]string{"redirect": target})
}

// Render the login view
// (GET /login)
func (h Handle) GetLogin(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session.Authenticated && session.Verified {
		redirectJSON(w, r, loginflow.RedirectAdmin)
		return
	}
	render.JSON(w, r, map[string]string{"view": "login"})
}

// Submit the login form
// (POST /login)
func (h Handle) PostLogin(w http.ResponseWriter, r *http.Request) {
	var request LoginRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}

	session := SessionFromContext(r.Context())
	result := h.flowService.ProcessLogin(r.Context(), session, request.Username, request.Password)
	if !result.Success {
		flowError(w, r, result.ErrorResponse)
		return
	}

	if h.limitResetter != nil {
		h.limitResetter.Reset(ratelimit.ClientIP(r))
	}

	if result.RequiresTempToken {
		if err := h.tokenCookieService.SetTempTokenCookie(w, result.LoginID, result.Username); err != nil {
			slog.Error("Failed to set temp token cookie", "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Something went wrong. Please try again later."})
			return
		}
	}

	redirectJSON(w, r, result.Redirect)
}

// Render the enrollment view with provisioning QR code
// (GET /setup-2fa)
func (h Handle) GetSetup2FA(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	view, result := h.flowService.ProcessEnrollment(r.Context(), session)
	if !result.Success {
		flowError(w, r, result.ErrorResponse)
		return
	}
	if result.Redirect != "" {
		redirectJSON(w, r, result.Redirect)
		return
	}

	render.JSON(w, r, map[string]string{
		"account_name": view.AccountName,
		"config_url":   view.ConfigURL,
		"qr_code_png":  view.QRCodePNG,
	})
}

// Confirm enrollment with a code from the authenticator app
// (POST /setup-2fa)
func (h Handle) PostSetup2FA(w http.ResponseWriter, r *http.Request) {
	var request PasscodeRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}

	session := SessionFromContext(r.Context())
	result := h.flowService.ConfirmEnrollment(r.Context(), session, request.Passcode)
	h.finishSecondFactor(w, r, result)
}

// Render the verification view
// (GET /verify-otp)
func (h Handle) GetVerifyOTP(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	result := h.flowService.ProcessVerification(r.Context(), session, "")
	if !result.Success {
		flowError(w, r, result.ErrorResponse)
		return
	}
	if result.Redirect != "" {
		redirectJSON(w, r, result.Redirect)
		return
	}
	render.JSON(w, r, map[string]string{"view": "verify-otp"})
}

// Submit a verification code
// (POST /verify-otp)
func (h Handle) PostVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var request PasscodeRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}

	session := SessionFromContext(r.Context())
	result := h.flowService.ProcessVerification(r.Context(), session, request.Passcode)
	h.finishSecondFactor(w, r, result)
}

// finishSecondFactor promotes the session when a code check passed and
// forwards the flow's redirect.
func (h Handle) finishSecondFactor(w http.ResponseWriter, r *http.Request, result loginflow.Result) {
	if !result.Success {
		flowError(w, r, result.ErrorResponse)
		return
	}

	if result.SessionVerified {
		if err := h.tokenCookieService.SetAccessTokenCookie(w, result.LoginID, result.Username); err != nil {
			slog.Error("Failed to set access token cookie", "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Something went wrong. Please try again later."})
			return
		}
	}

	redirectJSON(w, r, result.Redirect)
}

// Log out and clear session cookies
// (POST /logout)
func (h Handle) PostLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.tokenCookieService.ClearCookies(w); err != nil {
		slog.Error("Failed to clear session cookies", "err", err)
	}
	redirectJSON(w, r, loginflow.RedirectLogin)
}

// Download the CV as an attachment
// (GET /cv)
func (h Handle) GetCV(w http.ResponseWriter, r *http.Request) {
	info, err := os.Stat(h.cvPath)
	if err != nil || info.IsDir() {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "CV not found"})
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(h.cvPath)+`"`)
	http.ServeFile(w, r, h.cvPath)
}

// Whoami for the admin dashboard
// (GET /admin)
func (h Handle) GetAdmin(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	render.JSON(w, r, map[string]string{
		"username": session.Username,
		"login_id": session.LoginID.String(),
	})
}

// Routes registers the auth pages and the CV download. The auth pages are
// wrapped in NoCache so browsers never serve them from history.
func Routes(r chi.Router, handle Handle, authMiddleware *AuthMiddleware) {
	r.Get("/cv", handle.GetCV)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		r.Use(NoCache)

		r.Get("/login", handle.GetLogin)
		r.Post("/login", handle.PostLogin)
		r.Post("/logout", handle.PostLogout)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuthenticated)
			r.Get("/setup-2fa", handle.GetSetup2FA)
			r.Post("/setup-2fa", handle.PostSetup2FA)
			r.Get("/verify-otp", handle.GetVerifyOTP)
			r.Post("/verify-otp", handle.PostVerifyOTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireVerified)
			r.Get("/admin", handle.GetAdmin)
		})
	})
}
