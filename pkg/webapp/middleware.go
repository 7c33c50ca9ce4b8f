package webapp

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/loginflow"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/token"
)

type contextKey string

// SessionKey is the request-context key holding the resolved session.
const SessionKey contextKey = "webapp_session"

// SessionFromContext returns the session resolved by AuthMiddleware. A
// request that never went through the middleware is anonymous.
func SessionFromContext(ctx context.Context) loginflow.Session {
	if session, ok := ctx.Value(SessionKey).(loginflow.Session); ok {
		return session
	}
	return loginflow.Session{}
}

// AuthMiddleware resolves the session cookies into a loginflow.Session. The
// access token wins over the temp token; an invalid or expired cookie is
// treated the same as no cookie.
type AuthMiddleware struct {
	tokenService *token.TokenService
}

func NewAuthMiddleware(tokenService *token.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenService: tokenService}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := m.resolveSession(r)
		ctx := context.WithValue(r.Context(), SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) resolveSession(r *http.Request) loginflow.Session {
	if session, ok := m.sessionFromCookie(r, token.ACCESS_TOKEN_NAME); ok && session.Verified {
		return session
	}
	if session, ok := m.sessionFromCookie(r, token.TEMP_TOKEN_NAME); ok {
		return session
	}
	return loginflow.Session{}
}

func (m *AuthMiddleware) sessionFromCookie(r *http.Request, cookieName string) (loginflow.Session, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return loginflow.Session{}, false
	}

	claims, err := m.tokenService.ParseToken(cookie.Value)
	if err != nil {
		return loginflow.Session{}, false
	}

	loginID, err := claims.LoginUUID()
	if err != nil || loginID == uuid.Nil {
		return loginflow.Session{}, false
	}

	return loginflow.Session{
		LoginID:       loginID,
		Username:      claims.Username,
		Authenticated: true,
		Verified:      claims.TwofaVerified,
	}, true
}

// RequireVerified guards the admin area: anything short of a verified
// session is bounced to the login page.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if !session.Verified {
			http.Redirect(w, r, loginflow.RedirectLogin, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthenticated guards the second-factor pages: only a session that
// has passed the credential check may reach them.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if !session.Authenticated {
			http.Redirect(w, r, loginflow.RedirectLogin, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NoCache marks responses as uncacheable. Applied to every auth page so a
// shared browser never replays a stale admin view after logout.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
