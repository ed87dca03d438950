package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

type contextKey struct{}

// NewContext returns ctx carrying user.
func NewContext(ctx context.Context, user *portfolio.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns the authenticated user, if any.
func FromContext(ctx context.Context) (*portfolio.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*portfolio.User)
	return user, ok && user != nil
}

// Middleware rejects requests without a valid bearer token and stores the
// token's user in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.Verify(r.Context(), jwtauth.TokenFromHeader(r))
		if err != nil {
			a.reject(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), user)))
	})
}

// Optional attaches the user when a valid token is present and lets every
// request through.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := jwtauth.TokenFromHeader(r); token != "" {
			if user, err := a.Verify(r.Context(), token); err == nil {
				r = r.WithContext(NewContext(r.Context(), user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *Error
	if !errors.As(err, &authErr) {
		a.logger.ErrorContext(r.Context(), "Authentication error", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]any{"success": false, "error": "Authentication error", "type": "internal"})
		return
	}
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]any{
		"success": false,
		"error":   authErr.Message,
		"type":    "unauthorized",
		"reason":  authErr.Reason,
	})
}
