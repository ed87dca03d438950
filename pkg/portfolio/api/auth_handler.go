package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/tendant/portfolio-content/pkg/portfolio/auth"
)

// AuthHandler exposes signup, login and token inspection
type AuthHandler struct {
	authn *auth.Authenticator
}

func NewAuthHandler(authn *auth.Authenticator) *AuthHandler {
	return &AuthHandler{authn: authn}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Get("/verify", h.Verify)
	r.With(h.authn.Middleware).Get("/me", h.Me)
	return r
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := decodeJSON(w, r, DefaultMaxUploadBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := h.authn.Signup(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, session)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(w, r, DefaultMaxUploadBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := h.authn.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, session)
}

// Verify reports whether the bearer token is still valid
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, err := h.authn.Verify(r.Context(), jwtauth.TokenFromHeader(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, map[string]any{"valid": true, "user": user})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrNoToken)
		return
	}
	writeData(w, r, http.StatusOK, user)
}
