package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/portfolio-content/pkg/portfolio"
	"github.com/tendant/portfolio-content/pkg/portfolio/auth"
)

// Options configures the content API router.
type Options struct {
	// MaxUploadBytes bounds request bodies. Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int64
	// ProtectReads requires a bearer token for content reads too.
	ProtectReads bool
	// HealthCheck is called by GET /health when set.
	HealthCheck func(ctx context.Context) error
}

// NewRouter mounts every content route at the root, so that /images/{slug}
// is both the API route and the display URL stored on projects.
func NewRouter(service portfolio.Service, authn *auth.Authenticator, opts Options) chi.Router {
	read := authn.Optional
	if opts.ProtectReads {
		read = authn.Middleware
	}
	write := authn.Middleware

	r := chi.NewRouter()
	r.Get("/health", healthHandler(opts.HealthCheck))
	r.Mount("/auth", NewAuthHandler(authn).Routes())
	r.Mount("/projects", NewProjectsHandler(service, opts.MaxUploadBytes).Routes(read, write))
	r.Mount("/images", NewImagesHandler(service, opts.MaxUploadBytes).Routes(read, write))
	r.Mount("/skills", NewSkillsHandler(service).Routes(read, write))
	r.Mount("/messages", NewMessagesHandler(service).Routes(write))
	r.With(write).Get("/admin/integrity", integrityHandler(service))
	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, ErrorResponse{Error: "Storage unavailable", Type: "unavailable"})
				return
			}
		}
		writeData(w, r, http.StatusOK, map[string]any{"status": "ok", "time": time.Now().UTC()})
	}
}

// integrityHandler reports dangling image references and missing image bytes
func integrityHandler(service portfolio.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := service.CheckIntegrity(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusOK, map[string]any{"ok": report.OK(), "report": report})
	}
}
