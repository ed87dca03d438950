package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/tendant/portfolio-content/pkg/portfolio/api"
	"github.com/tendant/portfolio-content/pkg/portfolio/config"
)

// NewHandler returns the HTTP handler for app with the standard middleware
// stack in front of the content API.
func NewHandler(app *config.App) http.Handler {
	cfg := app.Config

	level := slog.LevelInfo
	if !cfg.IsProduction() {
		level = slog.LevelDebug
	}
	accessLog := httplog.NewLogger("portfolio-content", httplog.Options{
		JSON:            cfg.LogFormat == "json",
		LogLevel:        level,
		Concise:         true,
		QuietDownRoutes: []string{"/health"},
		QuietDownPeriod: 10 * time.Second,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(accessLog))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/", api.NewRouter(app.Service, app.Auth, api.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		ProtectReads:   cfg.ProtectReads,
		HealthCheck:    app.Backend.Ping,
	}))
	return r
}

// Run serves app until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, app *config.App) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Config.Port),
		Handler:           NewHandler(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("Server starting", "port", app.Config.Port,
			"database", app.Config.DatabaseType, "storage", app.Config.StorageType)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	app.Logger.Info("Server exiting")
	return nil
}
