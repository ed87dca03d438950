package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// ProjectsHandler handles project, thumbnail and screen endpoints. Every
// {key} accepts a project id or slug.
type ProjectsHandler struct {
	service   portfolio.Service
	maxUpload int64
}

func NewProjectsHandler(service portfolio.Service, maxUpload int64) *ProjectsHandler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &ProjectsHandler{service: service, maxUpload: maxUpload}
}

// Routes returns the router for project endpoints
func (h *ProjectsHandler) Routes(read, write func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(read)
		r.Get("/", h.ListProjects)
		r.Get("/stats", h.Stats)
		r.Get("/{key}", h.GetProject)
	})
	r.Group(func(r chi.Router) {
		r.Use(write)
		r.Post("/", h.CreateProject)
		r.Put("/{key}", h.UpdateProject)
		r.Delete("/{key}", h.DeleteProject)

		r.Post("/{key}/mockup", h.UploadMockup)
		r.Post("/{key}/mockup-existing", h.UseExistingMockup)

		r.Post("/{key}/screens", h.AddScreen)
		r.Post("/{key}/screens-existing", h.AddExistingScreen)
		r.Put("/{key}/screens-reorder", h.ReorderScreens)
		r.Put("/{key}/screens/{index}", h.UpdateScreen)
		r.Delete("/{key}/screens/{index}", h.DeleteScreen)
	})
	return r
}

// ExistingImageBody references an image that is already stored.
type ExistingImageBody struct {
	ImageSlug string `json:"imageSlug"`
}

func (h *ProjectsHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	featured, err := boolQuery(r, "featured")
	if err != nil {
		writeError(w, r, err)
		return
	}
	projects, err := h.service.ListProjects(r.Context(), portfolio.ProjectFilter{
		Category: portfolio.ProjectCategory(r.URL.Query().Get("category")),
		Featured: featured,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, projects)
}

// Stats aggregates projects by category
func (h *ProjectsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ProjectStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, stats)
}

func (h *ProjectsHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.GetProject(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, project)
}

func (h *ProjectsHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req portfolio.CreateProjectRequest
	if err := decodeJSON(w, r, h.maxUpload, &req); err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.service.CreateProject(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, project)
}

func (h *ProjectsHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req portfolio.UpdateProjectRequest
	if err := decodeJSON(w, r, h.maxUpload, &req); err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.service.UpdateProject(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, project)
}

func (h *ProjectsHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProject(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, "Project deleted")
}

// UploadMockup stores the multipart file as the project's mockup image and
// makes it the thumbnail
func (h *ProjectsHandler) UploadMockup(w http.ResponseWriter, r *http.Request) {
	form, err := requireFile(w, r, h.maxUpload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	project, img, err := h.service.UploadThumbnail(r.Context(), chi.URLParam(r, "key"), *form.file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeThumbnail(w, r, project, img)
}

// UseExistingMockup points the thumbnail at an existing image
func (h *ProjectsHandler) UseExistingMockup(w http.ResponseWriter, r *http.Request) {
	var body ExistingImageBody
	if err := decodeJSON(w, r, h.maxUpload, &body); err != nil {
		writeError(w, r, err)
		return
	}
	project, img, err := h.service.SetThumbnail(r.Context(), chi.URLParam(r, "key"), body.ImageSlug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeThumbnail(w, r, project, img)
}

func writeThumbnail(w http.ResponseWriter, r *http.Request, project *portfolio.Project, img *portfolio.Image) {
	render.JSON(w, r, Response{
		Success:  true,
		Data:     project,
		Filename: img.Filename,
		URL:      img.URL(),
	})
}

// AddScreen appends a screen from a multipart form with title, description
// and an optional file
func (h *ProjectsHandler) AddScreen(w http.ResponseWriter, r *http.Request) {
	var req portfolio.AddScreenRequest
	if isMultipart(r) {
		form, err := parseMultipart(w, r, h.maxUpload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		req.Title = form.get("title")
		req.Description = form.get("description")
		req.ImageSlug = form.get("imageSlug")
		req.Upload = form.file
	} else if err := decodeJSON(w, r, h.maxUpload, &req); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.service.AddScreen(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, project)
}

// AddExistingScreen appends a screen that shows an already stored image
func (h *ProjectsHandler) AddExistingScreen(w http.ResponseWriter, r *http.Request) {
	var req portfolio.AddScreenRequest
	if err := decodeJSON(w, r, h.maxUpload, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ImageSlug == "" {
		writeError(w, r, portfolio.Invalid("imageSlug", "imageSlug is required"))
		return
	}
	project, err := h.service.AddScreen(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, project)
}

// UpdateScreen edits one screen from a multipart form or a JSON body
func (h *ProjectsHandler) UpdateScreen(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req portfolio.UpdateScreenRequest
	if isMultipart(r) {
		form, err := parseMultipart(w, r, h.maxUpload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		req.Title = form.optional("title")
		req.Description = form.optional("description")
		req.ImageSlug = form.optional("imageSlug")
		req.Upload = form.file
	} else if err := decodeJSON(w, r, h.maxUpload, &req); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.service.UpdateScreen(r.Context(), chi.URLParam(r, "key"), index, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, project)
}

func (h *ProjectsHandler) DeleteScreen(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.service.DeleteScreen(r.Context(), chi.URLParam(r, "key"), index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, project)
}

func (h *ProjectsHandler) ReorderScreens(w http.ResponseWriter, r *http.Request) {
	var req portfolio.ReorderScreenRequest
	if err := decodeJSON(w, r, h.maxUpload, &req); err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.service.ReorderScreen(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, project)
}
