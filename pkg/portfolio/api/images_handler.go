package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// ImagesHandler serves image bytes and manages image records.
type ImagesHandler struct {
	service   portfolio.Service
	maxUpload int64
}

func NewImagesHandler(service portfolio.Service, maxUpload int64) *ImagesHandler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &ImagesHandler{service: service, maxUpload: maxUpload}
}

// Routes returns the router for image endpoints. Reads go through read,
// writes through write.
func (h *ImagesHandler) Routes(read, write func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(read)
		r.Get("/", h.ListImages)
		r.Get("/{slug}", h.GetImage)
		r.Get("/{slug}/metadata", h.GetImageMetadata)
	})
	r.Group(func(r chi.Router) {
		r.Use(write)
		r.Post("/", h.CreateImage)
		r.Put("/{slug}", h.ReplaceImage)
		r.Delete("/{slug}", h.DeleteImage)
	})
	return r
}

// CreateImageBody is the JSON form of an image upload.
type CreateImageBody struct {
	Name     string                  `json:"name"`
	Slug     string                  `json:"slug"`
	Category portfolio.ImageCategory `json:"category"`
	Filename string                  `json:"filename"`
	MimeType string                  `json:"mimeType"`
	// Data is base64, optionally as a data URL.
	Data string `json:"data"`
}

// ReplaceImageBody is the JSON form of an image replacement.
type ReplaceImageBody struct {
	Name     *string                  `json:"name,omitempty"`
	Category *portfolio.ImageCategory `json:"category,omitempty"`
	Filename string                   `json:"filename"`
	MimeType string                   `json:"mimeType"`
	Data     string                   `json:"data"`
}

// ListImages lists image metadata, optionally by category and sort key
func (h *ImagesHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	images, err := h.service.ListImages(r.Context(), portfolio.ImageFilter{
		Category: portfolio.ImageCategory(q.Get("category")),
		SortBy:   q.Get("sort"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]ImageResponse, len(images))
	for i, img := range images {
		out[i] = newImageResponse(img)
	}
	writeList(w, r, out)
}

// GetImage streams the image bytes with long-lived cache headers
func (h *ImagesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.GetImage(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", content.MimeType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(content.Data)
	}
}

func (h *ImagesHandler) GetImageMetadata(w http.ResponseWriter, r *http.Request) {
	img, err := h.service.GetImageMetadata(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, newImageResponse(img))
}

// CreateImage accepts a multipart upload or a JSON body with base64 data
func (h *ImagesHandler) CreateImage(w http.ResponseWriter, r *http.Request) {
	var req portfolio.CreateImageRequest
	if isMultipart(r) {
		form, err := parseMultipart(w, r, h.maxUpload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		req.Name = form.get("name")
		req.Slug = form.get("slug")
		req.Category = portfolio.ImageCategory(form.get("category"))
		if form.file != nil {
			req.Upload = *form.file
		}
	} else {
		var body CreateImageBody
		if err := decodeJSON(w, r, h.maxUpload, &body); err != nil {
			writeError(w, r, err)
			return
		}
		data, declared, err := decodeBase64(body.Data)
		if err != nil {
			writeError(w, r, err)
			return
		}
		req.Name, req.Slug, req.Category = body.Name, body.Slug, body.Category
		req.Upload = portfolio.Upload{Filename: body.Filename, MimeType: firstNonEmpty(body.MimeType, declared), Data: data}
	}

	img, err := h.service.CreateImage(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, newImageResponse(img))
}

// ReplaceImage overwrites the bytes of an existing image in place
func (h *ImagesHandler) ReplaceImage(w http.ResponseWriter, r *http.Request) {
	var req portfolio.ReplaceImageRequest
	if isMultipart(r) {
		form, err := parseMultipart(w, r, h.maxUpload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		req.Name = form.optional("name")
		if c := form.optional("category"); c != nil {
			category := portfolio.ImageCategory(*c)
			req.Category = &category
		}
		if form.file != nil {
			req.Upload = *form.file
		}
	} else {
		var body ReplaceImageBody
		if err := decodeJSON(w, r, h.maxUpload, &body); err != nil {
			writeError(w, r, err)
			return
		}
		data, declared, err := decodeBase64(body.Data)
		if err != nil {
			writeError(w, r, err)
			return
		}
		req.Name, req.Category = body.Name, body.Category
		req.Upload = portfolio.Upload{Filename: body.Filename, MimeType: firstNonEmpty(body.MimeType, declared), Data: data}
	}

	img, err := h.service.ReplaceImage(r.Context(), chi.URLParam(r, "slug"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, newImageResponse(img))
}

func (h *ImagesHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteImage(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, "Image deleted")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
