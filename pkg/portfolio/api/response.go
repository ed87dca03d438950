package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/portfolio-content/pkg/portfolio"
	"github.com/tendant/portfolio-content/pkg/portfolio/auth"
)

// Response is the success envelope of every JSON endpoint.
type Response struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data,omitempty"`
	Count    *int   `json:"count,omitempty"`
	Message  string `json:"message,omitempty"`
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Type    string                 `json:"type"`
	Fields  []portfolio.FieldError `json:"fields,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
}

// ImageResponse is image metadata plus its display URL.
type ImageResponse struct {
	*portfolio.Image
	URL string `json:"url"`
}

func newImageResponse(img *portfolio.Image) ImageResponse {
	return ImageResponse{Image: img, URL: img.URL()}
}

func writeData(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, Response{Success: true, Data: data})
}

func writeList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	render.JSON(w, r, Response{Success: true, Data: items, Count: &count})
}

func writeMessage(w http.ResponseWriter, r *http.Request, msg string) {
	render.JSON(w, r, Response{Success: true, Message: msg})
}

// writeError maps err onto a status code by its kind. Unclassified errors are
// logged and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var tooLarge *http.MaxBytesError
	switch kind := portfolio.Kind(err); {
	case errors.As(err, &tooLarge):
		status, resp.Type = http.StatusRequestEntityTooLarge, "too_large"
		resp.Error = "Request body too large"
	case kind == portfolio.ErrValidation:
		status, resp.Type = http.StatusBadRequest, "validation"
		var verr *portfolio.ValidationError
		if errors.As(err, &verr) {
			resp.Fields = verr.Fields
		}
	case kind == portfolio.ErrNotFound:
		status, resp.Type = http.StatusNotFound, "not_found"
	case kind == portfolio.ErrConflict:
		status, resp.Type = http.StatusConflict, "conflict"
	case kind == portfolio.ErrUnauthorized:
		status, resp.Type = http.StatusUnauthorized, "unauthorized"
		var aerr *auth.Error
		if errors.As(err, &aerr) {
			resp.Reason = aerr.Reason
		}
	default:
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		resp.Type = "internal"
		resp.Error = "Internal server error"
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}
