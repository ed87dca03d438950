package api

import (
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// DefaultMaxUploadBytes bounds request bodies when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

var errInvalidBody = portfolio.Invalid("body", "invalid request body")

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := render.DecodeJSON(r.Body, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errInvalidBody
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// multipartForm is a parsed multipart request with its optional "file" part.
type multipartForm struct {
	values map[string][]string
	file   *portfolio.Upload
}

// value returns the first value of field and whether the field was sent.
func (f *multipartForm) value(field string) (string, bool) {
	v, ok := f.values[field]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func (f *multipartForm) get(field string) string {
	v, _ := f.value(field)
	return v
}

func (f *multipartForm) optional(field string) *string {
	if v, ok := f.value(field); ok {
		return &v
	}
	return nil
}

// parseMultipart reads a size-limited multipart body. The "file" part is read
// fully into memory.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) (*multipartForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errInvalidBody
	}
	form := &multipartForm{values: r.MultipartForm.Value}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil
	}
	if err != nil {
		return nil, errInvalidBody
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	form.file = &portfolio.Upload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}
	return form, nil
}

// requireFile parses a multipart body that must carry a non-empty file.
func requireFile(w http.ResponseWriter, r *http.Request, limit int64) (*multipartForm, error) {
	if !isMultipart(r) {
		return nil, portfolio.Invalid("file", "multipart form with a file field is required")
	}
	form, err := parseMultipart(w, r, limit)
	if err != nil {
		return nil, err
	}
	if form.file.Empty() {
		return nil, portfolio.ErrEmptyUpload
	}
	return form, nil
}

// decodeBase64 accepts plain base64 or a data URL and returns the bytes and
// any mime type the data URL declared.
func decodeBase64(s string) ([]byte, string, error) {
	var mimeType string
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, "", portfolio.Invalid("data", "data must be base64 encoded")
		}
		mimeType = strings.TrimSuffix(meta, ";base64")
		s = payload
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, "", portfolio.Invalid("data", "data must be base64 encoded")
	}
	return data, mimeType, nil
}

func indexParam(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, portfolio.Invalid("index", "index must be an integer")
	}
	return index, nil
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, portfolio.Invalid(name, "%s must be true or false", name)
	}
	return &v, nil
}
