package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// MessagesHandler takes contact form submissions and lets admins read them
type MessagesHandler struct {
	service portfolio.Service
}

func NewMessagesHandler(service portfolio.Service) *MessagesHandler {
	return &MessagesHandler{service: service}
}

// Routes keeps submission public regardless of the read policy; everything
// else goes through admin.
func (h *MessagesHandler) Routes(admin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateMessage)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/", h.ListMessages)
		r.Get("/{id}", h.GetMessage)
		r.Put("/{id}/read", h.MarkRead)
		r.Delete("/{id}", h.DeleteMessage)
	})
	return r
}

func (h *MessagesHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req portfolio.CreateMessageRequest
	if err := decodeJSON(w, r, DefaultMaxUploadBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := h.service.CreateMessage(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, msg)
}

func (h *MessagesHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	read, err := boolQuery(r, "read")
	if err != nil {
		writeError(w, r, err)
		return
	}
	messages, err := h.service.ListMessages(r.Context(), portfolio.MessageFilter{Read: read})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, messages)
}

func (h *MessagesHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.GetMessage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, msg)
}

func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.MarkMessageRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, msg)
}

func (h *MessagesHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMessage(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, "Message deleted")
}
