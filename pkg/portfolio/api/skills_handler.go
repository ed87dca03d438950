package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// SkillsHandler handles skill endpoints
type SkillsHandler struct {
	service portfolio.Service
}

func NewSkillsHandler(service portfolio.Service) *SkillsHandler {
	return &SkillsHandler{service: service}
}

func (h *SkillsHandler) Routes(read, write func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(read)
		r.Get("/", h.ListSkills)
		r.Get("/{id}", h.GetSkill)
	})
	r.Group(func(r chi.Router) {
		r.Use(write)
		r.Post("/", h.CreateSkill)
		r.Put("/{id}", h.UpdateSkill)
		r.Delete("/{id}", h.DeleteSkill)
	})
	return r
}

func (h *SkillsHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.service.ListSkills(r.Context(), portfolio.SkillFilter{
		Category: portfolio.SkillCategory(r.URL.Query().Get("category")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, skills)
}

func (h *SkillsHandler) GetSkill(w http.ResponseWriter, r *http.Request) {
	skill, err := h.service.GetSkill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, skill)
}

func (h *SkillsHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var req portfolio.CreateSkillRequest
	if err := decodeJSON(w, r, DefaultMaxUploadBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	skill, err := h.service.CreateSkill(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, skill)
}

func (h *SkillsHandler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	var req portfolio.UpdateSkillRequest
	if err := decodeJSON(w, r, DefaultMaxUploadBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	skill, err := h.service.UpdateSkill(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, skill)
}

func (h *SkillsHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSkill(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, "Skill deleted")
}
