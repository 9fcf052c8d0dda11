package tags

import (
	"net/http"

	"noteful/internal/auth"
	"noteful/internal/respond"

	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// ListTags handles GET /api/tags
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}
	list, err := h.svc.List(r.Context(), p.ID)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, list, http.StatusOK)
}

// GetTag handles GET /api/tags/{id}
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}
	tag, err := h.svc.Get(r.Context(), p.ID, r.PathValue("id"))
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, tag, http.StatusOK)
}

// CreateTag handles POST /api/tags
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}
	var input Input
	if err := respond.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	tag, err := h.svc.Create(r.Context(), p.ID, input)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	w.Header().Set("Location", r.URL.Path+"/"+tag.ID)
	respond.JSON(w, tag, http.StatusCreated)
}

// UpdateTag handles PUT /api/tags/{id}
func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}
	var input Input
	if err := respond.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	tag, err := h.svc.Update(r.Context(), p.ID, r.PathValue("id"), input)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, tag, http.StatusOK)
}

// DeleteTag handles DELETE /api/tags/{id}
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), p.ID, r.PathValue("id")); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
