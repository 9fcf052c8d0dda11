package folders

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

// ListFolders handles GET /api/folders
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
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

// GetFolder handles GET /api/folders/{id}
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}
	folder, err := h.svc.Get(r.Context(), p.ID, r.PathValue("id"))
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, folder, http.StatusOK)
}

// CreateFolder handles POST /api/folders
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}
	var input Input
	if err := respond.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	folder, err := h.svc.Create(r.Context(), p.ID, input)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	w.Header().Set("Location", r.URL.Path+"/"+folder.ID)
	respond.JSON(w, folder, http.StatusCreated)
}

// UpdateFolder handles PUT /api/folders/{id}
func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}
	var input Input
	if err := respond.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	folder, err := h.svc.Update(r.Context(), p.ID, r.PathValue("id"), input)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, folder, http.StatusOK)
}

// DeleteFolder handles DELETE /api/folders/{id}
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
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
