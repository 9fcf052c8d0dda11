package notes

import (
	"context"
	"net/http"

	"noteful/internal/auth"
	"noteful/internal/respond"
	"noteful/views/models"
	"noteful/views/pages"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TagNamer resolves the owner's tag ids to their names. Ids that are not
// the owner's tags are left out of the result.
type TagNamer interface {
	TagNames(ctx context.Context, owner primitive.ObjectID, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

type Handler struct {
	svc  *Service
	tags TagNamer
	log  *zap.Logger
}

func NewHandler(svc *Service, tags TagNamer, log *zap.Logger) *Handler {
	return &Handler{svc: svc, tags: tags, log: log}
}

// ListNotes handles GET /api/notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}

	query := r.URL.Query()
	opts := ListOptions{
		SearchTerm: query.Get("searchTerm"),
		FolderID:   query.Get("folderId"),
		TagIDs:     query["tagId"],
		Limit:      respond.ParseInt(query.Get("limit"), defaultLimit),
		Offset:     respond.ParseInt(query.Get("offset"), 0),
	}

	list, err := h.svc.List(r.Context(), p.ID, opts)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, list, http.StatusOK)
}

// GetNote handles GET /api/notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}

	note, err := h.svc.Get(r.Context(), p.ID, r.PathValue("id"))
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, note, http.StatusOK)
}

// CreateNote handles POST /api/notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}

	var input NoteInput
	if err := respond.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	note, err := h.svc.Create(r.Context(), p.ID, input)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	w.Header().Set("Location", r.URL.Path+"/"+note.ID)
	respond.JSON(w, note, http.StatusCreated)
}

// UpdateNote handles PUT /api/notes/{id}
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}

	var input NoteInput
	if err := respond.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	note, err := h.svc.Update(r.Context(), p.ID, r.PathValue("id"), input)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, note, http.StatusOK)
}

// DeleteNote handles DELETE /api/notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
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

// NoteHTML handles GET /api/notes/{id}/html
func (h *Handler) NoteHTML(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.Require(w, r, h.log)
	if !ok {
		return
	}

	note, err := h.svc.Get(r.Context(), p.ID, r.PathValue("id"))
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	html, err := h.svc.RenderMarkdown(note.Content)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	labels, err := h.tagLabels(r.Context(), p.ID, note.Tags)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.NotePage(noteToPage(note, html, labels)).Render(r.Context(), w); err != nil {
		h.log.Error("failed to render note page", zap.String("note_id", note.ID), zap.Error(err))
	}
}

// tagLabels pairs each tag id with its name, keeping the note's tag order.
func (h *Handler) tagLabels(ctx context.Context, owner primitive.ObjectID, hexIDs []string) ([]models.TagLabel, error) {
	labels := make([]models.TagLabel, len(hexIDs))
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for i, hex := range hexIDs {
		labels[i].ID = hex
		if id, err := primitive.ObjectIDFromHex(hex); err == nil {
			ids = append(ids, id)
		}
	}
	if h.tags == nil || len(ids) == 0 {
		return labels, nil
	}

	names, err := h.tags.TagNames(ctx, owner, ids)
	if err != nil {
		return nil, err
	}
	for i := range labels {
		if id, err := primitive.ObjectIDFromHex(labels[i].ID); err == nil {
			labels[i].Name = names[id]
		}
	}
	return labels, nil
}

func noteToPage(note *NoteView, html string, tags []models.TagLabel) models.NotePage {
	return models.NotePage{
		ID:       note.ID,
		Title:    note.Title,
		HTML:     html,
		FolderID: note.FolderID,
		Tags:     tags,
		Created:  note.Created,
		Updated:  note.Updated,
	}
}
