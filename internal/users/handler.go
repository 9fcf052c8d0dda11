package users

import (
	"net/http"

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

// CreateUser handles POST /api/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	reg, err := req.Registration()
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	user, err := h.svc.Register(r.Context(), reg)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	h.log.Info("user registered", zap.String("user_id", user.ID))
	w.Header().Set("Location", "/api/users/"+user.ID)
	respond.JSON(w, user, http.StatusCreated)
}
