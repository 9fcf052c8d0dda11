package auth

import (
	"context"
	"net/http"

	"noteful/internal/apperr"
	"noteful/internal/respond"

	"go.uber.org/zap"
)

// Authenticator checks a username/password pair. Unknown users and wrong
// passwords must both yield apperr.ErrUnauthorized.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (Principal, error)
}

type Handler struct {
	accounts Authenticator
	issuer   *Issuer
	log      *zap.Logger
}

func NewHandler(accounts Authenticator, issuer *Issuer, log *zap.Logger) *Handler {
	return &Handler{accounts: accounts, issuer: issuer, log: log}
}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AuthToken string `json:"authToken"`
}

// Login handles POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := respond.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	if input.Username == "" || input.Password == "" {
		respond.Error(w, r, h.log, apperr.ErrMissingCredentials)
		return
	}

	p, err := h.accounts.Authenticate(r.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	h.issue(w, r, p)
}

// Refresh handles POST /api/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	p, ok := FromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.log, apperr.ErrUnauthorized)
		return
	}
	h.issue(w, r, p)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, p Principal) {
	token, err := h.issuer.Sign(p)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, tokenResponse{AuthToken: token}, http.StatusOK)
}
