package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"noteful/internal/apperr"
	"noteful/internal/auth"
	"noteful/internal/folders"
	"noteful/internal/notes"
	"noteful/internal/ratelimit"
	"noteful/internal/tags"
	"noteful/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var bumper = auth.Principal{ID: primitive.NewObjectID(), Username: "bumper"}

type stubAccounts struct{}

func (stubAccounts) Authenticate(_ context.Context, username, password string) (auth.Principal, error) {
	if username == "bumper" && password == "catsarecool" {
		return bumper, nil
	}
	return auth.Principal{}, apperr.ErrUnauthorized
}

// newTestRouter wires real handlers over services whose stores are never
// reached by the routes exercised here.
func newTestRouter(t *testing.T) (http.Handler, *auth.Issuer) {
	t.Helper()
	log := zap.NewNop()
	issuer := auth.NewIssuer("secret", time.Hour)
	return NewRouter(Deps{
		Users:       users.NewHandler(users.NewService(nil, nil), log),
		Auth:        auth.NewHandler(stubAccounts{}, issuer, log),
		Notes:       notes.NewHandler(notes.NewService(nil, nil), nil, log),
		Folders:     folders.NewHandler(folders.NewService(nil, nil), log),
		Tags:        tags.NewHandler(tags.NewService(nil, nil), log),
		Issuer:      issuer,
		LoginLimit:  ratelimit.New(0.001, 2, time.Minute),
		CorsOrigins: []string{"https://app.example.com"},
		Log:         log,
	}), issuer
}

func TestHealthAndRequestID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, target := range []string{
		"GET /api/notes",
		"POST /api/notes",
		"GET /api/notes/000000000000000000000001/html",
		"DELETE /api/folders/000000000000000000000001",
		"PUT /api/tags/000000000000000000000001",
		"POST /api/refresh",
	} {
		method, path, _ := strings.Cut(target, " ")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestLoginAndRefresh(t *testing.T) {
	router, issuer := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"bumper","password":"catsarecool"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AuthToken string `json:"authToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	claims, err := issuer.Verify(body.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, bumper.ID, claims.User.ID)

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+body.AuthToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	router, _ := newTestRouter(t)

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodPost, "/api/login",
			strings.NewReader(`{"username":"bumper","password":"wrong"}`))
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{401, 401, 429}, codes)
}

func TestCORS(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/notes", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovererHidesPanic(t *testing.T) {
	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), recoverer(zap.NewNop()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}
