// Package server assembles the HTTP surface: public account routes,
// bearer-protected resource routes and the MCP endpoint.
package server

import (
	"net/http"

	"noteful/internal/auth"
	"noteful/internal/folders"
	"noteful/internal/notes"
	"noteful/internal/ratelimit"
	"noteful/internal/tags"
	"noteful/internal/users"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

type Deps struct {
	Users   *users.Handler
	Auth    *auth.Handler
	Notes   *notes.Handler
	Folders *folders.Handler
	Tags    *tags.Handler

	Issuer      *auth.Issuer
	LoginLimit  *ratelimit.Limiter
	MCP         *server.MCPServer
	CorsOrigins []string
	Log         *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	protect := auth.RequireBearer(d.Issuer, d.Log)
	private := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, protect(h))
	}

	// Accounts
	mux.HandleFunc("POST /api/users", d.Users.CreateUser)
	mux.HandleFunc("POST /api/login", d.LoginLimit.ByClientIP(d.Auth.Login, d.Log))
	private("POST /api/refresh", d.Auth.Refresh)

	// Notes
	private("GET /api/notes", d.Notes.ListNotes)
	private("POST /api/notes", d.Notes.CreateNote)
	private("GET /api/notes/{id}", d.Notes.GetNote)
	private("PUT /api/notes/{id}", d.Notes.UpdateNote)
	private("DELETE /api/notes/{id}", d.Notes.DeleteNote)
	private("GET /api/notes/{id}/html", d.Notes.NoteHTML)

	// Folders
	private("GET /api/folders", d.Folders.ListFolders)
	private("POST /api/folders", d.Folders.CreateFolder)
	private("GET /api/folders/{id}", d.Folders.GetFolder)
	private("PUT /api/folders/{id}", d.Folders.UpdateFolder)
	private("DELETE /api/folders/{id}", d.Folders.DeleteFolder)

	// Tags
	private("GET /api/tags", d.Tags.ListTags)
	private("POST /api/tags", d.Tags.CreateTag)
	private("GET /api/tags/{id}", d.Tags.GetTag)
	private("PUT /api/tags/{id}", d.Tags.UpdateTag)
	private("DELETE /api/tags/{id}", d.Tags.DeleteTag)

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	if d.MCP != nil {
		// Tool handlers read the caller from the request context.
		mcpHTTP := protect(server.NewStreamableHTTPServer(d.MCP))
		mux.Handle("POST /mcp", mcpHTTP)
		mux.Handle("GET /mcp", mcpHTTP)
		mux.Handle("DELETE /mcp", mcpHTTP)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return chain(mux,
		recoverer(d.Log),
		accessLog(d.Log),
		cors(d.CorsOrigins),
		requestID,
	)
}
