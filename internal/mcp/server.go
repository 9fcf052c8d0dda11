package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"noteful/internal/apperr"
	"noteful/internal/auth"
	"noteful/internal/folders"
	"noteful/internal/notes"
	"noteful/internal/tags"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

var errNoPrincipal = errors.New("not authenticated")

// NewServer creates an MCP server whose tools act as the authenticated
// caller. The HTTP transport must run behind auth.RequireBearer.
func NewServer(noteSvc *notes.Service, folderSvc *folders.Service, tagSvc *tags.Service, log *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"Noteful",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Tool: list_notes - list or search the caller's notes
	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List your notes, newest first. With a search term, notes are ranked by relevance (title matches weigh more than content)."),
			mcp.WithString("search_term",
				mcp.Description("Optional: full-text search over title and content"),
			),
			mcp.WithString("folder_id",
				mcp.Description("Optional: only notes in this folder"),
			),
			mcp.WithString("tag_ids",
				mcp.Description("Optional: comma-separated tag ids; notes must carry all of them"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of notes to return (default: 50, max: 200)"),
			),
			mcp.WithNumber("offset",
				mcp.Description("Number of notes to skip for pagination (default: 0)"),
			),
		),
		handleListNotes(noteSvc, log),
	)

	// Tool: get_note - one note by id
	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get one of your notes by its ID."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID (24-character hex string)"),
			),
		),
		handleGetNote(noteSvc, log),
	)

	// Tool: create_note
	s.AddTool(
		mcp.NewTool("create_note",
			mcp.WithDescription("Create a note. Folder and tags must be your own."),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Note title"),
			),
			mcp.WithString("content",
				mcp.Description("Markdown body"),
			),
			mcp.WithString("folder_id",
				mcp.Description("Optional: folder to file the note in"),
			),
			mcp.WithString("tag_ids",
				mcp.Description("Optional: comma-separated tag ids"),
			),
		),
		handleCreateNote(noteSvc, log),
	)

	// Tool: list_folders
	s.AddTool(
		mcp.NewTool("list_folders",
			mcp.WithDescription("List your folders sorted by name."),
		),
		handleListFolders(folderSvc, log),
	)

	// Tool: list_tags
	s.AddTool(
		mcp.NewTool("list_tags",
			mcp.WithDescription("List your tags sorted by name."),
		),
		handleListTags(tagSvc, log),
	)

	return s
}

func handleListNotes(svc *notes.Service, log *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, ok := auth.FromContext(ctx)
		if !ok {
			return nil, errNoPrincipal
		}

		list, err := svc.List(ctx, p.ID, notes.ListOptions{
			SearchTerm: req.GetString("search_term", ""),
			FolderID:   req.GetString("folder_id", ""),
			TagIDs:     splitIDs(req.GetString("tag_ids", "")),
			Limit:      req.GetInt("limit", 50),
			Offset:     req.GetInt("offset", 0),
		})
		if err != nil {
			return toolError(log, "list notes", err), nil
		}
		return jsonResult(list)
	}
}

func handleGetNote(svc *notes.Service, log *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, ok := auth.FromContext(ctx)
		if !ok {
			return nil, errNoPrincipal
		}
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.Get(ctx, p.ID, id)
		if err != nil {
			return toolError(log, "get note", err), nil
		}
		return jsonResult(note)
	}
}

func handleCreateNote(svc *notes.Service, log *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, ok := auth.FromContext(ctx)
		if !ok {
			return nil, errNoPrincipal
		}
		title, err := req.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError("title is required"), nil
		}

		note, err := svc.Create(ctx, p.ID, notes.NoteInput{
			Title:    title,
			Content:  req.GetString("content", ""),
			FolderID: req.GetString("folder_id", ""),
			Tags:     splitIDs(req.GetString("tag_ids", "")),
		})
		if err != nil {
			return toolError(log, "create note", err), nil
		}
		return jsonResult(note)
	}
}

func handleListFolders(svc *folders.Service, log *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, ok := auth.FromContext(ctx)
		if !ok {
			return nil, errNoPrincipal
		}
		list, err := svc.List(ctx, p.ID)
		if err != nil {
			return toolError(log, "list folders", err), nil
		}
		return jsonResult(list)
	}
}

func handleListTags(svc *tags.Service, log *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, ok := auth.FromContext(ctx)
		if !ok {
			return nil, errNoPrincipal
		}
		list, err := svc.List(ctx, p.ID)
		if err != nil {
			return toolError(log, "list tags", err), nil
		}
		return jsonResult(list)
	}
}

// Helper functions

// toolError reports a failed tool call. Only classified client errors keep
// their message; anything else is logged and reported generically.
func toolError(log *zap.Logger, action string, err error) *mcp.CallToolResult {
	if apperr.Public(err) {
		return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %s", action, apperr.Message(err)))
	}
	log.Error("mcp tool failed", zap.String("action", action), zap.Error(err))
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s: internal error", action))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
