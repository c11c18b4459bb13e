// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the lotpad editor session as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lotpad/internal/apperr"
	"github.com/starford/lotpad/internal/editor"
	"github.com/starford/lotpad/internal/editorservice"
)

const modesURI = "lotpad://editor-modes"

// Server wraps the MCP server with lotpad tools.
type Server struct {
	mcp *server.MCPServer
	svc *editorservice.Service
}

// New creates a new MCP server with all editor tools registered.
func New(svc *editorservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"lotpad",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_editor_state",
		mcp.WithDescription("Return the buffer, file name, mode and label of the editor session."),
	), s.getState)

	s.mcp.AddTool(mcp.NewTool("edit_text",
		mcp.WithDescription("Replace the editor buffer with the given text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("New buffer content")),
	), s.editText)

	s.mcp.AddTool(mcp.NewTool("save",
		mcp.WithDescription("Save the buffer under its current file name. "+
			"If the session has never been saved, name is used as for save_as."),
		mcp.WithString("name", mcp.Description("File name to use when the session has none")),
	), s.save)

	s.mcp.AddTool(mcp.NewTool("save_as",
		mcp.WithDescription("Save the buffer under a new file name (.txt is appended if missing)."),
		mcp.WithString("name", mcp.Required(), mcp.Description("File name")),
	), s.saveAs)

	s.mcp.AddTool(mcp.NewTool("new_file",
		mcp.WithDescription("Discard the buffer and start an unsaved empty document."),
	), s.newFile)

	s.mcp.AddTool(mcp.NewTool("open_file",
		mcp.WithDescription("Load a stored file into the editor."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Stored file name")),
	), s.openFile)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List stored file names, one per line."),
	), s.listFiles)

	s.mcp.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read a stored file without opening it."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Stored file name")),
	), s.readFile)

	s.mcp.AddResource(
		mcp.NewResource(modesURI, "Editor Modes",
			mcp.WithResourceDescription("How each editor tool behaves in each mode."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readModesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func stateResult(st editor.State, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		if errors.Is(err, apperr.ErrPromptCancelled) {
			return mcp.NewToolResultError("a file name is required"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(st, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getState(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return stateResult(s.svc.State(ctx), nil)
}

func (s *Server) editText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return stateResult(s.svc.Edit(ctx, text))
}

func (s *Server) save(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return stateResult(s.svc.Save(ctx, req.GetString("name", "")))
}

func (s *Server) saveAs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return stateResult(s.svc.SaveAs(ctx, name))
}

func (s *Server) newFile(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return stateResult(s.svc.NewFile(ctx))
}

func (s *Server) openFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.svc.Open(ctx, name)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found: " + name), nil
	}
	return stateResult(st, err)
}

func (s *Server) listFiles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.svc.Files(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("no files"), nil
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) readFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := s.svc.ReadFile(ctx, name)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found: " + name), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) readModesResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      modesURI,
			MIMEType: "text/markdown",
			Text:     ModesContract,
		},
	}, nil
}
