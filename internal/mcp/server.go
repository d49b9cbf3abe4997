package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oseda-dev/oseda/internal/models"
	"github.com/oseda-dev/oseda/internal/project"
	"github.com/oseda-dev/oseda/internal/store"
)

// Server exposes project validation, the catalogs and the check/deploy history as MCP tools.
type Server struct {
	store    store.Store
	validate project.ValidateOptions
	version  string
	log      *slog.Logger
}

// NewServer creates the MCP server wrapper. validate is the baseline for the
// validate tool; a skip_git argument can only relax it. The store may be nil,
// in which case the history tool reports that no history is available.
func NewServer(s store.Store, validate project.ValidateOptions, version string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if version == "" {
		version = "dev"
	}
	return &Server{store: s, validate: validate, version: version, log: log}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("oseda", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.validateTool())
	srv.AddTool(s.catalogTool())
	srv.AddTool(s.historyTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// oseda_validate
func (s *Server) validateTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("oseda_validate",
		mcp.WithDescription("Validate an oseda project directory: descriptor present and well-formed, author matches git user.name, title matches the directory name. Returns a JSON object with valid, kind, message and the parsed config."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Project directory")),
		mcp.WithBoolean("skip_git", mcp.Description("Skip the git identity check")),
	)
	return tool, s.handleValidate
}

type validateOut struct {
	Valid   bool                  `json:"valid"`
	Kind    string                `json:"kind,omitempty"`
	Message string                `json:"message,omitempty"`
	Config  *models.ProjectConfig `json:"config,omitempty"`
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := s.validate
	if request.GetBool("skip_git", false) {
		opts.SkipIdentityCheck = true
	}

	cfg, err := project.Validate(ctx, path, opts)
	out := validateOut{Valid: err == nil, Config: cfg}
	if err != nil {
		var cfgErr *project.ConfigError
		if errors.As(err, &cfgErr) {
			out.Kind = cfgErr.Kind.Error()
			out.Message = cfgErr.Message
		} else {
			out.Message = err.Error()
		}
		s.log.Info("validation failed", "path", path, "error", err)
	}
	return jsonResult(out)
}

// oseda_catalog
func (s *Server) catalogTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("oseda_catalog",
		mcp.WithDescription("List the allowed values of an oseda catalog: categories, colors (with hex values) or templates."),
		mcp.WithString("catalog", mcp.Required(), mcp.Description("Catalog name"), mcp.Enum("categories", "colors", "templates")),
	)
	return tool, s.handleCatalog
}

// CatalogEntry is one value of a catalog as shown to users and agents.
type CatalogEntry struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Hex   string `json:"hex,omitempty"`
	File  string `json:"slides_file,omitempty"`
}

func (s *Server) handleCatalog(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("catalog")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := Catalog(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries)
}

// Catalog returns the entries of the named catalog.
func Catalog(name string) ([]CatalogEntry, error) {
	var out []CatalogEntry
	switch name {
	case "categories":
		for _, c := range models.AllCategories() {
			out = append(out, CatalogEntry{Name: string(c), Label: c.Label()})
		}
	case "colors":
		for _, c := range models.AllColors() {
			out = append(out, CatalogEntry{Name: string(c), Hex: c.Hex()})
		}
	case "templates":
		for _, t := range models.AllTemplates() {
			out = append(out, CatalogEntry{Name: string(t), File: t.SlidesFile()})
		}
	default:
		return nil, fmt.Errorf("unknown catalog %q (want categories, colors or templates)", name)
	}
	return out, nil
}

// oseda_history
func (s *Server) historyTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("oseda_history",
		mcp.WithDescription("List recorded oseda check and deploy attempts, newest first."),
		mcp.WithString("project", mcp.Description("Filter by project name")),
		mcp.WithString("kind", mcp.Description("Filter by event kind"), mcp.Enum("check", "deploy")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of events (default 20)")),
	)
	return tool, s.handleHistory
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("history is not available: no database configured"), nil
	}
	filter := store.EventFilter{
		Project: request.GetString("project", ""),
		Kind:    models.EventKind(request.GetString("kind", "")),
		Limit:   request.GetInt("limit", 20),
	}
	events, err := s.store.ListEvents(ctx, filter)
	if err != nil {
		s.log.Error("list events", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("failed to list history: %v", err)), nil
	}
	if events == nil {
		events = []*models.Event{}
	}
	return jsonResult(events)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
