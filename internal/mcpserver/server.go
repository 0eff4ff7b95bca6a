// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the course corpus to LLM clients via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/checklist"
	"github.com/starford/coursebook/internal/courseservice"
	"github.com/starford/coursebook/internal/models"
)

// LayoutURI is the resource URI of the corpus layout contract.
const LayoutURI = "coursebook://layout"

// Server wraps the MCP server with coursebook tools.
type Server struct {
	mcp *server.MCPServer
	svc *courseservice.Service
}

// New creates a new MCP server with all coursebook tools registered.
// version is reported to clients during initialisation.
func New(svc *courseservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Coursebook",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_modules",
		mcp.WithDescription("List course modules in recommended reading order."),
		mcp.WithString("level", mcp.Description("Optional level filter"),
			mcp.Enum(string(models.LevelBeginner), string(models.LevelIntermediate), string(models.LevelAdvanced))),
	), s.listModules)

	s.mcp.AddTool(mcp.NewTool("read_module",
		mcp.WithDescription("Read a module's theory, examples, exercises and solutions as Markdown."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Module id (see list_modules)")),
		mcp.WithBoolean("solutions", mcp.Description("Include worked solutions (default false)")),
	), s.readModule)

	s.mcp.AddTool(mcp.NewTool("search_modules",
		mcp.WithDescription("Full-text search through theory, examples, exercises and solutions."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchModules)

	s.mcp.AddTool(mcp.NewTool("get_progress",
		mcp.WithDescription("Show the learner's checklist as a table of contents with completion per section."),
	), s.getProgress)

	s.mcp.AddTool(mcp.NewTool("validate_corpus",
		mcp.WithDescription("Reload the corpus from disk and report structural defects and warnings as JSON."),
	), s.validateCorpus)

	s.mcp.AddTool(mcp.NewTool("get_layout_contract",
		mcp.WithDescription("Returns the corpus layout contract. "+
			"Call this before adding or editing modules to ensure the loader accepts them."),
	), s.getLayoutContract)

	// Resource: corpus layout contract.
	s.mcp.AddResource(
		mcp.NewResource(LayoutURI, "Corpus Layout Contract",
			mcp.WithResourceDescription("Directory layout and front matter rules every module must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLayoutResource,
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

func (s *Server) listModules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	level := req.GetString("level", "")
	var b strings.Builder
	for _, m := range s.svc.Modules(ctx) {
		if level != "" && string(m.Level) != level {
			continue
		}
		fmt.Fprintf(&b, "%d. %s (id: %s, level: %s, examples: %d, exercises: %d)\n",
			m.Ordinal, m.Title, m.ID, m.Level, m.Examples, m.Exercises)
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("no modules found"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) readModule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.svc.Module(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(moduleMarkdown(m, req.GetBool("solutions", false))), nil
}

// moduleMarkdown flattens a module into a single Markdown document.
func moduleMarkdown(m *models.Module, withSolutions bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %d. %s\n\nLevel: %s\n\n", m.Ordinal, m.Title, m.Level)
	b.WriteString(strings.TrimSpace(m.Theory))
	b.WriteString("\n")

	if len(m.Examples) > 0 {
		b.WriteString("\n## Examples\n")
		for _, e := range m.Examples {
			fmt.Fprintf(&b, "\n### %s\n\n```%s\n%s\n```\n", e.Name, e.Language, strings.TrimRight(e.Code, "\n"))
			if e.ExpectedOutput != "" {
				fmt.Fprintf(&b, "\nOutput:\n\n```\n%s\n```\n", strings.TrimRight(e.ExpectedOutput, "\n"))
			}
		}
	}
	if len(m.Exercises) > 0 {
		b.WriteString("\n## Exercises\n")
		for _, ex := range m.Exercises {
			fmt.Fprintf(&b, "\n### %s\n\n%s\n", ex.Title, strings.TrimSpace(ex.Prompt))
			if ex.Solution != "" && !withSolutions {
				fmt.Fprintf(&b, "\n_Solution available: %s_\n", ex.Solution)
			}
		}
	}
	if withSolutions && len(m.Solutions) > 0 {
		b.WriteString("\n## Solutions\n")
		for _, sol := range m.Solutions {
			fmt.Fprintf(&b, "\n### %s\n\n```%s\n%s\n```\n", sol.Name, sol.Language, strings.TrimRight(sol.Code, "\n"))
		}
	}
	return b.String()
}

func (s *Server) searchModules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getProgress(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cl, err := s.svc.Progress(ctx)
	if err != nil {
		return mcp.NewToolResultText("no checklist found"), nil
	}
	var buf bytes.Buffer
	if err := checklist.RenderText(&buf, cl); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) validateCorpus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.svc.Reload(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(s.svc.Report(ctx), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getLayoutContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(LayoutContract), nil
}

func (s *Server) readLayoutResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      LayoutURI,
			MIMEType: "text/markdown",
			Text:     LayoutContract,
		},
	}, nil
}
