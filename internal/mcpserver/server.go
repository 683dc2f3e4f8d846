// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the glossary to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/repository"
	"github.com/starford/lexicon/internal/termservice"
)

// TermFormatURI is the resource address of the document format contract.
const TermFormatURI = "lexicon://term-format"

// Server wraps the MCP server with the glossary tools.
type Server struct {
	mcp  *server.MCPServer
	svc  *termservice.Service
	repo *repository.Repository
}

// New creates a new MCP server with all tools registered.
func New(svc *termservice.Service, repo *repository.Repository, version string) *Server {
	s := &Server{svc: svc, repo: repo}

	s.mcp = server.NewMCPServer(
		"lexicon",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_terms",
		mcp.WithDescription("List published glossary terms, newest first."),
		mcp.WithString("lang", mcp.Description("Language code of a translated partition; empty for the primary language")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of terms (0 for all)")),
		mcp.WithNumber("offset", mcp.Description("Number of terms to skip")),
	), s.listTerms)

	s.mcp.AddTool(mcp.NewTool("read_term",
		mcp.WithDescription("Read one glossary term by slug, either as its Markdown source or rendered to HTML."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Term slug, e.g. closure")),
		mcp.WithString("lang", mcp.Description("Language code; empty for the primary language")),
		mcp.WithString("format", mcp.Description("markdown (default) or html"), mcp.Enum("markdown", "html")),
	), s.readTerm)

	s.mcp.AddTool(mcp.NewTool("get_neighbors",
		mcp.WithDescription("Return the previous and next terms in alphabetical slug order."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Term slug")),
		mcp.WithString("lang", mcp.Description("Language code; empty for the primary language")),
	), s.getNeighbors)

	s.mcp.AddTool(mcp.NewTool("get_languages",
		mcp.WithDescription("Report which configured languages have a translation of a term."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Term slug")),
	), s.getLanguages)

	s.mcp.AddTool(mcp.NewTool("check_corpus",
		mcp.WithDescription("Load every partition and list documents skipped as malformed or duplicated."),
	), s.checkCorpus)

	s.mcp.AddTool(mcp.NewTool("get_term_contract",
		mcp.WithDescription("Returns the document format contract. "+
			"Call this before drafting a new term so the front-matter validates."),
	), s.getTermContract)

	s.mcp.AddResource(
		mcp.NewResource(TermFormatURI, "Term Format Contract",
			mcp.WithResourceDescription("Front-matter schema and Markdown conventions for glossary terms."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTermFormatResource,
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

// toolError converts a domain error into a tool-level error result.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.Is(err, apperr.ErrStorageUnavailable):
		return mcp.NewToolResultError("corpus unavailable")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTerms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 0)
	offset := req.GetInt("offset", 0)
	if limit < 0 || offset < 0 {
		return mcp.NewToolResultError("limit and offset must be non-negative"), nil
	}
	list, err := s.svc.ListTerms(ctx, req.GetString("lang", ""), limit, offset)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(list)
}

// termSource is the markdown view of a term returned by read_term.
type termSource struct {
	Slug     string          `json:"slug"`
	Title    string          `json:"title"`
	Date     *time.Time      `json:"date,omitempty"`
	Category models.Category `json:"category,omitempty"`
	Lang     string          `json:"lang,omitempty"`
	Body     string          `json:"body"`
}

func (s *Server) readTerm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lang := req.GetString("lang", "")

	switch format := req.GetString("format", "markdown"); format {
	case "html":
		term, err := s.svc.GetTerm(ctx, slug, lang)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(term)
	case "markdown", "":
		term, err := s.repo.Lookup(ctx, slug, lang)
		if err != nil {
			return toolError(err), nil
		}
		src := termSource{
			Slug:     term.Slug,
			Title:    term.Title,
			Category: term.Category,
			Lang:     term.Language,
			Body:     term.Body,
		}
		if !term.Date.IsZero() {
			src.Date = &term.Date
		}
		return jsonResult(src)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
}

func (s *Server) getNeighbors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prev, next, err := s.svc.Neighbors(ctx, slug, req.GetString("lang", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(map[string]*models.NavLink{"previous": prev, "next": next})
}

func (s *Server) getLanguages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	langs, err := s.svc.Languages(ctx, slug)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(langs)
}

func (s *Server) checkCorpus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	problems, err := s.repo.Check(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if len(problems) == 0 {
		return mcp.NewToolResultText("no problems found"), nil
	}
	lines := make([]string, len(problems))
	for i, p := range problems {
		lines[i] = p.Error()
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getTermContract(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TermFormatContract), nil
}

func (s *Server) readTermFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TermFormatURI,
			MIMEType: "text/markdown",
			Text:     TermFormatContract,
		},
	}, nil
}
