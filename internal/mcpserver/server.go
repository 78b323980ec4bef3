// Package mcpserver exposes OCA document tools over the Model Context
// Protocol: decode and validate, inspect the object-kind code table, index
// commands, run JSONPath queries, and read stored documents.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/agentic-research/ocaast/ast"
	"github.com/agentic-research/ocaast/internal/index"
	"github.com/agentic-research/ocaast/internal/linter"
	"github.com/agentic-research/ocaast/internal/query"
	"github.com/agentic-research/ocaast/internal/source"
	"github.com/agentic-research/ocaast/internal/store"
)

// Server bundles the MCP server with the state its tools share. Tool
// handlers only read that state, so calls may run concurrently.
type Server struct {
	mcp    *server.MCPServer
	walker *query.JSONWalker
	store  *store.Store
	log    *zap.Logger
}

// Options configures New.
type Options struct {
	Name    string
	Version string
	Store   *store.Store // optional; enables oca_get and oca_list
	Logger  *zap.Logger
}

// New builds the server and registers its tools.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{
		mcp:    server.NewMCPServer(opts.Name, opts.Version, server.WithToolCapabilities(false)),
		walker: query.NewJSONWalker(),
		store:  opts.Store,
		log:    opts.Logger,
	}

	s.mcp.AddTool(mcp.NewTool("oca_validate",
		mcp.WithDescription("Decode an OCA document (JSON or YAML) and report structural errors and lint findings."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document source text")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleValidate)

	s.mcp.AddTool(mcp.NewTool("oca_codes",
		mcp.WithDescription("List the object-kind integer codes and canonical overlay strings."),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleCodes)

	s.mcp.AddTool(mcp.NewTool("oca_index",
		mcp.WithDescription("Show, per object-kind code, which commands target it and which command writes it last."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document source text")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleIndex)

	s.mcp.AddTool(mcp.NewTool("oca_query",
		mcp.WithDescription("Run a JSONPath expression over the canonical JSON form of a document."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document source text")),
		mcp.WithString("path", mcp.Required(), mcp.Description("JSONPath, e.g. $.commands[*].type")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleQuery)

	if s.store != nil {
		s.mcp.AddTool(mcp.NewTool("oca_get",
			mcp.WithDescription("Fetch a stored document by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
			mcp.WithReadOnlyHintAnnotation(true),
		), s.handleGet)

		s.mcp.AddTool(mcp.NewTool("oca_list",
			mcp.WithDescription("List stored documents."),
			mcp.WithReadOnlyHintAnnotation(true),
		), s.handleList)
	}
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio serves requests on stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func decodeArg(req mcp.CallToolRequest) (*ast.OCAAst, *mcp.CallToolResult) {
	src, err := req.RequireString("document")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	doc, err := source.Decode([]byte(src), source.FormatUnknown)
	if err != nil {
		return nil, mcp.NewToolResultErrorFromErr("invalid document", err)
	}
	return doc, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleValidate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errRes := decodeArg(req)
	if errRes != nil {
		return errRes, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ok: version %s, %d commands\n", doc.Version(), doc.Len())
	for _, d := range linter.Lint(doc) {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleCodes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(index.CodeTable())
}

func (s *Server) handleIndex(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errRes := decodeArg(req)
	if errRes != nil {
		return errRes, nil
	}
	idx, err := index.Build(doc)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("index", err), nil
	}

	type entry struct {
		index.Writer
		Positions []int `json:"positions"`
	}
	out := make([]entry, 0, len(idx.Codes()))
	for _, w := range idx.LastWriters() {
		out = append(out, entry{Writer: w, Positions: index.Positions(idx.ByCode(w.Code))})
	}
	return jsonResult(out)
}

func (s *Server) handleQuery(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, errRes := decodeArg(req)
	if errRes != nil {
		return errRes, nil
	}
	matches, err := s.walker.Document(doc, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(query.Contexts(matches))
}

func (s *Server) handleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		s.log.Warn("store read failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return jsonResult(doc)
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		s.log.Warn("store list failed", zap.Error(err))
		return nil, err
	}
	ids := make([]string, len(list))
	for i, sum := range list {
		ids[i] = sum.ID
	}
	return jsonResult(ids)
}
