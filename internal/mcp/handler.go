// Package mcp exposes navigation queries as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/site"
	"git.home.luguber.info/inful/docnav/internal/sidebar"
	"git.home.luguber.info/inful/docnav/internal/version"
)

// Source yields the snapshot in service.
type Source interface {
	Current() *site.Snapshot
}

// DocumentRequest names a document by id.
type DocumentRequest struct {
	ID string `json:"id"`
}

// ListRequest takes no arguments.
type ListRequest struct{}

// BreadcrumbsResponse is the result of getBreadcrumbs.
type BreadcrumbsResponse struct {
	ID         string   `json:"id"`
	Sidebar    string   `json:"sidebar"`
	Breadcrumb []string `json:"breadcrumb"`
}

// DocumentEntry is one element of the listDocuments result.
type DocumentEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
	Sidebar   string `json:"sidebar,omitempty"`
	Unlisted  bool   `json:"unlisted,omitempty"`
}

var errNoSnapshot = errors.New("no documentation snapshot is available yet")

type handlers struct {
	src Source
	rec metrics.Recorder
}

// NewServer creates an MCP server with the navigation tools.
func NewServer(src Source, rec metrics.Recorder) *server.MCPServer {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	h := &handlers{src: src, rec: rec}

	s := server.NewMCPServer(
		"docnav",
		version.Version,
		server.WithToolCapabilities(false),
	)

	idArg := mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Document id, e.g. sycl/basic-kernel"),
	)
	s.AddTool(mcp.NewTool("getDocument",
		mcp.WithDescription("Get a document's metadata with its sidebar, previous/next links and breadcrumb"),
		idArg,
	), mcp.NewTypedToolHandler(h.getDocument))
	s.AddTool(mcp.NewTool("getNeighbors",
		mcp.WithDescription("Get the previous and next documents of a document in its sidebar"),
		idArg,
	), mcp.NewTypedToolHandler(h.getNeighbors))
	s.AddTool(mcp.NewTool("getBreadcrumbs",
		mcp.WithDescription("Get the category labels enclosing a document, root first"),
		idArg,
	), mcp.NewTypedToolHandler(h.getBreadcrumbs))
	s.AddTool(mcp.NewTool("listDocuments",
		mcp.WithDescription("List every document in registration order"),
	), mcp.NewTypedToolHandler(h.listDocuments))

	return s
}

// NewHTTPHandler serves s over streamable HTTP at endpoint.
func NewHTTPHandler(s *server.MCPServer, endpoint string) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath(endpoint))
}

func (h *handlers) getDocument(_ context.Context, _ mcp.CallToolRequest, args DocumentRequest) (*mcp.CallToolResult, error) {
	return h.withDocument("getDocument", args, func(snap *site.Snapshot) (any, error) {
		return snap.Metadata(args.ID)
	})
}

func (h *handlers) getNeighbors(_ context.Context, _ mcp.CallToolRequest, args DocumentRequest) (*mcp.CallToolResult, error) {
	return h.withDocument("getNeighbors", args, func(snap *site.Snapshot) (any, error) {
		return snap.NeighborsOf(args.ID)
	})
}

func (h *handlers) getBreadcrumbs(_ context.Context, _ mcp.CallToolRequest, args DocumentRequest) (*mcp.CallToolResult, error) {
	return h.withDocument("getBreadcrumbs", args, func(snap *site.Snapshot) (any, error) {
		path, err := snap.PathOf(args.ID)
		if err != nil {
			return nil, err
		}
		name, _ := snap.Sidebars.SidebarOf(args.ID)
		return BreadcrumbsResponse{ID: args.ID, Sidebar: name, Breadcrumb: path}, nil
	})
}

func (h *handlers) listDocuments(_ context.Context, _ mcp.CallToolRequest, _ ListRequest) (*mcp.CallToolResult, error) {
	snap := h.src.Current()
	if snap == nil {
		h.rec.IncQuery("mcp.listDocuments", metrics.ResultFailed)
		return mcp.NewToolResultError(errNoSnapshot.Error()), nil
	}
	entries := make([]DocumentEntry, 0, snap.Registry.Len())
	for doc := range snap.All() {
		name, _ := snap.Sidebars.SidebarOf(doc.ID)
		entries = append(entries, DocumentEntry{
			ID:        doc.ID,
			Title:     doc.Title,
			Permalink: doc.Permalink,
			Sidebar:   name,
			Unlisted:  doc.Unlisted,
		})
	}
	h.rec.IncQuery("mcp.listDocuments", metrics.ResultSuccess)
	return jsonResult(entries)
}

func (h *handlers) withDocument(op string, args DocumentRequest, fn func(*site.Snapshot) (any, error)) (*mcp.CallToolResult, error) {
	if args.ID == "" {
		h.rec.IncQuery("mcp."+op, metrics.ResultFailed)
		return mcp.NewToolResultError("id is required"), nil
	}
	snap := h.src.Current()
	if snap == nil {
		h.rec.IncQuery("mcp."+op, metrics.ResultFailed)
		return mcp.NewToolResultError(errNoSnapshot.Error()), nil
	}
	v, err := fn(snap)
	if err != nil {
		result := metrics.ResultFailed
		msg := fmt.Sprintf("%s failed: %v", op, err)
		if errors.Is(err, content.ErrNotFound) {
			result = metrics.ResultNotFound
			msg = notFoundMessage(args.ID, err)
		}
		h.rec.IncQuery("mcp."+op, result)
		return mcp.NewToolResultError(msg), nil
	}
	h.rec.IncQuery("mcp."+op, metrics.ResultSuccess)
	return jsonResult(v)
}

func notFoundMessage(id string, err error) string {
	if errors.Is(err, sidebar.ErrUnlisted) {
		return fmt.Sprintf("document %q is not in any sidebar", id)
	}
	return fmt.Sprintf("document %q not found", id)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
