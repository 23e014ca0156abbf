// Package server wires resolved Space endpoints into an MCP server:
// one tool and one prompt per endpoint, plus working-directory resources.
package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tsubasakong/mcp-hfspace/src/content"
	"github.com/tsubasakong/mcp-hfspace/src/endpoint"
	"github.com/tsubasakong/mcp-hfspace/src/workdir"
)

// Options configures server construction.
type Options struct {
	Version     string
	Token       string
	DesktopMode bool
	Workdir     *workdir.Dir
	Registry    *content.Registry
	// BaseURL overrides derived Space URLs (tests).
	BaseURL    string
	HTTPClient *http.Client
	Logger     func(format string, args ...interface{})
}

// Server is the assembled MCP server plus its bound endpoints.
type Server struct {
	mcp      *mcpserver.MCPServer
	wrappers []*endpoint.Wrapper
	workdir  *workdir.Dir
	logger   func(format string, args ...interface{})
}

// New resolves each space path and registers the surviving endpoints.
// Resolution failures are logged and skipped; only an empty result is
// fatal.
func New(ctx context.Context, spaces []string, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = func(format string, args ...interface{}) {}
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	var wrappers []*endpoint.Wrapper
	for _, path := range spaces {
		w, err := endpoint.New(ctx, path, endpoint.Options{
			Token:       opts.Token,
			BaseURL:     opts.BaseURL,
			DesktopMode: opts.DesktopMode,
			Registry:    opts.Registry,
			Workdir:     opts.Workdir,
			HTTPClient:  opts.HTTPClient,
			Logger:      opts.Logger,
		})
		if err != nil {
			opts.Logger("skipping %s: %v", path, err)
			continue
		}
		wrappers = append(wrappers, w)
	}
	if len(wrappers) == 0 {
		return nil, fmt.Errorf("no endpoints could be resolved from %d space path(s)", len(spaces))
	}

	srv := mcpserver.NewMCPServer("mcp-hfspace", opts.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithResourceCapabilities(false, true),
		mcpserver.WithRecovery(),
	)

	s := &Server{mcp: srv, wrappers: wrappers, workdir: opts.Workdir, logger: opts.Logger}
	for _, w := range wrappers {
		s.register(w)
	}
	s.registerResources()
	return s, nil
}

// MCP exposes the underlying server, mainly for tests.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Wrappers returns the bound endpoints.
func (s *Server) Wrappers() []*endpoint.Wrapper { return s.wrappers }

// ServeStdio blocks serving the MCP stdio transport.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcp)
}

func (s *Server) register(w *endpoint.Wrapper) {
	s.logger("registering %s as tool %q", w.Ref().DisplayName(), w.Ref().ToolName())
	s.mcp.AddTool(w.ToolDefinition(), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return w.HandleToolCall(ctx, req, notifyProgress)
	})
	s.mcp.AddPrompt(w.PromptDefinition(), w.HandlePrompt)
}

// notifyProgress relays one progress notification to the session that
// issued the call. Outside a session it is a no-op.
func notifyProgress(ctx context.Context, params map[string]any) error {
	srv := mcpserver.ServerFromContext(ctx)
	if srv == nil {
		return nil
	}
	return srv.SendNotificationToClient(ctx, "notifications/progress", params)
}

// registerResources exposes the working directory: files already present
// at startup are listed individually, and a template serves any path the
// directory later accepts.
func (s *Server) registerResources() {
	if s.workdir == nil {
		return
	}
	entries, err := s.workdir.List()
	if err != nil {
		s.logger("listing working directory failed: %v", err)
	}
	for _, entry := range entries {
		s.mcp.AddResource(mcp.NewResource(entry.URI, entry.Name,
			mcp.WithResourceDescription(fmt.Sprintf("File %s in the working directory", entry.Name)),
			mcp.WithMIMEType(content.MIMEFromFilename(entry.Name)),
		), s.readResource)
	}
	s.mcp.AddResourceTemplate(mcp.NewResourceTemplate(
		workdir.FileURI(s.workdir.Root())+"/{name}",
		"Working directory file",
		mcp.WithTemplateDescription("Files saved under the working directory"),
	), s.readResource)
}

func (s *Server) readResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	data, err := s.workdir.Read(uri)
	if err != nil {
		return nil, err
	}
	mimeType := content.MIMEFromFilename(uri)
	if isTextMIME(mimeType) {
		return []mcp.ResourceContents{mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeType,
			Text:     string(data),
		}}, nil
	}
	return []mcp.ResourceContents{mcp.BlobResourceContents{
		URI:      uri,
		MIMEType: mimeType,
		Blob:     base64.StdEncoding.EncodeToString(data),
	}}, nil
}

// isTextMIME decides between text and blob resource contents. The
// extension mapping emits application/<ext> for non-media files, so the
// common plain-text extensions are listed explicitly.
func isTextMIME(mimeType string) bool {
	switch mimeType {
	case "", "application/json", "application/yaml", "application/xml",
		"application/txt", "application/md", "application/csv":
		return true
	}
	return strings.HasPrefix(mimeType, "text/")
}
