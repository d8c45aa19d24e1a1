package mcp

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/synthaser/pkg/rulegraph"
	"github.com/macropower/synthaser/pkg/runner"
	"github.com/macropower/synthaser/pkg/synthase"
	"github.com/macropower/synthaser/pkg/version"
)

// ErrNoInput is returned when a classify call names neither a path nor a
// document, and no path was classified before.
var ErrNoInput = errors.New("either path or document is required")

// Runner classifies synthases for the server.
type Runner interface {
	ConfigureContext(ctx context.Context, opts ...runner.Opt) error
	RunContext(ctx context.Context) runner.Output
	ClassifyContext(ctx context.Context, synthases []*synthase.Synthase) runner.Output
	Graph() *rulegraph.Graph
}

// Server implements the MCP server for synthaser.
type Server struct {
	runner      Runner
	server      *mcp.Server
	tracer      trace.Tracer
	synthases   map[string]*synthase.Synthase
	address     string
	initialPath string
	currentPath string
	mu          sync.Mutex
}

// NewServer creates a new MCP server instance. The initialPath, if set, is
// classified when a classify call names neither a path nor a document.
func NewServer(address string, r Runner, initialPath string) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	opts := &mcp.ServerOptions{
		Instructions: instructions,
	}

	s := &Server{
		address:     address,
		server:      mcp.NewServer(impl, opts),
		runner:      r,
		tracer:      otel.Tracer("mcp"),
		synthases:   make(map[string]*synthase.Synthase),
		initialPath: initialPath,
	}

	s.registerTools()

	return s
}

// registerTools registers all available tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify",
		Description: "Classify synthases from their domain hits. Provide a path to a synthase document, or the document itself (JSON or YAML). Optionally filter the reported synthases with a CEL 'where' expression.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Path to a JSON or YAML synthase document.",
				},
				"document": {
					Type:        "string",
					Description: "A JSON or YAML synthase document. Takes precedence over path.",
				},
				"where": {
					Type:        "string",
					Description: `CEL expression selecting which synthases to report, e.g. '"NRPS" in classification' or 'architecture.contains("KS-AT")'.`,
				},
			},
		},
	}, WithTracing(s.tracer, s.handleClassify))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_synthase",
		Description: "Get the domain hits of a synthase from the latest classify call. You MUST use a header from the classify output EXACTLY.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"header": {
					Type:        "string",
					Description: "The header of the synthase.",
				},
			},
			Required: []string{"header"},
		},
	}, WithTracing(s.tracer, s.handleGetSynthase))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_rules",
		Description: "List the classification rules and every classification path the rule graph can produce.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, WithTracing(s.tracer, s.handleListRules))
}

// classify runs the classification requested by params and remembers the
// classified synthases for get_synthase.
func (s *Server) classify(ctx context.Context, params ClassifyParams) (runner.Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out runner.Output

	switch {
	case params.Document != "":
		synthases, err := synthase.Parse([]byte(params.Document))
		if err != nil {
			return out, fmt.Errorf("parse document: %w", err)
		}

		out = s.runner.ClassifyContext(ctx, synthases)

	default:
		path := cmp.Or(params.Path, s.currentPath, s.initialPath)
		if path == "" {
			return out, ErrNoInput
		}

		if path != s.currentPath {
			err := s.runner.ConfigureContext(ctx, runner.WithPaths(path))
			if err != nil {
				return out, fmt.Errorf("reconfigure runner with path %q: %w", path, err)
			}

			s.currentPath = path
		}

		out = s.runner.RunContext(ctx)
	}

	clear(s.synthases)

	for _, syn := range out.Synthases {
		s.synthases[syn.Header] = syn
	}

	return out, nil
}

func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve starts the MCP server. It serves over stdio when the address is
// empty, and over streamable HTTP otherwise.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve Stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	server := &http.Server{
		Addr:    s.address,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx) //nolint:contextcheck // The parent context is done.
		if err != nil {
			slog.Error("shutdown MCP server", slog.Any("error", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	t := mcp.NewLoggingTransport(mcp.NewStdioTransport(), os.Stderr)
	err := s.server.Run(ctx, t)
	if err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
