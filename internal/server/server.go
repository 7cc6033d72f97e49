package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"quiver/internal/api"
	"quiver/internal/config"
	"quiver/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Server exposes a registry over the Model Context Protocol. It advertises
// the registry's non-deprecated definitions and dispatches calls back into
// the registry.
type Server struct {
	cfg       config.ServerConfig
	version   string
	registry  api.RegistryHandler
	mcpServer *server.MCPServer
	tracer    trace.Tracer

	// Transport-specific servers
	sseServer            *server.SSEServer
	streamableHTTPServer *server.StreamableHTTPServer
	stdioServer          *server.StdioServer
	stdin                io.Reader
	stdout               io.Writer

	// Registry change notifications, coalesced to at most one pending resync
	listener *api.ListenerFunc
	updates  chan struct{}

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex
	started    bool

	toolManager   *activeItemManager
	promptManager *activeItemManager
}

// Option configures a Server.
type Option func(*Server)

// WithTracer sets the tracer used for call spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithVersion sets the server version reported at initialize. Empty keeps "dev".
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// WithStdio replaces os.Stdin and os.Stdout for the stdio transport.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.stdin = in
		s.stdout = out
	}
}

// New creates a server for reg. Nothing is advertised until Start or Sync.
func New(reg api.RegistryHandler, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		cfg:           cfg,
		version:       "dev",
		registry:      reg,
		tracer:        noop.NewTracerProvider().Tracer("noop"),
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		updates:       make(chan struct{}, 1),
		toolManager:   newActiveItemManager(itemTypeTool),
		promptManager: newActiveItemManager(itemTypePrompt),
	}
	for _, opt := range opts {
		opt(s)
	}

	name := cfg.Name
	if name == "" {
		name = "quiver"
	}
	s.mcpServer = server.NewMCPServer(
		name,
		s.version,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)
	s.listener = api.NewListener(s.onRegistryEvent)
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Start subscribes to registry changes, advertises the current definitions
// and starts the configured transport. It returns once the transport is
// running in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.ctx, s.cancelFunc = context.WithCancel(ctx)
	s.mu.Unlock()

	s.startMonitor()
	s.startTransport()
	return nil
}

func (s *Server) startMonitor() {
	s.registry.AddEventListener(s.listener)
	s.Sync()

	s.wg.Add(1)
	go s.monitorRegistryUpdates()
}

func (s *Server) startTransport() {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	switch s.cfg.Transport {
	case config.MCPTransportSSE:
		logging.Info("Server", "Starting MCP server with SSE transport on %s", addr)
		baseURL := fmt.Sprintf("http://%s:%d", s.cfg.Host, s.cfg.Port)
		sseServer := server.NewSSEServer(
			s.mcpServer,
			server.WithBaseURL(baseURL),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithKeepAlive(true),
			server.WithKeepAliveInterval(30*time.Second),
		)
		s.mu.Lock()
		s.sseServer = sseServer
		s.mu.Unlock()
		go func() {
			if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("Server", err, "SSE server error")
			}
		}()

	case config.MCPTransportStdio:
		logging.Info("Server", "Starting MCP server with stdio transport")
		stdioServer := server.NewStdioServer(s.mcpServer)
		s.mu.Lock()
		s.stdioServer = stdioServer
		s.mu.Unlock()
		go func() {
			if err := stdioServer.Listen(s.ctx, s.stdin, s.stdout); err != nil && s.ctx.Err() == nil {
				logging.Error("Server", err, "Stdio server error")
			}
		}()

	case config.MCPTransportStreamableHTTP:
		fallthrough
	default:
		logging.Info("Server", "Starting MCP server with streamable-http transport on %s", addr)
		streamableServer := server.NewStreamableHTTPServer(s.mcpServer)
		s.mu.Lock()
		s.streamableHTTPServer = streamableServer
		s.mu.Unlock()
		go func() {
			if err := streamableServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("Server", err, "Streamable HTTP server error")
			}
		}()
	}
}

// Stop shuts the transport down and unsubscribes from the registry.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("server not started")
	}

	logging.Info("Server", "Stopping MCP server")

	cancelFunc := s.cancelFunc
	sseServer := s.sseServer
	streamableServer := s.streamableHTTPServer
	s.mu.Unlock()

	s.registry.RemoveEventListener(s.listener)
	if cancelFunc != nil {
		cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if sseServer != nil {
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server", err, "Error shutting down SSE server")
		}
	}
	if streamableServer != nil {
		if err := streamableServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server", err, "Error shutting down streamable HTTP server")
		}
	}

	// Stdio server stops on context cancellation.
	s.wg.Wait()

	s.mu.Lock()
	s.started = false
	s.sseServer = nil
	s.streamableHTTPServer = nil
	s.stdioServer = nil
	s.mu.Unlock()
	return nil
}

// Endpoint returns the client-facing endpoint for the configured transport.
func (s *Server) Endpoint() string {
	switch s.cfg.Transport {
	case config.MCPTransportSSE:
		return fmt.Sprintf("http://%s:%d/sse", s.cfg.Host, s.cfg.Port)
	case config.MCPTransportStdio:
		return "stdio"
	default:
		return fmt.Sprintf("http://%s:%d/mcp", s.cfg.Host, s.cfg.Port)
	}
}

// onRegistryEvent runs on the registry's emitting goroutine, so it only
// signals and never blocks.
func (s *Server) onRegistryEvent(e api.Event) {
	switch e.Type {
	case api.EventToolExecuted, api.EventToolFailed, api.EventPromptExecuted, api.EventPromptFailed:
		return
	}
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func (s *Server) monitorRegistryUpdates() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.updates:
			s.Sync()
		}
	}
}

// Sync brings the advertised tools and prompts in line with the registry.
// Deprecated entries are withdrawn; they stay callable through call_tool
// and get_prompt.
func (s *Server) Sync() {
	tools := s.registry.GetToolDefinitions()
	prompts := s.registry.GetPromptDefinitions()

	newTools := make(map[string]struct{}, len(tools))
	serverTools := make([]server.ServerTool, 0, len(tools))
	for _, def := range tools {
		newTools[def.Name] = struct{}{}
		serverTools = append(serverTools, server.ServerTool{
			Tool: mcp.Tool{
				Name:        def.Name,
				Description: def.Description,
				InputSchema: def.InputSchema,
			},
			Handler: s.toolHandler(def.Name),
		})
	}

	newPrompts := make(map[string]struct{}, len(prompts))
	serverPrompts := make([]server.ServerPrompt, 0, len(prompts))
	for _, def := range prompts {
		newPrompts[def.Name] = struct{}{}
		serverPrompts = append(serverPrompts, server.ServerPrompt{
			Prompt: mcp.Prompt{
				Name:        def.Name,
				Description: def.Description,
				Arguments:   def.Arguments,
			},
			Handler: s.promptHandler(def.Name),
		})
	}

	if obsolete := s.toolManager.getInactiveItems(newTools); len(obsolete) > 0 {
		s.mcpServer.DeleteTools(obsolete...)
		s.toolManager.removeItems(obsolete)
	}
	if obsolete := s.promptManager.getInactiveItems(newPrompts); len(obsolete) > 0 {
		s.mcpServer.DeletePrompts(obsolete...)
		s.promptManager.removeItems(obsolete)
	}

	// Re-adding replaces existing handlers, which picks up changed definitions.
	if len(serverTools) > 0 {
		s.mcpServer.AddTools(serverTools...)
		for _, t := range serverTools {
			s.toolManager.setActive(t.Tool.Name, true)
		}
	}
	if len(serverPrompts) > 0 {
		s.mcpServer.AddPrompts(serverPrompts...)
		for _, p := range serverPrompts {
			s.promptManager.setActive(p.Prompt.Name, true)
		}
	}

	logging.Debug("Server", "Updated capabilities: %d tools, %d prompts", len(serverTools), len(serverPrompts))
}

// AdvertisedTools returns the names of the tools currently listed.
func (s *Server) AdvertisedTools() []string {
	return s.toolManager.names()
}

// AdvertisedPrompts returns the names of the prompts currently listed.
func (s *Server) AdvertisedPrompts() []string {
	return s.promptManager.names()
}
