// Package mcpserver exposes the CMS adapter over the Model Context Protocol:
// a tool per content operation and a resource per discovered content type,
// served over stdio, streamable-http or SSE.
package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"strapimcp/internal/config"
	"strapimcp/internal/strapi"
	"strapimcp/internal/validation"
	"strapimcp/pkg/logging"
)

// Server wires the adapter client into an MCP server and manages the
// transport lifecycle.
type Server struct {
	cfg    *config.Config
	client *strapi.Client
	rules  *validation.Engine
	mcp    *server.MCPServer

	// Transport-specific servers, set by Start for the configured transport.
	sseServer            *server.SSEServer
	streamableHTTPServer *server.StreamableHTTPServer
	stdioServer          *server.StdioServer

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	started    bool
}

// New builds the MCP server: tool catalog and resource templates are
// registered immediately, per-content-type resources on Start once discovery
// has run.
func New(cfg *config.Config, client *strapi.Client, rules *validation.Engine, version string) *Server {
	s := &Server{
		cfg:    cfg,
		client: client,
		rules:  rules,
	}

	s.mcp = server.NewMCPServer(
		"strapi-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
	)

	s.registerTools()
	s.registerResourceTemplates()
	return s
}

// Start launches the configured transport. HTTP transports serve in the
// background; stdio blocks in a goroutine reading stdin. Use Stop for
// shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true
	ctx, s.cancelFunc = context.WithCancel(ctx)
	s.mu.Unlock()

	// Best effort: list one resource per discovered content type. A CMS that
	// is down at startup only costs the resource listing, tools still work.
	s.refreshResources(ctx)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	switch s.cfg.Transport {
	case config.TransportSSE:
		logging.Info("Server", "Starting MCP server with SSE transport on %s", addr)
		baseURL := fmt.Sprintf("http://%s:%d", s.cfg.Host, s.cfg.Port)
		s.sseServer = server.NewSSEServer(
			s.mcp,
			server.WithBaseURL(baseURL),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithKeepAlive(true),
			server.WithKeepAliveInterval(30*time.Second),
		)
		sseServer := s.sseServer
		go func() {
			if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("Server", err, "SSE server error")
			}
		}()

	case config.TransportStdio:
		logging.Info("Server", "Starting MCP server with stdio transport")
		s.stdioServer = server.NewStdioServer(s.mcp)
		stdioServer := s.stdioServer
		go func() {
			if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
				logging.Error("Server", err, "Stdio server error")
			}
		}()

	case config.TransportStreamableHTTP:
		fallthrough
	default:
		logging.Info("Server", "Starting MCP server with streamable-http transport on %s", addr)
		s.streamableHTTPServer = server.NewStreamableHTTPServer(s.mcp)
		streamableServer := s.streamableHTTPServer
		go func() {
			if err := streamableServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("Server", err, "Streamable HTTP server error")
			}
		}()
	}

	return nil
}

// Stop shuts the transport down, waiting up to five seconds for in-flight
// requests.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancelFunc := s.cancelFunc
	sseServer := s.sseServer
	streamableServer := s.streamableHTTPServer
	s.sseServer = nil
	s.streamableHTTPServer = nil
	s.stdioServer = nil
	s.mu.Unlock()

	logging.Info("Server", "Stopping MCP server")
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
	// The stdio server stops on context cancellation.

	return nil
}

// Endpoint returns the client-facing endpoint for the configured transport.
func (s *Server) Endpoint() string {
	switch s.cfg.Transport {
	case config.TransportSSE:
		return fmt.Sprintf("http://%s:%d/sse", s.cfg.Host, s.cfg.Port)
	case config.TransportStdio:
		return "stdio"
	default:
		return fmt.Sprintf("http://%s:%d/mcp", s.cfg.Host, s.cfg.Port)
	}
}
