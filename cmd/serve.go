package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strapimcp/internal/config"
	"strapimcp/internal/mcpserver"
	"strapimcp/internal/strapi"
	"strapimcp/internal/validation"
	"strapimcp/pkg/logging"

	"github.com/spf13/cobra"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveTransport overrides the MCP transport from the environment.
var serveTransport string

// serveHost and servePort override the listen address for the HTTP transports.
var serveHost string
var servePort int

// serveCmd defines the serve command structure. This is the main command of
// strapi-mcp: it connects to the configured Strapi instance and serves the
// MCP protocol until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for the configured Strapi instance",
	Long: `Starts the MCP server, exposing the Strapi instance configured via the
STRAPI_* environment to MCP clients.

By default the server speaks MCP over stdio, which is what MCP-capable
editors spawn. Use --transport to serve over streamable HTTP or SSE
instead, together with --host and --port.

The process runs until it receives SIGINT or SIGTERM; on the stdio
transport it also stops when the client closes stdin.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags take precedence over the environment.
	if serveTransport != "" {
		cfg.Transport = config.Transport(serveTransport)
	}
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	level := logging.LevelInfo
	if serveDebug {
		level = logging.LevelDebug
	}
	// Stdout carries MCP protocol frames on the stdio transport, so all
	// diagnostics go to stderr regardless of transport.
	logging.Init(level, os.Stderr)

	client := strapi.NewClient(cfg)

	rules, err := validation.NewEngine(cfg.ValidationRules)
	if err != nil {
		return fmt.Errorf("failed to load validation rules: %w", err)
	}
	if cfg.DevMode && rules.Path() != "" {
		watcher := validation.NewWatcher(rules)
		if err := watcher.Start(); err != nil {
			logging.Warn("Serve", "Hot reload of validation rules disabled: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	srv := mcpserver.New(cfg, client, rules, GetVersion())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}
	logging.Info("Serve", "MCP server ready on %s (Strapi at %s)", srv.Endpoint(), client.BaseURL())

	<-ctx.Done()
	logging.Info("Serve", "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "MCP transport: stdio, streamable-http or sse (overrides STRAPI_MCP_TRANSPORT)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host for the HTTP transports")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port for the HTTP transports")
}
