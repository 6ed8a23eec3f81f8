package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid
	// configuration, unreachable Strapi instance).
	ExitCodeError = 1
)

// rootCmd represents the base command for the strapi-mcp application.
// It is the entry point when the binary is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "strapi-mcp",
	Short: "MCP server for Strapi CMS",
	Long: `strapi-mcp exposes a Strapi CMS instance to MCP clients such as
AI-assisted editors. It discovers content types, serves entries as MCP
resources and offers tools for content, schema and media management,
falling back between admin-session and API-token credentials as the
configured Strapi instance allows.

Configuration comes from the STRAPI_* environment (STRAPI_URL,
STRAPI_API_TOKEN, STRAPI_ADMIN_EMAIL/STRAPI_ADMIN_PASSWORD, ...).`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application. This keeps error output clean.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// Called from the main package to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "strapi-mcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
