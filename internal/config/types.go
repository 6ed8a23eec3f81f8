package config

import "time"

// Transport identifies how the MCP server is exposed to clients.
type Transport string

const (
	// TransportStdio serves MCP over stdin/stdout. This is the default and
	// what MCP-capable editors spawn.
	TransportStdio Transport = "stdio"
	// TransportStreamableHTTP serves MCP over the streamable HTTP transport.
	TransportStreamableHTTP Transport = "streamable-http"
	// TransportSSE serves MCP over server-sent events.
	TransportSSE Transport = "sse"
)

// Config holds the full runtime configuration of the adapter, resolved from
// the STRAPI_* environment.
type Config struct {
	// URL is the base URL of the Strapi instance.
	URL string

	// APIToken is the bearer token for the public content API. Optional when
	// admin credentials are configured.
	APIToken string

	// AdminEmail and AdminPassword authenticate an admin session, unlocking
	// the content-manager and content-type-builder endpoints. Optional when
	// an API token is configured.
	AdminEmail    string
	AdminPassword string

	// DevMode enables development-only behavior: content-type-builder
	// discovery and hot reload of the validation rule file.
	DevMode bool

	// MaxUploadSize caps the decoded size of media uploads, in bytes.
	MaxUploadSize int64

	// AllowedUploadDirs restricts upload_media_from_path to files below the
	// listed directories. Empty means no restriction.
	AllowedUploadDirs []string

	// UploadTimeout bounds a single media upload, including URL downloads.
	UploadTimeout time.Duration

	// ValidationRules is an optional path to a YAML file with per-content-type
	// write validation rules.
	ValidationRules string

	// Transport, Host and Port select how the MCP server is exposed. Host and
	// Port only apply to the HTTP transports.
	Transport Transport
	Host      string
	Port      int
}

// HasAPIToken reports whether a usable API token is configured.
func (c *Config) HasAPIToken() bool {
	return c.APIToken != "" && !isPlaceholder(c.APIToken)
}

// HasAdminCredentials reports whether admin session credentials are configured.
func (c *Config) HasAdminCredentials() bool {
	return c.AdminEmail != "" && c.AdminPassword != "" && !isPlaceholder(c.AdminPassword)
}
