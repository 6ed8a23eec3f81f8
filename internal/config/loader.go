package config

import (
	"fmt"
	"strings"

	"strapimcp/pkg/logging"

	"github.com/spf13/viper"
)

const (
	envPrefix = "STRAPI"

	defaultURL           = "http://localhost:1337"
	defaultMaxUploadSize = 10 << 20 // 10 MiB
	defaultUploadTimeout = "30s"
	defaultTransport     = string(TransportStdio)
	defaultHost          = "localhost"
	defaultPort          = 8080
)

// placeholders are credential values shipped in example configs that must be
// rejected as if the variable were unset.
var placeholders = []string{
	"strapi_token",
	"strapi_api_token_here",
	"your-api-token-here",
	"your_api_token_here",
	"admin@example.com",
	"your_password",
	"changeme",
}

func isPlaceholder(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, p := range placeholders {
		if lower == p {
			return true
		}
	}
	return false
}

// Load resolves the adapter configuration from the STRAPI_* environment.
// Missing or placeholder mandatory credentials are a fatal condition and
// reported as a ConfigurationError; the caller is expected to exit non-zero.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("url", defaultURL)
	v.SetDefault("dev_mode", false)
	v.SetDefault("max_upload_size", defaultMaxUploadSize)
	v.SetDefault("upload_timeout", defaultUploadTimeout)
	v.SetDefault("transport", defaultTransport)
	v.SetDefault("host", defaultHost)
	v.SetDefault("port", defaultPort)

	cfg := &Config{
		URL:             strings.TrimRight(v.GetString("url"), "/"),
		APIToken:        v.GetString("api_token"),
		AdminEmail:      v.GetString("admin_email"),
		AdminPassword:   v.GetString("admin_password"),
		DevMode:         v.GetBool("dev_mode"),
		MaxUploadSize:   v.GetInt64("max_upload_size"),
		UploadTimeout:   v.GetDuration("upload_timeout"),
		ValidationRules: v.GetString("validation_rules"),
		Transport:       Transport(v.GetString("transport")),
		Host:            v.GetString("host"),
		Port:            v.GetInt("port"),
	}

	if dirs := v.GetString("allowed_upload_dirs"); dirs != "" {
		for _, d := range strings.Split(dirs, ",") {
			if d = strings.TrimSpace(d); d != "" {
				cfg.AllowedUploadDirs = append(cfg.AllowedUploadDirs, d)
			}
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	logging.Info("Config", "Connecting to Strapi at %s (dev mode: %v)", cfg.URL, cfg.DevMode)
	return cfg, nil
}

// Validate checks the configuration for fatal problems. It is exported so
// tests and commands can validate a hand-built Config.
func Validate(cfg *Config) error {
	if cfg.URL == "" {
		return &ConfigurationError{Field: "STRAPI_URL", Reason: "must not be empty"}
	}
	if !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		return &ConfigurationError{Field: "STRAPI_URL", Reason: fmt.Sprintf("invalid URL %q", cfg.URL)}
	}

	if cfg.APIToken != "" && isPlaceholder(cfg.APIToken) {
		return &ConfigurationError{Field: "STRAPI_API_TOKEN", Reason: "placeholder value, set a real token"}
	}
	if cfg.AdminPassword != "" && isPlaceholder(cfg.AdminPassword) {
		return &ConfigurationError{Field: "STRAPI_ADMIN_PASSWORD", Reason: "placeholder value, set a real password"}
	}

	if !cfg.HasAPIToken() && !cfg.HasAdminCredentials() {
		return &ConfigurationError{
			Field:  "STRAPI_API_TOKEN",
			Reason: "no usable credentials: set STRAPI_API_TOKEN or STRAPI_ADMIN_EMAIL and STRAPI_ADMIN_PASSWORD",
		}
	}

	switch cfg.Transport {
	case TransportStdio, TransportStreamableHTTP, TransportSSE:
	default:
		return &ConfigurationError{Field: "STRAPI_TRANSPORT", Reason: fmt.Sprintf("unknown transport %q", cfg.Transport)}
	}

	if cfg.MaxUploadSize <= 0 {
		return &ConfigurationError{Field: "STRAPI_MAX_UPLOAD_SIZE", Reason: "must be positive"}
	}
	if cfg.UploadTimeout <= 0 {
		return &ConfigurationError{Field: "STRAPI_UPLOAD_TIMEOUT", Reason: "must be positive"}
	}

	return nil
}
