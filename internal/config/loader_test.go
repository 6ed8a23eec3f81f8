package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		URL:           "http://localhost:1337",
		APIToken:      "a-real-token",
		MaxUploadSize: 10 << 20,
		UploadTimeout: 30 * time.Second,
		Transport:     TransportStdio,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STRAPI_API_TOKEN", "a-real-token")
	t.Setenv("STRAPI_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:1337", cfg.URL)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadSize)
	assert.Equal(t, 30*time.Second, cfg.UploadTimeout)
	assert.False(t, cfg.DevMode)
}

func TestLoad_TrailingSlashTrimmed(t *testing.T) {
	t.Setenv("STRAPI_API_TOKEN", "a-real-token")
	t.Setenv("STRAPI_URL", "https://cms.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://cms.example.com", cfg.URL)
}

func TestLoad_AllowedUploadDirs(t *testing.T) {
	t.Setenv("STRAPI_API_TOKEN", "a-real-token")
	t.Setenv("STRAPI_ALLOWED_UPLOAD_DIRS", "/var/media, /tmp/uploads ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"/var/media", "/tmp/uploads"}, cfg.AllowedUploadDirs)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("STRAPI_API_TOKEN", "")
	t.Setenv("STRAPI_ADMIN_EMAIL", "")
	t.Setenv("STRAPI_ADMIN_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "STRAPI_API_TOKEN", cfgErr.Field)
}

func TestLoad_PlaceholderToken(t *testing.T) {
	t.Setenv("STRAPI_API_TOKEN", "strapi_api_token_here")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoad_AdminCredentialsOnly(t *testing.T) {
	t.Setenv("STRAPI_API_TOKEN", "")
	t.Setenv("STRAPI_ADMIN_EMAIL", "ops@corp.internal")
	t.Setenv("STRAPI_ADMIN_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.HasAdminCredentials())
	assert.False(t, cfg.HasAPIToken())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty URL", func(c *Config) { c.URL = "" }, true},
		{"non-http URL", func(c *Config) { c.URL = "ftp://cms" }, true},
		{"placeholder password", func(c *Config) {
			c.AdminEmail = "a@b.c"
			c.AdminPassword = "changeme"
		}, true},
		{"unknown transport", func(c *Config) { c.Transport = "websocket" }, true},
		{"zero upload size", func(c *Config) { c.MaxUploadSize = 0 }, true},
		{"zero upload timeout", func(c *Config) { c.UploadTimeout = 0 }, true},
		{"admin creds instead of token", func(c *Config) {
			c.APIToken = ""
			c.AdminEmail = "ops@corp.internal"
			c.AdminPassword = "s3cret"
		}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := validConfig()
			test.mutate(cfg)
			err := Validate(cfg)
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
