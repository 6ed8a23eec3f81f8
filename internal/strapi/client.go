package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"strapimcp/internal/config"

	"golang.org/x/sync/singleflight"
)

// Client is the adapter's view of one Strapi instance. It owns the
// credential store, the content-type cache and the fallback machinery; all
// tool and resource handlers go through it. Methods are safe for concurrent
// use.
type Client struct {
	cfg      *config.Config
	http     Doer
	creds    CredentialStore
	auth     Authenticator
	resolver *EndpointResolver
	executor *FallbackExecutor
	cache    *ContentTypeCache

	// discovery dedups concurrent content-type probes: simultaneous tool
	// calls share one probe run instead of hammering the CMS.
	discovery singleflight.Group

	// probeNames are the collection names tried when no management endpoint
	// is reachable. Overridable in tests.
	probeNames []string
}

// Option customizes a Client, mainly for tests.
type Option func(*Client)

// WithHTTPClient substitutes the transport.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) { c.http = doer }
}

// WithCredentialStore substitutes the credential store.
func WithCredentialStore(store CredentialStore) Option {
	return func(c *Client) { c.creds = store }
}

// WithAuthenticator substitutes the session authenticator.
func WithAuthenticator(auth Authenticator) Option {
	return func(c *Client) { c.auth = auth }
}

// WithProbeNames overrides the discovery probe list.
func WithProbeNames(names []string) Option {
	return func(c *Client) { c.probeNames = names }
}

// NewClient builds a client for the configured instance.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		http:       http.DefaultClient,
		creds:      NewCredentialStore(),
		cache:      NewContentTypeCache(),
		probeNames: defaultProbeNames,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.HasAPIToken() {
		c.creds.SetToken(ModeAPIToken, c.cfg.APIToken)
	}
	if c.auth == nil {
		c.auth = NewSessionAuthenticator(c.http, c.creds, cfg.URL, cfg.AdminEmail, cfg.AdminPassword, cfg.APIToken)
	}
	c.resolver = NewEndpointResolver(cfg.HasAdminCredentials(), cfg.HasAPIToken())
	c.executor = NewFallbackExecutor(c.http, c.creds, c.auth)
	return c
}

// Cache exposes the content-type cache for the cache-clear tool and the CLI.
func (c *Client) Cache() *ContentTypeCache { return c.cache }

// Resolver exposes the endpoint resolver, mainly for the check command.
func (c *Client) Resolver() *EndpointResolver { return c.resolver }

// BaseURL returns the configured instance URL.
func (c *Client) BaseURL() string { return c.cfg.URL }

// jsonRequest builds a request with an optional JSON body and query string.
func (c *Client) jsonRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	target := c.cfg.URL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
