package strapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strapimcp/internal/config"
)

// stubResponse is one scripted upstream answer.
type stubResponse struct {
	status int
	body   string
}

// recordedCall captures one request the transport saw.
type recordedCall struct {
	method string
	path   string
	query  string
	body   string
}

// scriptedTransport answers requests from an ordered script and records
// every call. A request beyond the script's end fails the test path with a
// synthetic 599.
type scriptedTransport struct {
	mu        sync.Mutex
	responses []stubResponse
	calls     []recordedCall
}

func (s *scriptedTransport) Do(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(req)
	if len(s.calls) > len(s.responses) {
		return httpResponse(599, `{"error":"script exhausted"}`), nil
	}
	stub := s.responses[len(s.calls)-1]
	return httpResponse(stub.status, stub.body), nil
}

func (s *scriptedTransport) record(req *http.Request) {
	var body string
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	s.calls = append(s.calls, recordedCall{
		method: req.Method,
		path:   req.URL.Path,
		query:  req.URL.RawQuery,
		body:   body,
	})
}

// routedTransport answers by path prefix, defaulting to 404. Used for
// discovery probing where call order spans many paths.
type routedTransport struct {
	mu     sync.Mutex
	routes map[string]stubResponse
	calls  []recordedCall
}

func (r *routedTransport) Do(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var body string
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	r.calls = append(r.calls, recordedCall{
		method: req.Method,
		path:   req.URL.Path,
		query:  req.URL.RawQuery,
		body:   body,
	})

	if stub, ok := r.routes[req.URL.Path]; ok {
		return httpResponse(stub.status, stub.body), nil
	}
	return httpResponse(404, `{"error":{"status":404,"name":"NotFoundError"}}`), nil
}

func httpResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// failingTransport simulates a network failure on every call.
type failingTransport struct{}

func (failingTransport) Do(req *http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("dial tcp: connection refused")
}

// recordingCredentialStore wraps a real store and counts mutations, for
// asserting the invalidate-and-retry sequence.
type recordingCredentialStore struct {
	CredentialStore
	mu          sync.Mutex
	invalidates []CredentialMode
	sets        []CredentialMode
}

func newRecordingCredentialStore() *recordingCredentialStore {
	return &recordingCredentialStore{CredentialStore: NewCredentialStore()}
}

func (r *recordingCredentialStore) SetToken(mode CredentialMode, token string) {
	r.mu.Lock()
	r.sets = append(r.sets, mode)
	r.mu.Unlock()
	r.CredentialStore.SetToken(mode, token)
}

func (r *recordingCredentialStore) Invalidate(mode CredentialMode) {
	r.mu.Lock()
	r.invalidates = append(r.invalidates, mode)
	r.mu.Unlock()
	r.CredentialStore.Invalidate(mode)
}

// stubAuthenticator reports scripted login outcomes and stores a fresh token
// on success, without any network traffic.
type stubAuthenticator struct {
	creds   CredentialStore
	allow   map[CredentialMode]bool
	token   string
	logins  int
	muLogin sync.Mutex
}

func (a *stubAuthenticator) Login(ctx context.Context, mode CredentialMode) bool {
	a.muLogin.Lock()
	a.logins++
	a.muLogin.Unlock()

	if !a.allow[mode] {
		return false
	}
	if mode == ModeAdminSession {
		if _, ok := a.creds.Token(ModeAdminSession); !ok {
			token := a.token
			if token == "" {
				token = "fresh-admin-jwt"
			}
			a.creds.SetToken(ModeAdminSession, token)
		}
	}
	return true
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok, "error %v carries no kind", err)
	assert.Equal(t, want, kind)
}

func testConfig() *config.Config {
	return &config.Config{
		URL:           "http://cms.test",
		APIToken:      "public-token",
		AdminEmail:    "ops@cms.test",
		AdminPassword: "s3cret",
		MaxUploadSize: 1 << 20,
		UploadTimeout: 5 * time.Second,
		Transport:     config.TransportStdio,
	}
}

func tokenOnlyConfig() *config.Config {
	cfg := testConfig()
	cfg.AdminEmail = ""
	cfg.AdminPassword = ""
	return cfg
}
