package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"strapimcp/pkg/logging"
)

// Doer issues HTTP requests. *http.Client satisfies it; tests substitute a
// scripted transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Authenticator acquires credentials for a mode, reporting success without
// raising: the fallback executor must always be able to move on to the next
// candidate.
type Authenticator interface {
	Login(ctx context.Context, mode CredentialMode) bool
}

// SessionAuthenticator logs into the CMS admin API when a session credential
// is required and none is cached. For token-based modes it only checks that
// a token is configured; no network call is made.
type SessionAuthenticator struct {
	http     Doer
	creds    CredentialStore
	baseURL  string
	email    string
	password string
	apiToken string
}

// NewSessionAuthenticator wires an authenticator over the shared transport
// and credential store.
func NewSessionAuthenticator(doer Doer, creds CredentialStore, baseURL, email, password, apiToken string) *SessionAuthenticator {
	return &SessionAuthenticator{
		http:     doer,
		creds:    creds,
		baseURL:  baseURL,
		email:    email,
		password: password,
		apiToken: apiToken,
	}
}

// Login makes the mode usable, returning false on any failure. It is
// idempotent: a cached session token short-circuits the network call, so
// callers must Invalidate first to force a re-login.
func (a *SessionAuthenticator) Login(ctx context.Context, mode CredentialMode) bool {
	switch mode {
	case ModeAPIToken:
		return a.apiToken != ""
	case ModeAnonymous:
		return true
	case ModeAdminSession:
		// fallthrough to session login below
	default:
		return false
	}

	if _, ok := a.creds.Token(ModeAdminSession); ok {
		return true
	}
	if a.email == "" || a.password == "" {
		return false
	}

	if token := a.adminLogin(ctx); token != "" {
		a.creds.SetToken(ModeAdminSession, token)
		return true
	}
	// Some deployments only expose the user-level login. The resulting JWT
	// carries fewer permissions but still unlocks authenticated API reads.
	if token := a.userLogin(ctx); token != "" {
		a.creds.SetToken(ModeAdminSession, token)
		return true
	}
	return false
}

// adminLogin posts to /admin/login and extracts data.token.
func (a *SessionAuthenticator) adminLogin(ctx context.Context) string {
	body := map[string]string{"email": a.email, "password": a.password}
	raw := a.postLogin(ctx, "/admin/login", body)
	if raw == nil {
		return ""
	}

	var parsed struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Data.Token == "" {
		logging.Warn("Auth", "Admin login response carried no token")
		return ""
	}
	logging.Info("Auth", "Admin session established for %s", a.email)
	return parsed.Data.Token
}

// userLogin posts to /api/auth/local and extracts the jwt field.
func (a *SessionAuthenticator) userLogin(ctx context.Context) string {
	body := map[string]string{"identifier": a.email, "password": a.password}
	raw := a.postLogin(ctx, "/api/auth/local", body)
	if raw == nil {
		return ""
	}

	var parsed struct {
		JWT string `json:"jwt"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.JWT == "" {
		return ""
	}
	logging.Info("Auth", "User session established for %s", a.email)
	return parsed.JWT
}

func (a *SessionAuthenticator) postLogin(ctx context.Context, path string, body map[string]string) []byte {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		logging.Warn("Auth", "Login request to %s failed: %v", path, err)
		return nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logging.Warn("Auth", "Reading login response from %s failed: %v", path, err)
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.Warn("Auth", "Login to %s rejected with status %d", path, resp.StatusCode)
		return nil
	}
	return raw
}
