package strapi

import "sync"

// CredentialMode identifies how an outgoing request authenticates against
// the CMS. Exactly one mode is active per attempt; the fallback executor may
// try several modes within a single logical call.
type CredentialMode int

const (
	// ModeAPIToken uses the static bearer token scoped to the public
	// content API.
	ModeAPIToken CredentialMode = iota
	// ModeAdminSession uses a JWT obtained by logging into the admin API.
	// Required for content-manager and content-type-builder endpoints.
	ModeAdminSession
	// ModeAnonymous sends no credentials. Used only for discovery probes
	// against instances with public read permissions.
	ModeAnonymous
)

func (m CredentialMode) String() string {
	switch m {
	case ModeAPIToken:
		return "api-token"
	case ModeAdminSession:
		return "admin-session"
	case ModeAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// CredentialStore holds the active token per credential mode. It is an
// explicit injectable object rather than package state so tests can swap in
// doubles and observe invalidation.
type CredentialStore interface {
	// Token returns the stored token for the mode, if any.
	Token(mode CredentialMode) (string, bool)
	// SetToken overwrites the token for the mode. Last write wins.
	SetToken(mode CredentialMode, token string)
	// Invalidate clears the token for the mode, forcing re-authentication
	// on the next use.
	Invalidate(mode CredentialMode)
}

type memoryCredentialStore struct {
	mu     sync.RWMutex
	tokens map[CredentialMode]string
}

// NewCredentialStore returns an in-memory CredentialStore safe for
// concurrent use.
func NewCredentialStore() CredentialStore {
	return &memoryCredentialStore{tokens: make(map[CredentialMode]string)}
}

func (s *memoryCredentialStore) Token(mode CredentialMode) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[mode]
	return token, ok && token != ""
}

func (s *memoryCredentialStore) SetToken(mode CredentialMode, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[mode] = token
}

func (s *memoryCredentialStore) Invalidate(mode CredentialMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, mode)
}
