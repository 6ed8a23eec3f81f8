package strapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionAuth(transport Doer, email, password, apiToken string) (*SessionAuthenticator, CredentialStore) {
	creds := NewCredentialStore()
	return NewSessionAuthenticator(transport, creds, "http://cms.test", email, password, apiToken), creds
}

func TestSessionAuthenticator_AdminLogin(t *testing.T) {
	transport := &scriptedTransport{responses: []stubResponse{
		{200, `{"data":{"token":"admin-jwt"}}`},
	}}
	auth, creds := newSessionAuth(transport, "ops@cms.test", "s3cret", "")

	ok := auth.Login(context.Background(), ModeAdminSession)
	require.True(t, ok)

	require.Len(t, transport.calls, 1)
	call := transport.calls[0]
	assert.Equal(t, "/admin/login", call.path)
	assert.JSONEq(t, `{"email":"ops@cms.test","password":"s3cret"}`, call.body)

	token, ok := creds.Token(ModeAdminSession)
	require.True(t, ok)
	assert.Equal(t, "admin-jwt", token)
}

func TestSessionAuthenticator_UserLoginFallback(t *testing.T) {
	// /admin/login is absent on this deployment; the user-level login still
	// yields a usable JWT.
	transport := &scriptedTransport{responses: []stubResponse{
		{404, `{"error":{"status":404}}`},
		{200, `{"jwt":"user-jwt","user":{"id":1}}`},
	}}
	auth, creds := newSessionAuth(transport, "ops@cms.test", "s3cret", "")

	ok := auth.Login(context.Background(), ModeAdminSession)
	require.True(t, ok)

	require.Len(t, transport.calls, 2)
	assert.Equal(t, "/admin/login", transport.calls[0].path)
	assert.Equal(t, "/api/auth/local", transport.calls[1].path)
	assert.JSONEq(t, `{"identifier":"ops@cms.test","password":"s3cret"}`, transport.calls[1].body)

	token, _ := creds.Token(ModeAdminSession)
	assert.Equal(t, "user-jwt", token)
}

func TestSessionAuthenticator_BothLoginsRejected(t *testing.T) {
	transport := &scriptedTransport{responses: []stubResponse{
		{401, `{"error":{"status":401}}`},
		{400, `{"error":{"status":400}}`},
	}}
	auth, creds := newSessionAuth(transport, "ops@cms.test", "wrong", "")

	assert.False(t, auth.Login(context.Background(), ModeAdminSession))
	_, ok := creds.Token(ModeAdminSession)
	assert.False(t, ok)
}

func TestSessionAuthenticator_CachedTokenShortCircuits(t *testing.T) {
	transport := &scriptedTransport{}
	auth, creds := newSessionAuth(transport, "ops@cms.test", "s3cret", "")
	creds.SetToken(ModeAdminSession, "existing-jwt")

	assert.True(t, auth.Login(context.Background(), ModeAdminSession))
	assert.Empty(t, transport.calls, "a cached session must not trigger a re-login")

	// Invalidating forces the login on the next call.
	creds.Invalidate(ModeAdminSession)
	transport.responses = []stubResponse{{200, `{"data":{"token":"new-jwt"}}`}}
	assert.True(t, auth.Login(context.Background(), ModeAdminSession))
	assert.Len(t, transport.calls, 1)
}

func TestSessionAuthenticator_NoAdminCredsConfigured(t *testing.T) {
	transport := &scriptedTransport{}
	auth, _ := newSessionAuth(transport, "", "", "token")

	assert.False(t, auth.Login(context.Background(), ModeAdminSession))
	assert.Empty(t, transport.calls)
}

func TestSessionAuthenticator_TokenAndAnonymousModes(t *testing.T) {
	transport := &scriptedTransport{}

	withToken, _ := newSessionAuth(transport, "", "", "token")
	assert.True(t, withToken.Login(context.Background(), ModeAPIToken))
	assert.True(t, withToken.Login(context.Background(), ModeAnonymous))

	withoutToken, _ := newSessionAuth(transport, "", "", "")
	assert.False(t, withoutToken.Login(context.Background(), ModeAPIToken))
	assert.Empty(t, transport.calls, "token modes never hit the network")
}

func TestSessionAuthenticator_MalformedLoginResponse(t *testing.T) {
	transport := &scriptedTransport{responses: []stubResponse{
		{200, `{"data":{}}`},
		{200, `{"user":{"id":1}}`},
	}}
	auth, creds := newSessionAuth(transport, "ops@cms.test", "s3cret", "")

	assert.False(t, auth.Login(context.Background(), ModeAdminSession))
	_, ok := creds.Token(ModeAdminSession)
	assert.False(t, ok)
}

func TestSessionAuthenticator_NetworkFailure(t *testing.T) {
	auth, _ := newSessionAuth(failingTransport{}, "ops@cms.test", "s3cret", "")
	assert.False(t, auth.Login(context.Background(), ModeAdminSession))
}
