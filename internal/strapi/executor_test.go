package strapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getBuilder(baseURL string) RequestBuilder {
	return func(ctx context.Context, c Candidate) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, baseURL+c.Path, nil)
	}
}

func newExecutorFixture(responses []stubResponse) (*FallbackExecutor, *scriptedTransport, *recordingCredentialStore, *stubAuthenticator) {
	transport := &scriptedTransport{responses: responses}
	creds := newRecordingCredentialStore()
	creds.CredentialStore.SetToken(ModeAPIToken, "public-token")
	auth := &stubAuthenticator{
		creds: creds,
		allow: map[CredentialMode]bool{ModeAPIToken: true, ModeAdminSession: true, ModeAnonymous: true},
	}
	return NewFallbackExecutor(transport, creds, auth), transport, creds, auth
}

func twoCandidatePlan() FallbackPlan {
	return FallbackPlan{
		Op: "test op",
		Candidates: []Candidate{
			{Mode: ModeAdminSession, Path: "/content-manager/collection-types/api::article.article"},
			{Mode: ModeAPIToken, Path: "/api/articles"},
		},
	}
}

func TestExecute_FirstCandidateSuccess(t *testing.T) {
	executor, transport, _, _ := newExecutorFixture([]stubResponse{
		{200, `{"data":[{"id":1}],"meta":{}}`},
	})

	result, err := executor.Execute(context.Background(), twoCandidatePlan(), getBuilder("http://cms.test"), ExecOptions{})
	require.NoError(t, err)

	assert.Len(t, transport.calls, 1, "no candidate may be tried after a success")
	assert.Equal(t, "/content-manager/collection-types/api::article.article", result.Candidate.Path)
	require.Len(t, result.Normalized.Data, 1)
}

func TestExecute_404SkipsToNextCandidate(t *testing.T) {
	executor, transport, _, _ := newExecutorFixture([]stubResponse{
		{404, `{"error":{"status":404}}`},
		{200, `{"data":[{"id":2}],"meta":{}}`},
	})

	result, err := executor.Execute(context.Background(), twoCandidatePlan(), getBuilder("http://cms.test"), ExecOptions{})
	require.NoError(t, err)

	assert.Len(t, transport.calls, 2)
	assert.Equal(t, "/api/articles", result.Candidate.Path)
}

func TestExecute_AllCandidates404(t *testing.T) {
	plan := FallbackPlan{
		Op: "test op",
		Candidates: []Candidate{
			{Mode: ModeAPIToken, Path: "/api/article"},
			{Mode: ModeAPIToken, Path: "/api/articles"},
			{Mode: ModeAPIToken, Path: "/api/Article"},
		},
	}
	executor, transport, _, _ := newExecutorFixture([]stubResponse{
		{404, `{}`}, {404, `{}`}, {404, `{}`},
	})

	_, err := executor.Execute(context.Background(), plan, getBuilder("http://cms.test"), ExecOptions{})
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindResourceNotFound, opErr.Kind)
	assert.Equal(t, []string{"/api/article", "/api/articles", "/api/Article"}, opErr.Attempted,
		"error must list every attempted path")
	assert.Len(t, transport.calls, 3)
}

func TestExecute_500AbortsImmediately(t *testing.T) {
	executor, transport, _, _ := newExecutorFixture([]stubResponse{
		{500, `{"error":{"status":500}}`},
	})

	_, err := executor.Execute(context.Background(), twoCandidatePlan(), getBuilder("http://cms.test"), ExecOptions{})
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindUpstreamUnavailable, opErr.Kind)
	assert.Len(t, transport.calls, 1, "second candidate must never be invoked after a 5xx abort")
}

func TestExecute_NetworkErrorAborts(t *testing.T) {
	creds := newRecordingCredentialStore()
	creds.CredentialStore.SetToken(ModeAPIToken, "public-token")
	auth := &stubAuthenticator{creds: creds, allow: map[CredentialMode]bool{ModeAPIToken: true}}
	executor := NewFallbackExecutor(failingTransport{}, creds, auth)

	plan := FallbackPlan{Op: "test op", Candidates: []Candidate{{Mode: ModeAPIToken, Path: "/api/articles"}}}
	_, err := executor.Execute(context.Background(), plan, getBuilder("http://cms.test"), ExecOptions{})
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindUpstreamUnavailable, opErr.Kind)
}

func TestExecute_OtherClientErrorAborts(t *testing.T) {
	executor, transport, _, _ := newExecutorFixture([]stubResponse{
		{400, `{"error":{"status":400,"message":"bad filter"}}`},
	})

	_, err := executor.Execute(context.Background(), twoCandidatePlan(), getBuilder("http://cms.test"), ExecOptions{})
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindUpstreamBadRequest, opErr.Kind)
	assert.Len(t, transport.calls, 1)
}

func TestExecute_401InvalidatesAndRetriesOnce(t *testing.T) {
	executor, transport, creds, _ := newExecutorFixture([]stubResponse{
		{401, `{"error":{"status":401}}`},
		{200, `{"data":[{"id":9}],"meta":{}}`},
	})
	// a stale session token is already cached
	creds.CredentialStore.SetToken(ModeAdminSession, "stale-jwt")

	plan := FallbackPlan{
		Op:         "test op",
		Candidates: []Candidate{{Mode: ModeAdminSession, Path: "/content-manager/collection-types/api::article.article"}},
	}

	result, err := executor.Execute(context.Background(), plan, getBuilder("http://cms.test"), ExecOptions{})
	require.NoError(t, err)

	assert.Len(t, transport.calls, 2, "exactly two network calls for the retried candidate")
	assert.Equal(t, []CredentialMode{ModeAdminSession}, creds.invalidates, "exactly one invalidate")
	assert.Equal(t, []CredentialMode{ModeAdminSession}, creds.sets, "exactly one fresh token stored")

	token, ok := creds.Token(ModeAdminSession)
	require.True(t, ok)
	assert.Equal(t, "fresh-admin-jwt", token, "store must hold the new token after retry")
	require.Len(t, result.Normalized.Data, 1)
}

func TestExecute_401TwiceSkipsCandidate(t *testing.T) {
	executor, transport, creds, _ := newExecutorFixture([]stubResponse{
		{401, `{}`},
		{401, `{}`},
		{200, `{"data":[],"meta":{}}`},
	})
	creds.CredentialStore.SetToken(ModeAdminSession, "stale-jwt")

	result, err := executor.Execute(context.Background(), twoCandidatePlan(), getBuilder("http://cms.test"), ExecOptions{})
	require.NoError(t, err)

	// first candidate: original call + one retry, then fall through to the
	// second candidate
	assert.Len(t, transport.calls, 3)
	assert.Equal(t, "/api/articles", result.Candidate.Path)
}

func TestExecute_403Skips(t *testing.T) {
	executor, transport, _, _ := newExecutorFixture([]stubResponse{
		{403, `{"error":{"status":403}}`},
		{200, `{"data":[{"id":5}],"meta":{}}`},
	})

	result, err := executor.Execute(context.Background(), twoCandidatePlan(), getBuilder("http://cms.test"), ExecOptions{})
	require.NoError(t, err)
	assert.Len(t, transport.calls, 2)
	assert.Equal(t, "/api/articles", result.Candidate.Path)
}

func TestExecute_AllDenied(t *testing.T) {
	executor, _, creds, _ := newExecutorFixture([]stubResponse{
		{403, `{}`},
		{403, `{}`},
	})
	creds.CredentialStore.SetToken(ModeAdminSession, "jwt")

	plan := FallbackPlan{
		Op: "test op",
		Candidates: []Candidate{
			{Mode: ModeAdminSession, Path: "/content-manager/collection-types/x"},
			{Mode: ModeAPIToken, Path: "/api/x"},
		},
	}
	_, err := executor.Execute(context.Background(), plan, getBuilder("http://cms.test"), ExecOptions{})
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindAccessDenied, opErr.Kind)
}

func TestExecute_AuthUnavailable(t *testing.T) {
	transport := &scriptedTransport{}
	creds := newRecordingCredentialStore()
	auth := &stubAuthenticator{creds: creds, allow: map[CredentialMode]bool{}}
	executor := NewFallbackExecutor(transport, creds, auth)

	plan := FallbackPlan{
		Op:         "test op",
		Candidates: []Candidate{{Mode: ModeAdminSession, Path: "/content-manager/collection-types/x"}},
	}
	_, err := executor.Execute(context.Background(), plan, getBuilder("http://cms.test"), ExecOptions{})
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindAuthUnavailable, opErr.Kind)
	assert.Empty(t, transport.calls, "no network call without credentials")
}

func TestExecute_EmptyPlan(t *testing.T) {
	executor, _, _, _ := newExecutorFixture(nil)
	_, err := executor.Execute(context.Background(), FallbackPlan{Op: "empty"}, getBuilder("http://cms.test"), ExecOptions{})
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindConfiguration, kind)
}

func TestExecute_WriteErrorPayloadFails(t *testing.T) {
	executor, _, _, _ := newExecutorFixture([]stubResponse{
		{200, `{"error":{"message":"validation failed"}}`},
	})

	plan := FallbackPlan{Op: "create", Candidates: []Candidate{{Mode: ModeAPIToken, Path: "/api/articles"}}}
	_, err := executor.Execute(context.Background(), plan, getBuilder("http://cms.test"), ExecOptions{Write: true})
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindUpstreamBadRequest, opErr.Kind)
}

func TestExecute_WriteUnrecognizedShapeIsSuccessWithWarning(t *testing.T) {
	executor, _, _, _ := newExecutorFixture([]stubResponse{
		{200, `{"acknowledged":true}`},
	})

	plan := FallbackPlan{Op: "update", Candidates: []Candidate{{Mode: ModeAPIToken, Path: "/api/articles/1"}}}
	result, err := executor.Execute(context.Background(), plan, getBuilder("http://cms.test"), ExecOptions{Write: true})
	require.NoError(t, err, "ambiguous write results are success-with-warning, the write plausibly applied")
	require.NotEmpty(t, result.Warnings)
}

func TestExecute_ReadErrorPayloadIsEmptyCollection(t *testing.T) {
	executor, _, _, _ := newExecutorFixture([]stubResponse{
		{200, `{"error":{"message":"partial outage"}}`},
	})

	plan := FallbackPlan{Op: "list", Candidates: []Candidate{{Mode: ModeAPIToken, Path: "/api/articles"}}}
	result, err := executor.Execute(context.Background(), plan, getBuilder("http://cms.test"), ExecOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Normalized.Data)
}
