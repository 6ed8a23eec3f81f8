package strapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"strapimcp/pkg/logging"

	"github.com/google/uuid"
)

// RequestBuilder produces the outgoing request for one candidate. The
// builder decides method, body and query per candidate, since the admin and
// public APIs disagree on payload wrapping. Authorization headers are added
// by the executor afterwards.
type RequestBuilder func(ctx context.Context, c Candidate) (*http.Request, error)

// Result is the outcome of a successfully executed fallback plan.
type Result struct {
	// Normalized is the canonicalized response body.
	Normalized *Normalized
	// StatusCode is the upstream status of the winning candidate.
	StatusCode int
	// Candidate is the candidate that won.
	Candidate Candidate
	// Warnings carries non-fatal observations, e.g. a write whose response
	// body could not be recognized but whose status indicated success.
	Warnings []string
}

// ExecOptions tune how a plan is executed.
type ExecOptions struct {
	// Write marks mutations. A top-level error marker in a 2xx body fails a
	// write, while reads treat it as an empty collection. Unrecognized
	// response shapes on writes become success-with-warning because the
	// mutation plausibly applied server-side.
	Write bool
}

// FallbackExecutor runs a fallback plan: for each candidate it
// authenticates, issues the request and classifies the response, retrying
// once on session expiry, skipping on 404/403 and aborting on anything that
// a different endpoint cannot fix. This is the single policy that replaces
// the per-operation try/catch cascades of the adapter's ancestry.
type FallbackExecutor struct {
	http  Doer
	creds CredentialStore
	auth  Authenticator
}

// NewFallbackExecutor wires the executor over the shared transport,
// credential store and authenticator.
func NewFallbackExecutor(doer Doer, creds CredentialStore, auth Authenticator) *FallbackExecutor {
	return &FallbackExecutor{http: doer, creds: creds, auth: auth}
}

// Execute runs the plan and returns the first successful result. Candidates
// after a success are never attempted, so a write is applied at most once.
func (e *FallbackExecutor) Execute(ctx context.Context, plan FallbackPlan, build RequestBuilder, opts ExecOptions) (*Result, error) {
	if len(plan.Candidates) == 0 {
		return nil, opError(KindConfiguration, plan.Op, "no usable endpoint candidates")
	}

	callID := uuid.NewString()[:8]
	var attempted []string
	authFailures := 0
	deniedCount := 0

	for _, candidate := range plan.Candidates {
		attempted = append(attempted, candidate.Path)

		if !e.ensureAuthenticated(ctx, candidate) {
			logging.Debug("Executor", "[%s] %s: credentials unavailable, skipping", callID, candidate)
			authFailures++
			continue
		}

		retried := false
		for {
			resp, body, err := e.doRequest(ctx, candidate, build)
			if err != nil {
				return nil, &OperationError{
					Kind:      KindUpstreamUnavailable,
					Op:        plan.Op,
					Detail:    "network error",
					Attempted: attempted,
					Err:       err,
				}
			}

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return e.buildResult(plan.Op, candidate, resp.StatusCode, body, opts, attempted)
			}

			if resp.StatusCode == http.StatusNotFound {
				// Endpoint shape mismatch, not a real error; the next
				// variant may match.
				logging.Debug("Executor", "[%s] %s: 404, trying next candidate", callID, candidate)
				break
			}

			if resp.StatusCode == http.StatusUnauthorized && candidate.Mode == ModeAdminSession && !retried {
				logging.Info("Executor", "[%s] %s: session expired, re-authenticating", callID, candidate)
				e.creds.Invalidate(ModeAdminSession)
				if e.auth.Login(ctx, ModeAdminSession) {
					retried = true
					continue
				}
				deniedCount++
				break
			}

			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				// Insufficient permission for this mode; a different mode
				// may still succeed.
				logging.Debug("Executor", "[%s] %s: status %d, trying next candidate", callID, candidate, resp.StatusCode)
				deniedCount++
				break
			}

			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, &OperationError{
					Kind:      KindUpstreamBadRequest,
					Op:        plan.Op,
					Detail:    fmt.Sprintf("status %d: %s", resp.StatusCode, truncateBody(body)),
					Attempted: attempted,
				}
			}

			return nil, &OperationError{
				Kind:      KindUpstreamUnavailable,
				Op:        plan.Op,
				Detail:    fmt.Sprintf("status %d: %s", resp.StatusCode, truncateBody(body)),
				Attempted: attempted,
			}
		}
	}

	if authFailures == len(plan.Candidates) {
		return nil, &OperationError{
			Kind:      KindAuthUnavailable,
			Op:        plan.Op,
			Detail:    "no credential mode could authenticate",
			Attempted: attempted,
		}
	}
	if deniedCount > 0 && authFailures+deniedCount == len(plan.Candidates) {
		return nil, &OperationError{
			Kind:      KindAccessDenied,
			Op:        plan.Op,
			Detail:    "every viable candidate was denied",
			Attempted: attempted,
		}
	}
	return nil, &OperationError{
		Kind:      KindResourceNotFound,
		Op:        plan.Op,
		Detail:    "no candidate endpoint matched",
		Attempted: attempted,
	}
}

// ensureAuthenticated makes the candidate's mode usable, logging in when a
// session is required and none is cached.
func (e *FallbackExecutor) ensureAuthenticated(ctx context.Context, c Candidate) bool {
	if c.Mode != ModeAdminSession {
		return e.auth.Login(ctx, c.Mode)
	}
	if _, ok := e.creds.Token(ModeAdminSession); ok {
		return true
	}
	return e.auth.Login(ctx, ModeAdminSession)
}

func (e *FallbackExecutor) doRequest(ctx context.Context, c Candidate, build RequestBuilder) (*http.Response, []byte, error) {
	req, err := build(ctx, c)
	if err != nil {
		return nil, nil, err
	}

	switch c.Mode {
	case ModeAdminSession:
		if token, ok := e.creds.Token(ModeAdminSession); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	case ModeAPIToken:
		if token, ok := e.creds.Token(ModeAPIToken); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	case ModeAnonymous:
		// no credentials
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, body, nil
}

func (e *FallbackExecutor) buildResult(op string, c Candidate, status int, body []byte, opts ExecOptions, attempted []string) (*Result, error) {
	normalized := Normalize(body)

	if opts.Write && normalized.ErrorPayload != nil {
		return nil, &OperationError{
			Kind:      KindUpstreamBadRequest,
			Op:        op,
			Detail:    fmt.Sprintf("write reported an error payload: %v", normalized.ErrorPayload["error"]),
			Attempted: attempted,
		}
	}

	result := &Result{Normalized: normalized, StatusCode: status, Candidate: c}
	if normalized.Unrecognized {
		if opts.Write {
			result.Warnings = append(result.Warnings,
				"write succeeded upstream but the response shape was not recognized")
		} else {
			result.Warnings = append(result.Warnings, "unrecognized response shape")
		}
	}
	return result, nil
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
