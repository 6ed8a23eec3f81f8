package strapi

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies operation failures so tool handlers can report them
// uniformly and callers can decide whether a retry makes sense.
type Kind int

const (
	// KindConfiguration marks a missing credential or setting required by the
	// operation. No network call was made.
	KindConfiguration Kind = iota
	// KindAuthUnavailable means no credential mode could authenticate for
	// this operation.
	KindAuthUnavailable
	// KindResourceNotFound means every candidate endpoint 404'd or the
	// target id does not exist.
	KindResourceNotFound
	// KindAccessDenied means every viable candidate answered 401 or 403.
	KindAccessDenied
	// KindInvalidRequest marks a malformed argument caught before any
	// network call.
	KindInvalidRequest
	// KindUpstreamBadRequest is a CMS 4xx that is neither auth nor
	// not-found. The request shape is wrong; trying another endpoint cannot
	// help.
	KindUpstreamBadRequest
	// KindUpstreamUnavailable covers network errors and 5xx responses.
	KindUpstreamUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuthUnavailable:
		return "auth_unavailable"
	case KindResourceNotFound:
		return "resource_not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindInvalidRequest:
		return "invalid_request"
	case KindUpstreamBadRequest:
		return "upstream_bad_request"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	default:
		return "unknown"
	}
}

// OperationError is the structured failure returned by every adapter
// operation. Attempted lists the candidate paths tried before giving up,
// which is the main diagnostic when a fallback plan is exhausted.
type OperationError struct {
	Kind      Kind
	Op        string
	Detail    string
	Attempted []string
	Err       error
}

func (e *OperationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Op, e.Kind)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if len(e.Attempted) > 0 {
		fmt.Fprintf(&b, " (attempted: %s)", strings.Join(e.Attempted, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *OperationError) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) (Kind, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind, true
	}
	return 0, false
}

func opError(kind Kind, op, detail string) *OperationError {
	return &OperationError{Kind: kind, Op: op, Detail: detail}
}

func invalidRequest(op, detail string) *OperationError {
	return opError(KindInvalidRequest, op, detail)
}
