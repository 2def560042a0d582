package remote

import "fmt"

// Kind classifies a fetch failure. The classification decides retry and
// fallback behavior, so callers should switch on it rather than on error
// strings.
type Kind int

const (
	// KindCredentialUnavailable: no usable bearer token could be obtained.
	KindCredentialUnavailable Kind = iota
	// KindAuthRejected: the endpoint refused the credential (401/403).
	KindAuthRejected
	// KindRateLimited: the endpoint answered 429. Not retried here to
	// avoid compounding the limit.
	KindRateLimited
	// KindServiceError: 5xx or an undecodable response body.
	KindServiceError
	// KindUnreachable: transport failure (timeout, DNS, refused). The only
	// kind worth retrying.
	KindUnreachable
)

// String returns a short identifier for logs and tests.
func (k Kind) String() string {
	switch k {
	case KindCredentialUnavailable:
		return "credential_unavailable"
	case KindAuthRejected:
		return "auth_rejected"
	case KindRateLimited:
		return "rate_limited"
	case KindServiceError:
		return "service_error"
	case KindUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Message returns a one-line human explanation suitable for the menu.
func (k Kind) Message() string {
	switch k {
	case KindCredentialUnavailable:
		return "No credentials. Sign in to Claude Code and retry."
	case KindAuthRejected:
		return "Session expired. Run /login in Claude Code."
	case KindRateLimited:
		return "Usage API is rate limited. Try again shortly."
	case KindServiceError:
		return "Usage API returned an error. Try again later."
	case KindUnreachable:
		return "Cannot reach the usage API. Check your connection."
	default:
		return "Unexpected error."
	}
}

// FetchError is a classified remote-fetch failure.
type FetchError struct {
	Kind   Kind
	Status int // HTTP status when the server answered, else 0
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("usage fetch %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("usage fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt could plausibly succeed
// within the same credential/session state.
func (e *FetchError) Retryable() bool { return e.Kind == KindUnreachable }

func newError(kind Kind, status int, err error) *FetchError {
	return &FetchError{Kind: kind, Status: status, Err: err}
}
