package registry

import (
	"errors"
	"fmt"
)

// Kind classifies an authority error so callers can branch on the failure
// class without string matching.
type Kind string

const (
	// KindValidation covers malformed or duplicate input.
	KindValidation Kind = "validation"

	// KindAuthentication covers missing, invalid, or expired credentials,
	// including logins against unverified accounts.
	KindAuthentication Kind = "authentication"

	// KindAuthorization covers authenticated callers lacking permission.
	KindAuthorization Kind = "authorization"

	// KindNotFound covers unknown accounts, organizations, and teams.
	KindNotFound Kind = "not_found"

	// KindInvariantViolation covers mutations that would break a structural
	// rule, such as removing the last owner of an organization.
	KindInvariantViolation Kind = "invariant_violation"

	// KindResourceConflict covers destroys blocked by linked resources.
	KindResourceConflict Kind = "resource_conflict"

	// KindTransport covers an unreachable authority or an unexpected
	// failure it returned.
	KindTransport Kind = "transport"
)

// Error is the structured error returned by the authority and by local
// fail-fast checks. Resources is only set for KindResourceConflict and holds
// the number of linked resources blocking a destroy.
type Error struct {
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`
	Resources int    `json:"resources,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds a kind-tagged error from a format string.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ConflictError builds a resource-conflict error carrying the count of
// blocking linked resources.
func ConflictError(count int, format string, args ...any) *Error {
	return &Error{Kind: KindResourceConflict, Message: fmt.Sprintf(format, args...), Resources: count}
}

// AsError unwraps err to a *Error if one is in the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	if e, ok := AsError(err); ok {
		return e.Kind == kind
	}
	return false
}
