package traits

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	// KindTransport covers network and connection failures.
	KindTransport Kind = "Transport"
	// KindResponse covers non-2xx HTTP statuses on either request.
	KindResponse Kind = "Response"
	// KindSchema covers a missing or malformed traits/key document.
	KindSchema Kind = "Schema"
)

// Stable rule identifiers.
const (
	RuleFetchTransport  = "TRAIT-TRN-001"
	RuleSubmitTransport = "TRAIT-TRN-002"
	RuleReadBody        = "TRAIT-TRN-003"

	RuleFetchStatus  = "TRAIT-RSP-001"
	RuleSubmitStatus = "TRAIT-RSP-002"
	RuleBodyTooLarge = "TRAIT-RSP-003"

	RuleNotObject       = "TRAIT-SCH-001"
	RuleTraitsMissing   = "TRAIT-SCH-002"
	RuleTraitsMalformed = "TRAIT-SCH-003"
	RuleKeyMissing      = "TRAIT-SCH-004"
	RuleKeyMalformed    = "TRAIT-SCH-005"
	RuleKeyTooLong      = "TRAIT-SCH-007"
)

// Error is the package's structured error type.
//
// StatusCode is set only for KindResponse errors.
// Message is intended for humans; do not match on it.
type Error struct {
	Kind       Kind
	RuleID     string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError returns a structured error without a cause.
func NewError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// WrapError returns a structured error wrapping cause.
func WrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return NewError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// StatusError returns a KindResponse error carrying the HTTP status code.
func StatusError(ruleID, msg string, status int) error {
	return &Error{Kind: KindResponse, RuleID: ruleID, Message: msg, StatusCode: status}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}

// StatusCode returns the HTTP status carried by a KindResponse error, or 0.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}
	return e.StatusCode
}
