// Package errors implements the coded error taxonomy used across the codec,
// the content store, and the RPC server.
//
// The shape is the teacher's: a message, a "safe to show the caller" flag,
// and an HTTP status for boundary-crossing failures. Extended here with a
// Code for the four failure classes the codec's grammar and API boundary
// distinguish between.
package errors

import "net/http"

// Code classifies a failure the way spec.md §7 does.
type Code int

const (
	// None marks an Error that doesn't carry one of the codec's specific
	// failure classes (used for generic public-facing RPC errors).
	None Code = iota
	// IllegalSequence: malformed token, length limit exceeded, integer
	// overflow, dict key at a non-string position, unmatched container
	// terminator, empty input, or trailing open container.
	IllegalSequence
	// InvalidArgument: programmer error at an API boundary (nil top, nil
	// buffer).
	InvalidArgument
	// TypeMismatch: a typed accessor was invoked on a wrong-kind node.
	// Reported in-band by accessors (bool + zero value); this code exists
	// for callers that need to surface it as an error value, e.g. across
	// the RPC boundary.
	TypeMismatch
	// NotFound: a dictionary key, or a content-store entry, was absent.
	NotFound
)

func (c Code) String() string {
	switch c {
	case IllegalSequence:
		return "illegal_sequence"
	case InvalidArgument:
		return "invalid_argument"
	case TypeMismatch:
		return "type_mismatch"
	case NotFound:
		return "not_found"
	default:
		return "error"
	}
}

// Error is a coded error. Its zero value is not useful; construct one via
// New or the New<Code> helpers below.
type Error struct {
	message string
	code    Code
	public  bool
	status  int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.message
}

// Public reports whether this error's message is safe to return to an
// untrusted caller (e.g. over the RPC boundary) rather than being logged
// and replaced with a generic message.
func (e *Error) Public() bool {
	return e.public
}

// Status is the HTTP status this error should be reported as when crossing
// the RPC boundary.
func (e *Error) Status() int {
	return e.status
}

// Code returns the failure classification.
func (e *Error) Code() Code {
	return e.code
}

// New constructs a public error with an explicit code and HTTP status.
func New(code Code, status int, msg string) error {
	return &Error{message: msg, code: code, public: true, status: status}
}

// NewIllegalSequence constructs an IllegalSequence error (HTTP 400 at the
// RPC boundary).
func NewIllegalSequence(msg string) error {
	return New(IllegalSequence, http.StatusBadRequest, msg)
}

// NewInvalidArgument constructs an InvalidArgument error (HTTP 400 at the
// RPC boundary).
func NewInvalidArgument(msg string) error {
	return New(InvalidArgument, http.StatusBadRequest, msg)
}

// NewNotFound constructs a NotFound error (HTTP 404 at the RPC boundary).
func NewNotFound(msg string) error {
	return New(NotFound, http.StatusNotFound, msg)
}

// NewMessage constructs a public, HTTP-200 informational error, matching
// the teacher's chihaya/errors.NewMessage.
func NewMessage(msg string) error {
	return New(None, http.StatusOK, msg)
}

// CodeOf extracts the Code from err if it is (or wraps, via errors.As
// semantics not implemented here to keep this package dependency-free) an
// *Error, and None otherwise.
func CodeOf(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.code
	}
	return None
}
