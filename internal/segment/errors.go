package segment

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure. Kinds are stable identifiers reported
// back to the caller alongside the human-readable reason.
type Kind string

const (
	KindUnsupportedMediaType Kind = "unsupported_media_type"
	KindMalformedImage       Kind = "malformed_image"
	KindInvalidParameter     Kind = "invalid_parameter"
	KindModelUnavailable     Kind = "model_unavailable"
	KindInferenceTimeout     Kind = "inference_timeout"
	KindInferenceError       Kind = "inference_error"
	KindEncodingError        Kind = "encoding_error"
)

// Error is a classified request failure. All errors surfaced to the caller
// are of this type; anything else escaping the pipeline is a bug.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a classified error with a formatted reason.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// WrapError classifies an underlying error without discarding it.
func WrapError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether any error in the chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// KindOf returns the kind carried by the error chain, or empty string if the
// error is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
