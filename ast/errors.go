package ast

import (
	"fmt"
	"strings"
)

// Kind categorizes a decode or lookup failure.
type Kind string

const (
	KindMissingField       Kind = "missing_field"
	KindUnknownObjectKind  Kind = "unknown_object_kind"
	KindUnknownOverlayType Kind = "unknown_overlay_type"
	KindInvalidValue       Kind = "invalid_value" // payload shape mismatch
)

// Error is the structured error produced while decoding a document.
// Callers branch on Kind (or errors.Is against the Err* sentinels) rather
// than on the message text.
type Error struct {
	Kind  Kind
	Field string // dotted field path, e.g. "object_kind.type"
	Value any    // offending raw value
	Cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(string(e.Kind))
	if e.Field != "" {
		b.WriteString(" at ")
		b.WriteString(e.Field)
	}

	if e.Value != nil {
		b.WriteString(": ")
		if s, ok := e.Value.(string); ok {
			fmt.Fprintf(&b, "%q", s)
		} else {
			fmt.Fprintf(&b, "%v", e.Value)
		}
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is matching by kind.
var (
	ErrMissingField       = &Error{Kind: KindMissingField}
	ErrUnknownObjectKind  = &Error{Kind: KindUnknownObjectKind}
	ErrUnknownOverlayType = &Error{Kind: KindUnknownOverlayType}
	ErrInvalidValue       = &Error{Kind: KindInvalidValue}
)

// MissingField reports an absent or empty required field.
func MissingField(field string) *Error {
	return &Error{Kind: KindMissingField, Field: field}
}

// UnknownObjectKind reports a discriminant or integer code with no object kind.
func UnknownObjectKind(value any) *Error {
	return &Error{Kind: KindUnknownObjectKind, Value: value}
}

// UnknownOverlayType reports a string that names no overlay type.
func UnknownOverlayType(value string) *Error {
	return &Error{Kind: KindUnknownOverlayType, Value: value}
}

// InvalidValue reports a field whose value has the wrong shape.
func InvalidValue(field string, value any) *Error {
	return &Error{Kind: KindInvalidValue, Field: field, Value: value}
}

// RefErrorKind categorizes a reference parsing failure.
type RefErrorKind string

const (
	RefMissingColon RefErrorKind = "MissingColon"
	RefUnknownTag   RefErrorKind = "UnknownTag"
	RefSaidError    RefErrorKind = "SaidError"
)

// RefValueParsingError is returned when a string does not follow the
// ("refs"|"refn") ":" identifier grammar, or when a Said identifier is
// rejected by a SaidValidator.
type RefValueParsingError struct {
	Kind    RefErrorKind
	Input   string
	Tag     string // set for RefUnknownTag
	Message string
	Cause   error // set for RefSaidError
}

func (e *RefValueParsingError) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Cause != nil {
		return msg + " (caused by " + e.Cause.Error() + ")"
	}
	return msg
}

func (e *RefValueParsingError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *RefValueParsingError of the same kind.
func (e *RefValueParsingError) Is(target error) bool {
	if t, ok := target.(*RefValueParsingError); ok {
		return e.Kind == t.Kind
	}
	return false
}

var (
	ErrMissingColon = &RefValueParsingError{Kind: RefMissingColon}
	ErrUnknownTag   = &RefValueParsingError{Kind: RefUnknownTag}
	ErrSaid         = &RefValueParsingError{Kind: RefSaidError}
)

// NewSaidError builds the error shape for an identifier that failed a
// content-address validity check. The check itself belongs to the caller.
func NewSaidError(id string, cause error) *RefValueParsingError {
	return &RefValueParsingError{
		Kind:    RefSaidError,
		Input:   id,
		Message: fmt.Sprintf("invalid said %q", id),
		Cause:   cause,
	}
}
