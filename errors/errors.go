package errors

import (
	// Go Internal Packages
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error so callers can branch on the failure class
// instead of string-matching messages.
type Kind uint8

const (
	Other           Kind = iota // unclassified
	Invalid                     // missing or malformed input, resolved before any network call
	Transport                   // network, timeout, TLS or non-200 HTTP failure
	Declined                    // processor declined the transaction (business outcome)
	ProcessorFault              // processor-side error response
	AuthUnavailable             // step-up authentication provider missing or misconfigured
	Policy                      // rejected by merchant policy before any network call
	NotFound                    // referenced entity does not exist
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Transport:
		return "transport"
	case Declined:
		return "declined"
	case ProcessorFault:
		return "processor fault"
	case AuthUnavailable:
		return "authentication unavailable"
	case Policy:
		return "policy"
	case NotFound:
		return "not found"
	}
	return "other"
}

// Error is a kind-tagged error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a kind-tagged error. A nil err is fine; the message stands alone.
func E(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Is reports whether err (or anything it wraps) carries the given kind.
func Is(kind Kind, err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Message returns the outermost tagged message, or err.Error() when the
// error was not built by this package.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ValidationErrors accumulates per-field validation failures.
type ValidationErrors struct {
	fields []string
	errs   []string
}

// ValidationErrs returns an empty accumulator.
func ValidationErrs() *ValidationErrors {
	return &ValidationErrors{}
}

// Add records a failure for the given field.
func (v *ValidationErrors) Add(field, msg string) {
	v.fields = append(v.fields, field)
	v.errs = append(v.errs, msg)
}

// Err returns nil when nothing was added, otherwise a single error
// joining every recorded failure.
func (v *ValidationErrors) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	parts := make([]string, len(v.errs))
	for i := range v.errs {
		parts[i] = fmt.Sprintf("%s: %s", v.fields[i], v.errs[i])
	}
	return errors.New(strings.Join(parts, "; "))
}
