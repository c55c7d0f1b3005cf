package errors

import "fmt"

func ValidationFailedErr(err error) error {
	return E(Invalid, "validation failed", err)
}

// MissingFieldErr reports a required request field that was absent or empty.
func MissingFieldErr(field string) error {
	return E(Invalid, fmt.Sprintf("missing required field: %s", field), nil)
}

func EmptyParamErr(field string) error {
	ve := ValidationErrs()
	ve.Add(field, "cannot be empty")
	return E(Invalid, "validation failed", ve.Err())
}

// TransportErr wraps a network-level or HTTP-status failure. These are never
// retried automatically.
func TransportErr(message string, err error) error {
	return E(Transport, message, err)
}

// DeclinedErr carries the processor's decline message (response=2).
func DeclinedErr(message string) error {
	return E(Declined, message, nil)
}

// ProcessorErr carries a processor-side fault (response=3).
func ProcessorErr(message string) error {
	return E(ProcessorFault, message, nil)
}

// PolicyErr reports a merchant-policy rejection resolved before any
// network call.
func PolicyErr(message string) error {
	return E(Policy, message, nil)
}

// AuthUnavailableErr reports a missing or misconfigured step-up provider,
// kept distinct from a generic verification failure.
func AuthUnavailableErr(message string, err error) error {
	return E(AuthUnavailable, message, err)
}
