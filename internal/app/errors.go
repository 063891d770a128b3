package app

import (
	"errors"
	"fmt"
)

// Reason is the stable machine-readable classification of a service
// failure. Transports map reasons to protocol status codes; messages are
// for humans only.
type Reason string

const (
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonInvalidArgument Reason = "invalid_argument"
	ReasonNotFound        Reason = "not_found"
	ReasonForbidden       Reason = "forbidden"
	ReasonUnavailable     Reason = "unavailable"
)

type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func Errorf(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the reason from err, defaulting to unavailable for
// anything that did not come out of this package.
func ReasonOf(err error) Reason {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ReasonUnavailable
}
