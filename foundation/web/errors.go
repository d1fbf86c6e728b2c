package web

import "errors"

// ErrInvalidContext is returned by GetValues when no Values has been
// attached to the context by the App's Handle wrapper.
var ErrInvalidContext = errors.New("web value missing from context")

// shutdownError is a type used to help with the graceful termination of the
// service when a handler encounters a problem serious enough to warrant
// bringing the whole process down.
type shutdownError struct {
	Message string
}

// NewShutdownError returns an error that causes the framework to signal a
// graceful shutdown.
func NewShutdownError(message string) error {
	return &shutdownError{message}
}

func (e *shutdownError) Error() string {
	return e.Message
}

// IsShutdown checks to see if the shutdown error is contained in the
// specified error value.
func IsShutdown(err error) bool {
	var se *shutdownError
	return errors.As(err, &se)
}
