package nutrition

import (
	"errors"
	"fmt"
)

// BadRequestError marks input the caller must fix.
type BadRequestError struct {
	Message string
	Err     error
}

func (e *BadRequestError) Error() string { return e.Message }

func (e *BadRequestError) Unwrap() error { return e.Err }

// NotFoundError marks a product, meal or lookup result that does not exist.
type NotFoundError struct {
	Message string
	Err     error
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Unwrap() error { return e.Err }

func badRequest(format string, args ...any) error {
	return &BadRequestError{Message: fmt.Sprintf(format, args...)}
}

func notFound(err error, format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...), Err: err}
}

func IsBadRequest(err error) bool {
	var e *BadRequestError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}
