// Package errors gives every failure the daemon reports a stable ErrorCode.
// The codes end up in log lines, control events and the status database, so
// a sensor that vanished and a PWM file that turned read-only can be told
// apart without parsing messages.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// codedError is the Error every Factory method returns. Any of message,
// detail and cause may be empty.
type codedError struct {
	code    ErrorCode
	message string
	detail  any
	cause   error
}

// Error renders "message: detail: cause", leaving out empty parts. Without
// an explicit message the code's default message is used.
func (e *codedError) Error() string {
	parts := make([]string, 0, 3)

	if e.message != "" {
		parts = append(parts, e.message)
	} else {
		parts = append(parts, GetErrorMessage(e.code))
	}
	if e.detail != nil {
		parts = append(parts, fmt.Sprint(e.detail))
	}
	if e.cause != nil {
		parts = append(parts, e.cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *codedError) Code() ErrorCode {
	return e.code
}

func (e *codedError) Unwrap() error {
	return e.cause
}

type factory struct{}

func (factory) New(code ErrorCode) Error {
	return &codedError{code: code}
}

func (factory) Wrap(code ErrorCode, err error) Error {
	return &codedError{code: code, cause: err}
}

func (factory) WithMessage(code ErrorCode, msg string) Error {
	return &codedError{code: code, message: msg}
}

func (factory) WithData(code ErrorCode, data any) Error {
	return &codedError{code: code, detail: data}
}

// New returns the Factory used throughout the daemon.
func New() Factory {
	return factory{}
}

// CodeOf returns the code of the first error in err's chain that carries
// one, or ErrInternal.
func CodeOf(err error) ErrorCode {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.Code()
	}

	return ErrInternal
}
