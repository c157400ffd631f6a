package errors

// ErrorCode represents a unique identifier for each error type
type ErrorCode string

// Error is a coded error created by a Factory.
type Error interface {
	error
	Code() ErrorCode
	Unwrap() error
}

// Factory defines methods for creating domain errors
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}

// Coded is implemented by errors that carry an ErrorCode without being a
// full Error, such as the sensor and PWM I/O errors.
type Coded interface {
	error
	Code() ErrorCode
}
