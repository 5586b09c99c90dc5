package obd

import "errors"

var (
	// ErrInvalidArgument is returned when a required input or output is
	// missing, such as a nil destination struct.
	ErrInvalidArgument = errors.New("obd: invalid argument")

	// ErrBufferTooSmall is returned when a caller-supplied buffer cannot
	// hold the full result. Nothing is ever written past the buffer's
	// capacity and no truncated result is returned.
	ErrBufferTooSmall = errors.New("obd: buffer too small")

	// ErrInvalidHex is returned for a non-hex character or a lone
	// trailing hex digit in input that must be hex byte pairs.
	ErrInvalidHex = errors.New("obd: invalid hex")

	// ErrNoData is returned when the adapter answered "NO DATA", meaning
	// the vehicle did not respond to the request. This is a normal
	// operational outcome; the caller may retry the round trip later.
	ErrNoData = errors.New("obd: no data")

	// ErrAdapter is returned when the adapter reported an error ("?",
	// "ERROR", "UNABLE TO CONNECT", ...) instead of data.
	ErrAdapter = errors.New("obd: adapter error")

	// ErrParseFailed is returned when a response does not match the
	// expected wire format.
	ErrParseFailed = errors.New("obd: parse failed")

	// ErrUnknownPID is returned when a parameter id is not in the
	// sensor lookup table.
	ErrUnknownPID = errors.New("obd: unknown pid")
)
