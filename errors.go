package ddc

import "errors"

// Error kinds. Operations wrap these, test with errors.Is.
var (
	// ErrUnsupported is returned for features the command table marks
	// unreadable or unwritable.
	ErrUnsupported = errors.New("ddc: unsupported feature operation")

	// ErrValueOutOfRange is returned when a value exceeds the maximum of a
	// continuous feature or is absent from the value set of a discrete one.
	ErrValueOutOfRange = errors.New("ddc: value out of range")

	// ErrCommunication is returned when an exchange exhausted its retry
	// budget without a valid reply.
	ErrCommunication = errors.New("ddc: communication failed")

	// ErrEnumeration is returned when the device registry cannot be opened.
	ErrEnumeration = errors.New("ddc: display enumeration failed")
)
