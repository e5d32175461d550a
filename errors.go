package bthome

import "errors"

var (
	// ErrCapacityExceeded denotes that a measurement does not fit into the remaining advertisement space
	ErrCapacityExceeded = errors.New("advertisement capacity exceeded")

	// ErrEncodingUnsupported denotes a quantity / state that is not part of the BThome V2 registry
	ErrEncodingUnsupported = errors.New("encoding not supported")

	// ErrEncryptionFailure denotes a failure of the AES-CCM primitive
	ErrEncryptionFailure = errors.New("encryption failure")

	// ErrValueOutOfRange denotes a scaled value that cannot be represented in its field width (strict mode only)
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrBufferTooSmall denotes an output buffer that cannot hold the advertisement envelope
	ErrBufferTooSmall = errors.New("output buffer too small")

	// ErrCounterExhausted denotes an encryption counter that cannot be advanced without wrapping
	ErrCounterExhausted = errors.New("encryption counter exhausted")

	// ErrInvalidIdentity denotes an invalid device identity (e.g. key or MAC of wrong length)
	ErrInvalidIdentity = errors.New("invalid device identity")

	// ErrNotSupported denotes a radio capability that is not available on the current platform
	ErrNotSupported = errors.New("not supported")
)
