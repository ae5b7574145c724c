package serialization

import "errors"

var (
	ErrUnknownFormat  = errors.New("serialization: unknown format")
	ErrKernelMismatch = errors.New("serialization: kernel does not match snapshot")
)
