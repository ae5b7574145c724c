package kernel

import "errors"

var (
	ErrUnknownKernel  = errors.New("kernel: unknown kernel")
	ErrKernelRequired = errors.New("kernel: custom kernel must be supplied by the caller")
)
