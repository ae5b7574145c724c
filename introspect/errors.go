package introspect

import "errors"

var (
	ErrKernelMismatch = errors.New("introspect: kernel does not admit this expansion")
	ErrRankMismatch   = errors.New("introspect: tensor rank mismatch")
	ErrOutOfRange     = errors.New("introspect: feature index out of range")
)
