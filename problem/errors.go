package problem

import "errors"

var (
	ErrDimensionMismatch = errors.New("problem: dimension mismatch")
	ErrOutOfRange        = errors.New("problem: sample index out of range")
	ErrKernelUnsupported = errors.New("problem: kernel requires precomputation but cannot be evaluated")
	ErrSelfAppend        = errors.New("problem: cannot append a problem to itself")
)
