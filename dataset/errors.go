package dataset

import "errors"

var (
	ErrOutOfRange = errors.New("dataset: index out of range")
	ErrUnsorted   = errors.New("dataset: indices not strictly ascending")
)
