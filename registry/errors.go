package registry

import "errors"

var (
	ErrNotFound = errors.New("registry: model not found")
	ErrChecksum = errors.New("registry: checksum mismatch")
)
