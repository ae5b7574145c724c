package combinatorics

import "errors"

var (
	ErrOverflow = errors.New("combinatorics: result exceeds range")
	ErrDomain   = errors.New("combinatorics: argument outside domain")
)
