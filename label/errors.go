package label

import "errors"

var ErrInvalidLabel = errors.New("label: invalid label")
