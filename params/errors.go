package params

import "errors"

var ErrUnsupportedMachine = errors.New("params: SVM type not supported")
