package model

import "errors"

var (
	ErrInvalidParameters    = errors.New("model: invalid parameters")
	ErrNumericalInstability = errors.New("model: solver returned NaN, specified nu is infeasible")
	ErrLabelCountMismatch   = errors.New("model: inconsistent number of label values")
	ErrUnknownLabel         = errors.New("model: unknown label")
	ErrEmptyModel           = errors.New("model: empty model")
	ErrCorruptRecord        = errors.New("model: corrupt trained record")
	ErrTrainingFailed       = errors.New("model: training failed")
)
