// Package label maps caller label types onto the numbers the solver trains
// on. A space either fixes the number of labels up front or lets the
// training data decide.
package label

import (
	"fmt"
	"math"
)

type Kind int

const (
	Dynamic Kind = iota
	Fixed
)

func (k Kind) String() string {
	if k == Fixed {
		return "fixed"
	}
	return "dynamic"
}

// Space converts labels of type L to and from solver values.
type Space[L comparable] interface {
	Kind() Kind
	// NrLabels is the declared cardinality of a fixed space and -1 otherwise.
	NrLabels() int
	Encode(l L) float64
	Decode(x float64) (L, error)
}

type realSpace struct{}

// Real is the dynamic space of plain numeric labels.
func Real() Space[float64] {
	return realSpace{}
}

func (realSpace) Kind() Kind                        { return Dynamic }
func (realSpace) NrLabels() int                     { return -1 }
func (realSpace) Encode(l float64) float64          { return l }
func (realSpace) Decode(x float64) (float64, error) { return x, nil }

type intSpace struct{}

// Integers is the dynamic space of integral labels.
func Integers() Space[int] {
	return intSpace{}
}

func (intSpace) Kind() Kind           { return Dynamic }
func (intSpace) NrLabels() int        { return -1 }
func (intSpace) Encode(l int) float64 { return float64(l) }
func (intSpace) Decode(x float64) (int, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLabel, x)
	}
	return int(math.Round(x)), nil
}
