// Package introspect recovers explicit primal decision functions from the
// dual coefficients of a trained pairwise classifier.
package introspect

import (
	"fmt"

	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/model"
)

// Linear expands a linear classifier into its weight vector. The decision
// function is <w, x> - RightHandSide().
type Linear[L comparable] struct {
	cl model.Classifier[L]
}

func NewLinear[L comparable](cl model.Classifier[L]) (*Linear[L], error) {
	switch cl.Kernel().(type) {
	case kernel.Linear, kernel.LinearPrecomputed:
		return &Linear[L]{cl: cl}, nil
	}
	return nil, fmt.Errorf("%w: linear expansion of %s kernel", ErrKernelMismatch, cl.Kernel().Kind())
}

// Coefficient returns the i-th component of the weight vector.
func (l *Linear[L]) Coefficient(i int) (float64, error) {
	if i < 0 || i >= l.cl.Dim() {
		return 0, fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, l.cl.Dim())
	}
	c := 0.0
	for it := l.cl.Iterator(); it.Next(); {
		sv := it.SupportVector()
		c += it.Coef() * sv.At(sv.StartIndex()+i)
	}
	return c, nil
}

// Coefficients returns the whole weight vector in one pass over the support
// vectors.
func (l *Linear[L]) Coefficients() []float64 {
	w := make([]float64, l.cl.Dim())
	for it := l.cl.Iterator(); it.Next(); {
		coef := it.Coef()
		for i, x := range it.SupportVector().Dense(len(w)) {
			w[i] += coef * x
		}
	}
	return w
}

func (l *Linear[L]) RightHandSide() float64 {
	return l.cl.Rho()
}
