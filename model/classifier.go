package model

import (
	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/params"
)

// Classifier is the binary decision function between two classes of a
// model. It refers to the model's record and is invalidated by Close.
type Classifier[L comparable] struct {
	model *Model[L]
	// k1 < k2 are solver class indices
	k1, k2   int
	k1Offset int
	k2Offset int
	kComb    int
	// sign is -1 if the caller asked for (k2, k1)
	sign float64
}

func newClassifier[L comparable](m *Model[L], k1, k2 int) Classifier[L] {
	c := Classifier[L]{model: m, k1: k1, k2: k2, sign: 1}
	if k1 > k2 {
		c.k1, c.k2 = k2, k1
		c.sign = -1
	}
	sum := 0
	for k, n := range m.record.NSV {
		if k == c.k1 {
			c.k1Offset = sum
		}
		if k == c.k2 {
			c.k2Offset = sum
		}
		sum += n
	}
	nrLabels := m.record.NrClass
	c.kComb = c.k1*(nrLabels-1) - c.k1*(c.k1-1)/2 + c.k2 - c.k1 - 1
	return c
}

// Labels returns the two classes in the order the classifier was asked for.
func (c Classifier[L]) Labels() (L, L) {
	if c.sign > 0 {
		return c.model.labels[c.k1], c.model.labels[c.k2]
	}
	return c.model.labels[c.k2], c.model.labels[c.k1]
}

// Rho is the threshold, signed so that positive decisions favour the first
// label.
func (c Classifier[L]) Rho() float64 {
	return c.sign * c.model.record.Rho[c.kComb]
}

// Evaluate returns the winner between the two labels and the signed
// decision value for x.
func (c Classifier[L]) Evaluate(x dataset.View) (L, float64, error) {
	_, raw, err := c.model.RawEvaluate(x)
	if err != nil {
		var zero L
		return zero, 0, err
	}
	dec := c.sign * raw[c.kComb]
	first, second := c.Labels()
	switch {
	case dec > 0:
		return first, dec, nil
	case dec < 0:
		return second, dec, nil
	}
	// ties go to the class the solver votes for
	return c.model.labels[c.k2], dec, nil
}

// Len is the number of support vectors of both classes.
func (c Classifier[L]) Len() int {
	nsv := c.model.record.NSV
	return nsv[c.k1] + nsv[c.k2]
}

func (c Classifier[L]) Dim() int {
	return c.model.Dim()
}

func (c Classifier[L]) Parameters() params.Parameters {
	return c.model.Parameters()
}

func (c Classifier[L]) Kernel() kernel.Kernel {
	return c.model.Kernel()
}

// Iterator walks the support vectors of the first label, then those of the
// second, together with their signed dual coefficients.
func (c Classifier[L]) Iterator() *Iterator[L] {
	it := &Iterator[L]{cl: c, pos: -1}
	rec := c.model.record
	first := segment{
		coef:   rec.SvCoef[c.k2-1],
		offset: c.k1Offset,
		n:      rec.NSV[c.k1],
		class:  c.k1,
	}
	second := segment{
		coef:   rec.SvCoef[c.k1],
		offset: c.k2Offset,
		n:      rec.NSV[c.k2],
		class:  c.k2,
	}
	if c.sign < 0 {
		first, second = second, first
	}
	it.segments = [2]segment{first, second}
	return it
}

type segment struct {
	coef   []float64
	offset int
	n      int
	class  int
}

// Iterator is bidirectional. It starts before the first support vector;
// Next and Prev report whether they landed on one.
type Iterator[L comparable] struct {
	cl       Classifier[L]
	segments [2]segment
	pos      int
}

func (it *Iterator[L]) total() int {
	return it.segments[0].n + it.segments[1].n
}

func (it *Iterator[L]) Next() bool {
	if it.pos < it.total() {
		it.pos++
	}
	return it.pos < it.total()
}

func (it *Iterator[L]) Prev() bool {
	if it.pos >= 0 {
		it.pos--
	}
	return it.pos >= 0
}

func (it *Iterator[L]) current() (segment, int) {
	if it.pos < it.segments[0].n {
		return it.segments[0], it.pos
	}
	return it.segments[1], it.pos - it.segments[0].n
}

// Coef is the dual coefficient of the current support vector.
func (it *Iterator[L]) Coef() float64 {
	seg, i := it.current()
	return it.cl.sign * seg.coef[seg.offset+i]
}

// Label is the class of the current support vector.
func (it *Iterator[L]) Label() L {
	seg, _ := it.current()
	return it.cl.model.labels[seg.class]
}

// SupportVector is the current support vector in feature space. For
// precomputed kernels it is the training sample the Gram row came from.
func (it *Iterator[L]) SupportVector() dataset.View {
	seg, i := it.current()
	m := it.cl.model
	sv := m.record.SV[seg.offset+i]
	if !m.kernel.RequiresPrecomputation() {
		return dataset.NewView(sv, 1)
	}
	ordinal := int(dataset.NewView(sv, 0).Front())
	x, _, err := m.prob.At(ordinal - 1)
	if err != nil {
		return dataset.View{}
	}
	return x
}
