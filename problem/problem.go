// Package problem collects labelled training samples of a fixed
// dimensionality and lays them out the way the solver expects.
package problem

import (
	"fmt"

	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/label"
	"github.com/jgreitemann/svm/utils"
)

// Problem is an ordered list of (sample, label) pairs. It is not safe for
// concurrent mutation.
type Problem[L comparable] struct {
	dimension int
	space     label.Space[L]
	samples   []dataset.Dataset
	labels    []L
	revision  uint64
}

func New[L comparable](dim int, space label.Space[L]) *Problem[L] {
	return &Problem[L]{dimension: dim, space: space}
}

// AddSample appends x with label l. Samples longer than the problem
// dimension are rejected; shorter ones read as zero-padded.
func (p *Problem[L]) AddSample(x dataset.Dataset, l L) error {
	if x.Len() > p.dimension {
		return fmt.Errorf("%w: sample of length %d in problem of dimension %d", ErrDimensionMismatch, x.Len(), p.dimension)
	}
	p.samples = append(p.samples, x)
	p.labels = append(p.labels, l)
	p.revision++
	return nil
}

// At returns the i-th sample and its label.
func (p *Problem[L]) At(i int) (dataset.View, L, error) {
	if i < 0 || i >= len(p.samples) {
		var zero L
		return dataset.View{}, zero, fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(p.samples))
	}
	return p.samples[i].View(), p.labels[i], nil
}

func (p *Problem[L]) Size() int {
	return len(p.samples)
}

func (p *Problem[L]) Dim() int {
	return p.dimension
}

func (p *Problem[L]) Space() label.Space[L] {
	return p.space
}

// Labels returns a copy of the labels in sample order.
func (p *Problem[L]) Labels() []L {
	return append([]L(nil), p.labels...)
}

// Revision changes whenever samples or labels change.
func (p *Problem[L]) Revision() uint64 {
	return p.revision
}

// Append moves every sample of other into p and leaves other empty.
func (p *Problem[L]) Append(other *Problem[L]) error {
	return AppendMapped(p, other, func(l L) L { return l }, nil)
}

// MapLabels replaces every label with f(label).
func (p *Problem[L]) MapLabels(f func(L) L) {
	for i, l := range p.labels {
		p.labels[i] = f(l)
	}
	p.revision++
}

// AppendMapped moves the samples of src into dst, relabelling them with f
// and keeping only those whose new label passes filter. A nil filter keeps
// everything. src is left empty and must not be dst.
func AppendMapped[L, M comparable](dst *Problem[M], src *Problem[L], f func(L) M, filter func(M) bool) error {
	if any(dst) == any(src) {
		return ErrSelfAppend
	}
	if dst.dimension != src.dimension {
		return fmt.Errorf("%w: cannot append dimension %d to %d", ErrDimensionMismatch, src.dimension, dst.dimension)
	}
	for i, l := range src.labels {
		m := f(l)
		if filter != nil && !filter(m) {
			continue
		}
		dst.samples = append(dst.samples, src.samples[i])
		dst.labels = append(dst.labels, m)
	}
	src.samples = nil
	src.labels = nil
	src.revision++
	dst.revision++
	return nil
}

// Convert builds a new problem over space from the samples of src.
func Convert[L, M comparable](src *Problem[L], space label.Space[M], f func(L) M, filter func(M) bool) *Problem[M] {
	dst := New(src.dimension, space)
	// dimensions agree by construction
	_ = AppendMapped(dst, src, f, filter)
	return dst
}

// Fingerprint hashes the dimension, the dense samples and the encoded
// labels.
func (p *Problem[L]) Fingerprint() uint64 {
	values := make([]float64, 0, 2+len(p.samples)*(p.dimension+1))
	values = append(values, float64(p.dimension), float64(len(p.samples)))
	for i, s := range p.samples {
		values = append(values, s.View().Dense(p.dimension)...)
		values = append(values, p.space.Encode(p.labels[i]))
	}
	return utils.HashFloats(values...)
}
