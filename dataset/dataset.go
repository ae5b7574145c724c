// Package dataset builds the sparse vectors handed to the solver and offers
// read-only views onto them. Indices skipped in storage read as zero.
package dataset

import (
	"fmt"

	"github.com/jgreitemann/svm/ml/svm"
)

type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

type options struct {
	start     int
	skipZeros bool
}

type Option func(*options)

// WithStartIndex tags the first component with index start instead of 1.
func WithStartIndex(start int) Option {
	return func(o *options) {
		o.start = start
	}
}

// WithZeros stores zero components explicitly.
func WithZeros() Option {
	return func(o *options) {
		o.skipZeros = false
	}
}

func buildOptions(opts []Option) options {
	o := options{start: 1, skipZeros: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Dataset owns the node storage of one vector, terminated by svm.End().
type Dataset struct {
	nodes  []svm.Node
	start  int
	length int
}

// New converts a dense vector. Component i is stored under index start+i.
func New[T Number](values []T, opts ...Option) Dataset {
	o := buildOptions(opts)
	nodes := make([]svm.Node, 0, len(values)+1)
	for i, v := range values {
		if !o.skipZeros || v != 0 {
			nodes = append(nodes, svm.Node{Index: o.start + i, Value: float64(v)})
		}
	}
	nodes = append(nodes, svm.End())
	return Dataset{nodes: nodes, start: o.start, length: len(values)}
}

// FromEntries builds a vector of the given logical length from entries that
// are already sparse. Indices must be strictly ascending within
// [start, start+length).
func FromEntries(entries []svm.Node, length int, opts ...Option) (Dataset, error) {
	o := buildOptions(opts)
	nodes := make([]svm.Node, 0, len(entries)+1)
	last := o.start - 1
	for _, e := range entries {
		if e.Index < o.start || e.Index >= o.start+length {
			return Dataset{}, fmt.Errorf("%w: index %d outside [%d, %d)", ErrOutOfRange, e.Index, o.start, o.start+length)
		}
		if e.Index <= last {
			return Dataset{}, fmt.Errorf("%w: index %d after %d", ErrUnsorted, e.Index, last)
		}
		last = e.Index
		if o.skipZeros && e.Value == 0 {
			continue
		}
		nodes = append(nodes, e)
	}
	nodes = append(nodes, svm.End())
	return Dataset{nodes: nodes, start: o.start, length: length}, nil
}

// Nodes is the solver-facing storage including the terminating node.
func (d Dataset) Nodes() []svm.Node {
	return d.nodes
}

func (d Dataset) Len() int {
	return d.length
}

func (d Dataset) StartIndex() int {
	return d.start
}

func (d Dataset) View() View {
	if d.nodes == nil {
		return View{}
	}
	return View{nodes: d.nodes, start: d.start, length: d.length}
}

func (d Dataset) Dense() []float64 {
	return d.View().Dense(d.length)
}

// Clone copies the node storage.
func (d Dataset) Clone() Dataset {
	d.nodes = append([]svm.Node(nil), d.nodes...)
	return d
}
