package problem

import (
	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/ml/svm"
)

// Input is what the solver actually sees of a problem.
type Input interface {
	// Generate lays out the training samples for the solver.
	Generate() svm.Problem
	// Prepare converts a query vector into the form the solver predicts on.
	Prepare(x dataset.View) []svm.Node
}

// NewInput chooses between passing samples through and precomputing Gram
// rows, depending on the kernel.
func NewInput[L comparable](p *Problem[L], k kernel.Kernel) (Input, error) {
	if !k.RequiresPrecomputation() {
		return Passthrough(p), nil
	}
	custom, ok := k.(kernel.Custom)
	if !ok {
		return nil, ErrKernelUnsupported
	}
	return NewPrecomputer(p, custom), nil
}

type passthrough[L comparable] struct {
	prob *Problem[L]
}

// Passthrough hands the samples to the solver as they are.
func Passthrough[L comparable](p *Problem[L]) Input {
	return passthrough[L]{prob: p}
}

func (in passthrough[L]) Generate() svm.Problem {
	p := in.prob
	out := svm.Problem{
		L: len(p.samples),
		X: make([][]svm.Node, len(p.samples)),
		Y: make([]float64, len(p.samples)),
	}
	for i, s := range p.samples {
		out.X[i] = terminated(s.Nodes())
		out.Y[i] = p.space.Encode(p.labels[i])
	}
	return out
}

func (in passthrough[L]) Prepare(x dataset.View) []svm.Node {
	return terminated(x.Nodes())
}

func terminated(nodes []svm.Node) []svm.Node {
	if len(nodes) == 0 {
		return []svm.Node{svm.End()}
	}
	return nodes
}
