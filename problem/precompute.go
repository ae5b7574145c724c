package problem

import (
	"gonum.org/v1/gonum/mat"

	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/logger"
	"github.com/jgreitemann/svm/ml/svm"
)

// Precomputer evaluates a custom kernel between all samples of a problem.
// Row i handed to the solver is [i+1, k(x_i, x_1), ..., k(x_i, x_n)], with
// the ordinal stored under index 0. The Gram matrix is rebuilt whenever the
// problem changed since it was last computed.
type Precomputer[L comparable] struct {
	prob     *Problem[L]
	kernel   kernel.Custom
	gram     *mat.SymDense
	revision uint64
	rows     []dataset.Dataset
}

func NewPrecomputer[L comparable](p *Problem[L], k kernel.Custom) *Precomputer[L] {
	return &Precomputer[L]{prob: p, kernel: k}
}

// Stale reports whether the cached Gram matrix no longer matches the problem.
func (pc *Precomputer[L]) Stale() bool {
	return pc.gram == nil || pc.revision != pc.prob.revision
}

// Gram returns the kernel matrix of the current samples.
func (pc *Precomputer[L]) Gram() *mat.SymDense {
	if pc.Stale() {
		pc.compute()
	}
	return pc.gram
}

func (pc *Precomputer[L]) compute() {
	gramLogger := logger.NewLogger("Kernel precomputation")

	n := len(pc.prob.samples)
	if n == 0 {
		pc.gram = &mat.SymDense{}
		pc.revision = pc.prob.revision
		return
	}
	gram := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		xi := pc.prob.samples[i].View()
		for j := i; j < n; j++ {
			gram.SetSym(i, j, pc.kernel.Evaluate(xi, pc.prob.samples[j].View()))
		}
	}
	pc.gram = gram
	pc.revision = pc.prob.revision
	gramLogger.Debug().Int("samples", n).Msg("gram matrix computed")
}

// Generate rebuilds all Gram rows.
func (pc *Precomputer[L]) Generate() svm.Problem {
	gram := pc.Gram()
	p := pc.prob
	n := len(p.samples)

	pc.rows = make([]dataset.Dataset, n)
	out := svm.Problem{
		L: n,
		X: make([][]svm.Node, n),
		Y: make([]float64, n),
	}
	row := make([]float64, n+1)
	for i := 0; i < n; i++ {
		row[0] = float64(i + 1)
		for j := 0; j < n; j++ {
			row[j+1] = gram.At(i, j)
		}
		pc.rows[i] = dataset.New(row, dataset.WithStartIndex(0), dataset.WithZeros())
		out.X[i] = pc.rows[i].Nodes()
		out.Y[i] = p.space.Encode(p.labels[i])
	}
	return out
}

// Kernelize evaluates x against every sample. ordinal fills the index 0
// slot; use 1 for vectors outside the training set.
func (pc *Precomputer[L]) Kernelize(x dataset.View, ordinal int) dataset.Dataset {
	row := make([]float64, 0, len(pc.prob.samples)+1)
	row = append(row, float64(ordinal))
	for _, s := range pc.prob.samples {
		row = append(row, pc.kernel.Evaluate(x, s.View()))
	}
	return dataset.New(row, dataset.WithStartIndex(0), dataset.WithZeros())
}

func (pc *Precomputer[L]) Prepare(x dataset.View) []svm.Node {
	return pc.Kernelize(x, 1).Nodes()
}
