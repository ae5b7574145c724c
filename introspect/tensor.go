package introspect

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/jgreitemann/svm/combinatorics"
	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/model"
)

// Tensor extracts the homogeneous term of a fixed rank from a polynomial
// classifier. Expanding (gamma <x, y> + coef0)^d binomially, the rank-k term
// contributes binomial(d, k) gamma^k coef0^(d-k) sum_s c_s (sv_s . x)^k.
type Tensor[L comparable] struct {
	cl   model.Classifier[L]
	rank int
	fac  float64
}

func NewTensor[L comparable](cl model.Classifier[L], rank int) (*Tensor[L], error) {
	poly, ok := cl.Kernel().(kernel.Polynomial)
	if !ok {
		return nil, fmt.Errorf("%w: tensor expansion of %s kernel", ErrKernelMismatch, cl.Kernel().Kind())
	}
	if rank < 0 || rank > poly.Degree {
		return nil, fmt.Errorf("%w: rank %d for degree %d", ErrRankMismatch, rank, poly.Degree)
	}

	binom, err := combinatorics.Binomial(poly.Degree, rank)
	if err != nil {
		return nil, err
	}
	g, err := combinatorics.IPow(poly.Gamma, rank)
	if err != nil {
		return nil, err
	}
	c, err := combinatorics.IPow(poly.Coef0, poly.Degree-rank)
	if err != nil {
		return nil, err
	}
	return &Tensor[L]{cl: cl, rank: rank, fac: float64(binom) * g * c}, nil
}

func (t *Tensor[L]) Rank() int {
	return t.rank
}

// Tensor returns the coefficient belonging to the given feature indices.
// The tensor is symmetric so the order of indices does not matter. The
// rank-0 scalar is the constant term net of the threshold.
func (t *Tensor[L]) Tensor(indices ...int) (float64, error) {
	if len(indices) != t.rank {
		return 0, fmt.Errorf("%w: %d indices for rank %d", ErrRankMismatch, len(indices), t.rank)
	}
	if t.rank == 0 {
		return t.fac - t.cl.Rho(), nil
	}

	ind := append([]int(nil), indices...)
	sort.Ints(ind)
	if ind[0] < 0 || ind[len(ind)-1] >= t.cl.Dim() {
		return 0, fmt.Errorf("%w: %v for dimension %d", ErrOutOfRange, indices, t.cl.Dim())
	}

	sum := 0.0
	for it := t.cl.Iterator(); it.Next(); {
		sv := it.SupportVector()
		cur := sv.Begin()
		prod := 1.0
		for _, i := range ind {
			for cur.Index() < sv.StartIndex()+i && !cur.End() {
				cur.Next()
			}
			prod *= cur.Value()
		}
		sum += it.Coef() * prod
	}
	return t.fac * sum, nil
}

// Matrix returns the full rank-2 tensor.
func (t *Tensor[L]) Matrix() (*mat.SymDense, error) {
	if t.rank != 2 {
		return nil, fmt.Errorf("%w: matrix of rank %d tensor", ErrRankMismatch, t.rank)
	}
	n := t.cl.Dim()
	m := mat.NewSymDense(n, nil)
	for it := t.cl.Iterator(); it.Next(); {
		x := mat.NewVecDense(n, it.SupportVector().Dense(n))
		m.SymRankOne(m, t.fac*it.Coef(), x)
	}
	return m, nil
}
