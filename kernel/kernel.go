// Package kernel describes the kernels a model can be trained with. Native
// kernels are evaluated by the solver itself; custom kernels are evaluated
// here and handed to the solver as precomputed Gram rows.
package kernel

import (
	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/ml/svm"
)

type Kind int

const (
	KindLinear Kind = iota
	KindPolynomial
	KindRBF
	KindSigmoid
	KindPrecomputed
)

var kindNames = map[Kind]string{
	KindLinear:      "linear",
	KindPolynomial:  "polynomial",
	KindRBF:         "rbf",
	KindSigmoid:     "sigmoid",
	KindPrecomputed: "precomputed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

type Kernel interface {
	Kind() Kind
	RequiresPrecomputation() bool
}

// Native kernels write their hyper-parameters into the solver parameters.
type Native interface {
	Kernel
	Configure(p *svm.Parameter)
}

// Custom kernels are evaluated sample by sample.
type Custom interface {
	Kernel
	Evaluate(xi, xj dataset.View) float64
}

type Linear struct{}

func (Linear) Kind() Kind                   { return KindLinear }
func (Linear) RequiresPrecomputation() bool { return false }

func (Linear) Configure(p *svm.Parameter) {
	p.KernelType = svm.KernelTypeLinear
}

// Polynomial is (gamma <x, y> + coef0)^degree.
type Polynomial struct {
	Degree int     `json:"degree" yaml:"degree"`
	Gamma  float64 `json:"gamma" yaml:"gamma"`
	Coef0  float64 `json:"coef0" yaml:"coef0"`
}

func NewPolynomial(degree int) Polynomial {
	return Polynomial{Degree: degree, Gamma: 1, Coef0: 0}
}

func (Polynomial) Kind() Kind                   { return KindPolynomial }
func (Polynomial) RequiresPrecomputation() bool { return false }

func (k Polynomial) Configure(p *svm.Parameter) {
	p.KernelType = svm.KernelTypePoly
	p.Degree = k.Degree
	p.Gamma = k.Gamma
	p.Coef0 = k.Coef0
}

// RBF is exp(-gamma |x - y|^2).
type RBF struct {
	Gamma float64 `json:"gamma" yaml:"gamma"`
}

func (RBF) Kind() Kind                   { return KindRBF }
func (RBF) RequiresPrecomputation() bool { return false }

func (k RBF) Configure(p *svm.Parameter) {
	p.KernelType = svm.KernelTypeRbf
	p.Gamma = k.Gamma
}

// Sigmoid is tanh(gamma <x, y> + coef0).
type Sigmoid struct {
	Gamma float64 `json:"gamma" yaml:"gamma"`
	Coef0 float64 `json:"coef0" yaml:"coef0"`
}

func (Sigmoid) Kind() Kind                   { return KindSigmoid }
func (Sigmoid) RequiresPrecomputation() bool { return false }

func (k Sigmoid) Configure(p *svm.Parameter) {
	p.KernelType = svm.KernelTypeSigmoid
	p.Gamma = k.Gamma
	p.Coef0 = k.Coef0
}

// LinearPrecomputed is the plain dot product, evaluated outside the solver.
type LinearPrecomputed struct{}

func (LinearPrecomputed) Kind() Kind                   { return KindPrecomputed }
func (LinearPrecomputed) RequiresPrecomputation() bool { return true }

func (LinearPrecomputed) Evaluate(xi, xj dataset.View) float64 {
	return dataset.Dot(xi, xj)
}

// Func adapts a plain function to Custom.
type Func struct {
	Name string
	F    func(xi, xj dataset.View) float64
}

func (Func) Kind() Kind                   { return KindPrecomputed }
func (Func) RequiresPrecomputation() bool { return true }

func (k Func) Evaluate(xi, xj dataset.View) float64 {
	return k.F(xi, xj)
}

// Configure writes the solver-facing kernel settings of k into p.
func Configure(k Kernel, p *svm.Parameter) {
	if n, ok := k.(Native); ok {
		n.Configure(p)
		return
	}
	p.KernelType = svm.KernelTypePrecomputed
}

// FromSolver reconstructs a native kernel from trained parameters.
// Precomputed kernels cannot be recovered and yield ErrKernelRequired.
func FromSolver(p svm.Parameter) (Kernel, error) {
	switch p.KernelType {
	case svm.KernelTypeLinear:
		return Linear{}, nil
	case svm.KernelTypePoly:
		return Polynomial{Degree: p.Degree, Gamma: p.Gamma, Coef0: p.Coef0}, nil
	case svm.KernelTypeRbf:
		return RBF{Gamma: p.Gamma}, nil
	case svm.KernelTypeSigmoid:
		return Sigmoid{Gamma: p.Gamma, Coef0: p.Coef0}, nil
	case svm.KernelTypePrecomputed:
		return nil, ErrKernelRequired
	}
	return nil, ErrUnknownKernel
}
