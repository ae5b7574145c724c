package kernel

import "fmt"

// Description is the serializable form of a kernel.
type Description struct {
	Kind   string  `json:"kind" yaml:"kind"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Degree int     `json:"degree,omitempty" yaml:"degree,omitempty"`
	Gamma  float64 `json:"gamma,omitempty" yaml:"gamma,omitempty"`
	Coef0  float64 `json:"coef0,omitempty" yaml:"coef0,omitempty"`
}

const linearPrecomputedName = "linear_precomputed"

func Describe(k Kernel) Description {
	switch k := k.(type) {
	case Linear:
		return Description{Kind: KindLinear.String()}
	case Polynomial:
		return Description{Kind: KindPolynomial.String(), Degree: k.Degree, Gamma: k.Gamma, Coef0: k.Coef0}
	case RBF:
		return Description{Kind: KindRBF.String(), Gamma: k.Gamma}
	case Sigmoid:
		return Description{Kind: KindSigmoid.String(), Gamma: k.Gamma, Coef0: k.Coef0}
	case LinearPrecomputed:
		return Description{Kind: KindPrecomputed.String(), Name: linearPrecomputedName}
	case Func:
		return Description{Kind: KindPrecomputed.String(), Name: k.Name}
	}
	return Description{Kind: k.Kind().String()}
}

// Kernel rebuilds the described kernel. Custom kernels other than
// LinearPrecomputed need to be supplied by the caller.
func (d Description) Kernel() (Kernel, error) {
	switch d.Kind {
	case KindLinear.String():
		return Linear{}, nil
	case KindPolynomial.String():
		return Polynomial{Degree: d.Degree, Gamma: d.Gamma, Coef0: d.Coef0}, nil
	case KindRBF.String():
		return RBF{Gamma: d.Gamma}, nil
	case KindSigmoid.String():
		return Sigmoid{Gamma: d.Gamma, Coef0: d.Coef0}, nil
	case KindPrecomputed.String():
		if d.Name == linearPrecomputedName {
			return LinearPrecomputed{}, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrKernelRequired, d.Name)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKernel, d.Kind)
}
