package kernel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/ml/svm"
)

func TestConfigure(t *testing.T) {
	tests := []struct {
		name   string
		kernel Kernel
		want   svm.Parameter
	}{
		{"linear", Linear{}, svm.Parameter{KernelType: svm.KernelTypeLinear}},
		{"poly", Polynomial{Degree: 3, Gamma: 0.5, Coef0: 2}, svm.Parameter{KernelType: svm.KernelTypePoly, Degree: 3, Gamma: 0.5, Coef0: 2}},
		{"rbf", RBF{Gamma: 4}, svm.Parameter{KernelType: svm.KernelTypeRbf, Gamma: 4}},
		{"sigmoid", Sigmoid{Gamma: 1, Coef0: -1}, svm.Parameter{KernelType: svm.KernelTypeSigmoid, Gamma: 1, Coef0: -1}},
		{"precomputed", LinearPrecomputed{}, svm.Parameter{KernelType: svm.KernelTypePrecomputed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p svm.Parameter
			Configure(tt.kernel, &p)
			require.Equal(t, tt.want, p)
			require.Equal(t, tt.name == "precomputed", tt.kernel.RequiresPrecomputation())

			if !tt.kernel.RequiresPrecomputation() {
				back, err := FromSolver(p)
				require.NoError(t, err)
				require.Equal(t, tt.kernel, back)
			}

			restored, err := Describe(tt.kernel).Kernel()
			require.NoError(t, err)
			require.Equal(t, tt.kernel, restored)
		})
	}
}

func TestPolynomialDefaults(t *testing.T) {
	require.Equal(t, Polynomial{Degree: 2, Gamma: 1, Coef0: 0}, NewPolynomial(2))
}

func TestCustom(t *testing.T) {
	x := dataset.New([]float64{1, 2, 3}).View()
	y := dataset.New([]float64{0, 1, 1}).View()
	require.Equal(t, 5.0, LinearPrecomputed{}.Evaluate(x, y))

	sq := Func{Name: "squared", F: func(xi, xj dataset.View) float64 {
		d := dataset.Dot(xi, xj)
		return d * d
	}}
	require.Equal(t, 25.0, sq.Evaluate(x, y))
	require.Equal(t, KindPrecomputed, sq.Kind())

	_, err := Describe(sq).Kernel()
	require.True(t, errors.Is(err, ErrKernelRequired))

	_, err = FromSolver(svm.Parameter{KernelType: svm.KernelTypePrecomputed})
	require.True(t, errors.Is(err, ErrKernelRequired))

	_, err = FromSolver(svm.Parameter{KernelType: 42})
	require.True(t, errors.Is(err, ErrUnknownKernel))

	_, err = Description{Kind: "fourier"}.Kernel()
	require.True(t, errors.Is(err, ErrUnknownKernel))
}
