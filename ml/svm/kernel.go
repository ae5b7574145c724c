package svm

import "math"

func KFunction(x []Node, y []Node, param Parameter) float64 {
	switch param.KernelType {
	case KernelTypeLinear:
		return dot(x, y)
	case KernelTypePoly:
		return powi(param.Gamma*dot(x, y)+param.Coef0, param.Degree)
	case KernelTypeRbf:
		return math.Exp(-param.Gamma * squaredDistance(x, y))
	case KernelTypeSigmoid:
		return math.Tanh(param.Gamma*dot(x, y) + param.Coef0)
	case KernelTypePrecomputed:
		return x[int(y[0].Value)].Value
	default:
		return 0.0
	}
}

// kernel evaluates K(x_i, x_j) over a fixed sample set.
type kernel struct {
	x          [][]Node
	xSquare    []float64
	kernelType int
	degree     int
	gamma      float64
	coef0      float64
}

func newKernel(x [][]Node, param *Parameter) *kernel {
	k := &kernel{
		x:          x,
		kernelType: param.KernelType,
		degree:     param.Degree,
		gamma:      param.Gamma,
		coef0:      param.Coef0,
	}
	if k.kernelType == KernelTypeRbf {
		k.xSquare = make([]float64, len(x))
		for i := range x {
			k.xSquare[i] = dot(x[i], x[i])
		}
	}
	return k
}

func (k *kernel) eval(i, j int) float64 {
	switch k.kernelType {
	case KernelTypeLinear:
		return dot(k.x[i], k.x[j])
	case KernelTypePoly:
		return powi(k.gamma*dot(k.x[i], k.x[j])+k.coef0, k.degree)
	case KernelTypeRbf:
		return math.Exp(-k.gamma * (k.xSquare[i] + k.xSquare[j] - 2*dot(k.x[i], k.x[j])))
	case KernelTypeSigmoid:
		return math.Tanh(k.gamma*dot(k.x[i], k.x[j]) + k.coef0)
	case KernelTypePrecomputed:
		return k.x[i][int(k.x[j][0].Value)].Value
	}
	return 0
}

// dot merges both vectors by stored index. Terminating nodes carry a zero
// value and never contribute.
func dot(x []Node, y []Node) float64 {
	sum := 0.0
	xLen := len(x)
	yLen := len(y)
	i, j := 0, 0

	for i < xLen && j < yLen {
		switch {
		case x[i].Index == y[j].Index:
			{
				sum += x[i].Value * y[j].Value
				i++
				j++
			}
		case x[i].Index > y[j].Index:
			{
				j++
			}
		default:
			{
				i++
			}
		}
	}

	return sum
}

func squaredDistance(x []Node, y []Node) float64 {
	sum := 0.0
	xLen := len(x)
	yLen := len(y)
	i, j := 0, 0

	for i < xLen && j < yLen {
		switch {
		case x[i].Index == y[j].Index:
			{
				d := x[i].Value - y[j].Value
				sum += d * d
				i++
				j++
			}
		case x[i].Index > y[j].Index:
			{
				sum += y[j].Value * y[j].Value
				j++
			}
		default:
			{
				sum += x[i].Value * x[i].Value
				i++
			}
		}
	}

	for i < xLen {
		sum += x[i].Value * x[i].Value
		i++
	}

	for j < yLen {
		sum += y[j].Value * y[j].Value
		j++
	}

	return sum
}

func powi(base float64, times int) float64 {
	tmp := base
	ret := 1.0

	for t := times; t > 0; t /= 2 {
		if t%2 == 1 {
			ret *= tmp
		}

		tmp *= tmp
	}

	return ret
}
