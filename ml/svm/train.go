package svm

import "math"

type decisionFunction struct {
	alpha []float64
	rho   float64
}

// Train solves every one-against-one subproblem of prob. The parameters
// must have passed CheckParameter.
func Train(prob *Problem, param *Parameter) *Model {
	model := &Model{Param: *param}
	l := prob.L

	nrClass, label, start, count, perm := groupClasses(prob)
	if nrClass == 1 {
		solverLogger.Warn().Msg("training data in only one class")
	}

	x := make([][]Node, l)
	for i := 0; i < l; i++ {
		x[i] = prob.X[perm[i]]
	}

	weightedC := make([]float64, nrClass)
	for i := range weightedC {
		weightedC[i] = param.C
	}
	for i := 0; i < param.NrWeight; i++ {
		j := 0
		for ; j < nrClass; j++ {
			if param.WeightLabel[i] == label[j] {
				break
			}
		}
		if j == nrClass {
			solverLogger.Warn().Int("label", param.WeightLabel[i]).Msg("class label specified in weight is not found")
			continue
		}
		weightedC[j] *= param.Weight[i]
	}

	nonzero := make([]bool, l)
	f := make([]decisionFunction, nrClass*(nrClass-1)/2)

	p := 0
	for i := 0; i < nrClass; i++ {
		for j := i + 1; j < nrClass; j++ {
			si, sj := start[i], start[j]
			ci, cj := count[i], count[j]

			sub := &Problem{
				L: ci + cj,
				X: make([][]Node, ci+cj),
				Y: make([]float64, ci+cj),
			}
			for k := 0; k < ci; k++ {
				sub.X[k] = x[si+k]
				sub.Y[k] = +1
			}
			for k := 0; k < cj; k++ {
				sub.X[ci+k] = x[sj+k]
				sub.Y[ci+k] = -1
			}

			f[p] = trainOne(sub, param, weightedC[i], weightedC[j])

			for k := 0; k < ci; k++ {
				if math.Abs(f[p].alpha[k]) > 0 {
					nonzero[si+k] = true
				}
			}
			for k := 0; k < cj; k++ {
				if math.Abs(f[p].alpha[ci+k]) > 0 {
					nonzero[sj+k] = true
				}
			}
			p++
		}
	}

	model.NrClass = nrClass
	model.Label = append([]int(nil), label...)
	model.Rho = make([]float64, len(f))
	for i := range f {
		model.Rho[i] = f[i].rho
	}

	total := 0
	model.NSV = make([]int, nrClass)
	for i := 0; i < nrClass; i++ {
		n := 0
		for j := 0; j < count[i]; j++ {
			if nonzero[start[i]+j] {
				n++
				total++
			}
		}
		model.NSV[i] = n
	}
	model.L = total

	model.SV = make([][]Node, 0, total)
	model.SvIndices = make([]int, 0, total)
	for i := 0; i < l; i++ {
		if nonzero[i] {
			model.SV = append(model.SV, x[i])
			model.SvIndices = append(model.SvIndices, perm[i]+1)
		}
	}

	nzStart := make([]int, nrClass)
	for i := 1; i < nrClass; i++ {
		nzStart[i] = nzStart[i-1] + model.NSV[i-1]
	}

	model.SvCoef = make([][]float64, nrClass-1)
	for i := range model.SvCoef {
		model.SvCoef[i] = make([]float64, total)
	}

	p = 0
	for i := 0; i < nrClass; i++ {
		for j := i + 1; j < nrClass; j++ {
			si, sj := start[i], start[j]
			ci, cj := count[i], count[j]

			q := nzStart[i]
			for k := 0; k < ci; k++ {
				if nonzero[si+k] {
					model.SvCoef[j-1][q] = f[p].alpha[k]
					q++
				}
			}
			q = nzStart[j]
			for k := 0; k < cj; k++ {
				if nonzero[sj+k] {
					model.SvCoef[i][q] = f[p].alpha[ci+k]
					q++
				}
			}
			p++
		}
	}

	solverLogger.Debug().Int("classes", nrClass).Int("nSV", total).Msg("training finished")
	return model
}

// groupClasses orders the samples by class. Classes are numbered in the
// order they are first seen, except that a binary -1/+1 problem always puts
// +1 first.
func groupClasses(prob *Problem) (int, []int, []int, []int, []int) {
	l := prob.L
	var label, count []int
	dataLabel := make([]int, l)

	for i := 0; i < l; i++ {
		thisLabel := int(prob.Y[i])
		j := 0
		for ; j < len(label); j++ {
			if thisLabel == label[j] {
				count[j]++
				break
			}
		}
		dataLabel[i] = j
		if j == len(label) {
			label = append(label, thisLabel)
			count = append(count, 1)
		}
	}

	nrClass := len(label)
	if nrClass == 2 && label[0] == -1 && label[1] == 1 {
		label[0], label[1] = label[1], label[0]
		count[0], count[1] = count[1], count[0]
		for i := range dataLabel {
			dataLabel[i] = 1 - dataLabel[i]
		}
	}

	start := make([]int, nrClass)
	for i := 1; i < nrClass; i++ {
		start[i] = start[i-1] + count[i-1]
	}

	perm := make([]int, l)
	for i := 0; i < l; i++ {
		perm[start[dataLabel[i]]] = i
		start[dataLabel[i]]++
	}

	if nrClass > 0 {
		start[0] = 0
	}
	for i := 1; i < nrClass; i++ {
		start[i] = start[i-1] + count[i-1]
	}

	return nrClass, label, start, count, perm
}

func trainOne(prob *Problem, param *Parameter, cp, cn float64) decisionFunction {
	alpha := make([]float64, prob.L)
	var si solutionInfo

	switch param.SvmType {
	case CSvc:
		si = solveCSVC(prob, param, alpha, cp, cn)
	case NuSvc:
		si = solveNuSVC(prob, param, alpha)
	}

	nSV, nBSV := 0, 0
	for i := 0; i < prob.L; i++ {
		if math.Abs(alpha[i]) > 0 {
			nSV++
			if prob.Y[i] > 0 {
				if math.Abs(alpha[i]) >= si.upperBoundP {
					nBSV++
				}
			} else if math.Abs(alpha[i]) >= si.upperBoundN {
				nBSV++
			}
		}
	}
	solverLogger.Debug().Int("nSV", nSV).Int("nBSV", nBSV).Msg("subproblem solved")

	return decisionFunction{alpha: alpha, rho: si.rho}
}

func solveCSVC(prob *Problem, param *Parameter, alpha []float64, cp, cn float64) solutionInfo {
	l := prob.L
	minusOnes := make([]float64, l)
	y := make([]int8, l)

	for i := 0; i < l; i++ {
		alpha[i] = 0
		minusOnes[i] = -1
		if prob.Y[i] > 0 {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}

	var s solver
	si := s.solve(l, newSVCQ(prob, param, y), minusOnes, y, alpha, cp, cn, param.Eps)

	for i := 0; i < l; i++ {
		alpha[i] *= float64(y[i])
	}
	return si
}

func solveNuSVC(prob *Problem, param *Parameter, alpha []float64) solutionInfo {
	l := prob.L
	y := make([]int8, l)
	for i := 0; i < l; i++ {
		if prob.Y[i] > 0 {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}

	sumPos := param.Nu * float64(l) / 2
	sumNeg := param.Nu * float64(l) / 2
	for i := 0; i < l; i++ {
		if y[i] == 1 {
			alpha[i] = math.Min(1, sumPos)
			sumPos -= alpha[i]
		} else {
			alpha[i] = math.Min(1, sumNeg)
			sumNeg -= alpha[i]
		}
	}

	zeros := make([]float64, l)
	s := solver{nu: true}
	si := s.solve(l, newSVCQ(prob, param, y), zeros, y, alpha, 1, 1, param.Eps)

	r := si.r
	for i := 0; i < l; i++ {
		alpha[i] *= float64(y[i]) / r
	}
	si.rho /= r
	si.obj /= r * r
	si.upperBoundP = 1 / r
	si.upperBoundN = 1 / r
	return si
}
