package svm

// CheckParameter returns a description of the first problem found with
// param for training on prob, or the empty string if training may proceed.
func CheckParameter(prob *Problem, param *Parameter) string {
	switch param.SvmType {
	case CSvc, NuSvc:
	case OneClass, EpsilonSvr, NuSvr:
		return "svm type not supported"
	default:
		return "unknown svm type"
	}

	switch param.KernelType {
	case KernelTypeLinear, KernelTypePoly, KernelTypeRbf, KernelTypeSigmoid, KernelTypePrecomputed:
	default:
		return "unknown kernel type"
	}

	if param.Gamma < 0 {
		return "gamma < 0"
	}
	if param.KernelType == KernelTypePoly && param.Degree < 0 {
		return "degree of polynomial kernel < 0"
	}
	if param.CacheSize <= 0 {
		return "cache_size <= 0"
	}
	if param.Eps <= 0 {
		return "eps <= 0"
	}
	if param.SvmType == CSvc && param.C <= 0 {
		return "C <= 0"
	}
	if param.SvmType == NuSvc && (param.Nu <= 0 || param.Nu > 1) {
		return "nu <= 0 or nu > 1"
	}
	if param.Shrinking != 0 && param.Shrinking != 1 {
		return "shrinking != 0 and shrinking != 1"
	}
	if param.Probability != 0 && param.Probability != 1 {
		return "probability != 0 and probability != 1"
	}
	if param.Probability == 1 {
		return "probability estimates not supported"
	}
	if param.NrWeight != len(param.WeightLabel) || param.NrWeight != len(param.Weight) {
		return "nr_weight does not match the weight arrays"
	}
	if len(prob.X) != prob.L || len(prob.Y) != prob.L {
		return "problem size does not match its arrays"
	}
	if prob.L == 0 {
		return "training set is empty"
	}

	if param.SvmType == NuSvc {
		nrClass, _, _, count, _ := groupClasses(prob)
		for i := 0; i < nrClass; i++ {
			n1 := count[i]
			for j := i + 1; j < nrClass; j++ {
				n2 := count[j]
				if param.Nu*float64(n1+n2)/2 > float64(minInt(n1, n2)) {
					return "specified nu is infeasible"
				}
			}
		}
	}

	return ""
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
