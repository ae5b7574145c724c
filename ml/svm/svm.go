package svm

import "github.com/jgreitemann/svm/logger"

var solverLogger = logger.NewLogger("SVM solver")

// Predict returns the label winning the one-against-one vote for x.
func Predict(model Model, x []Node) int {
	decValues := make([]float64, model.NrClassifiers())
	return PredictValues(model, x, decValues)
}

// PredictValues fills decValues with the pairwise decision values of x in
// solver order and returns the winning label. Ties go to the class that
// appears first in model.Label.
func PredictValues(model Model, x []Node, decValues []float64) int {
	nrClass := model.NrClass
	l := model.L

	kvalue := make([]float64, l)
	for i := 0; i < l; i++ {
		kvalue[i] = KFunction(x, model.SV[i], model.Param)
	}

	start := make([]int, nrClass)
	start[0] = 0

	for i := 1; i < nrClass; i++ {
		start[i] = start[i-1] + model.NSV[i-1]
	}

	vote := make([]int, nrClass)
	p := 0

	for i := 0; i < nrClass; i++ {
		for j := i + 1; j < nrClass; j++ {
			sum := 0.0
			si, sj := start[i], start[j]
			ci, cj := model.NSV[i], model.NSV[j]
			coef1, coef2 := model.SvCoef[j-1], model.SvCoef[i]

			for k := 0; k < ci; k++ {
				sum += coef1[si+k] * kvalue[si+k]
			}

			for k := 0; k < cj; k++ {
				sum += coef2[sj+k] * kvalue[sj+k]
			}

			sum -= model.Rho[p]
			decValues[p] = sum
			if decValues[p] > 0.0 {
				vote[i]++
			} else {
				vote[j]++
			}

			p++
		}
	}

	j := 0

	for i := 1; i < nrClass; i++ {
		if vote[i] > vote[j] {
			j = i
		}
	}

	return model.Label[j]
}
