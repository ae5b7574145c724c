package svm

type qMatrix interface {
	getQ(i, length int) []float32
	getQD() []float64
}

// svcQ is Q_ij = y_i y_j K(x_i, x_j) for the two-class subproblem.
type svcQ struct {
	kernel *kernel
	y      []int8
	cache  *columnCache
	qd     []float64
}

func newSVCQ(prob *Problem, param *Parameter, y []int8) *svcQ {
	q := &svcQ{
		kernel: newKernel(prob.X, param),
		y:      y,
		cache:  newColumnCache(prob.L, int64(param.CacheSize*(1<<20))),
		qd:     make([]float64, prob.L),
	}
	for i := 0; i < prob.L; i++ {
		q.qd[i] = q.kernel.eval(i, i)
	}
	return q
}

func (q *svcQ) getQ(i, length int) []float32 {
	if data, ok := q.cache.get(i); ok && len(data) >= length {
		return data
	}
	data := make([]float32, length)
	for j := 0; j < length; j++ {
		data[j] = float32(float64(q.y[i]*q.y[j]) * q.kernel.eval(i, j))
	}
	q.cache.put(i, data)
	return data
}

func (q *svcQ) getQD() []float64 {
	return q.qd
}
