package svm

import "math"

const (
	lowerBound int8 = iota
	upperBound
	free
)

const tau = 1e-12

var inf = math.Inf(1)

type solutionInfo struct {
	obj         float64
	rho         float64
	upperBoundP float64
	upperBoundN float64
	r           float64
}

// solver is the SMO decomposition method with second order working set
// selection. With nu set, positive and negative multipliers are balanced
// separately and the offset r is reported alongside rho.
type solver struct {
	l           int
	y           []int8
	g           []float64
	alphaStatus []int8
	alpha       []float64
	q           qMatrix
	qd          []float64
	eps         float64
	cp          float64
	cn          float64
	p           []float64
	nu          bool
}

func (s *solver) getC(i int) float64 {
	if s.y[i] > 0 {
		return s.cp
	}
	return s.cn
}

func (s *solver) updateAlphaStatus(i int) {
	switch {
	case s.alpha[i] >= s.getC(i):
		s.alphaStatus[i] = upperBound
	case s.alpha[i] <= 0:
		s.alphaStatus[i] = lowerBound
	default:
		s.alphaStatus[i] = free
	}
}

func (s *solver) isUpperBound(i int) bool { return s.alphaStatus[i] == upperBound }
func (s *solver) isLowerBound(i int) bool { return s.alphaStatus[i] == lowerBound }

func (s *solver) solve(l int, q qMatrix, p []float64, y []int8, alpha []float64, cp, cn, eps float64) solutionInfo {
	s.l = l
	s.q = q
	s.qd = q.getQD()
	s.p = p
	s.y = y
	s.alpha = append([]float64(nil), alpha...)
	s.cp = cp
	s.cn = cn
	s.eps = eps

	s.alphaStatus = make([]int8, l)
	for i := 0; i < l; i++ {
		s.updateAlphaStatus(i)
	}

	s.g = make([]float64, l)
	copy(s.g, s.p)
	for i := 0; i < l; i++ {
		if !s.isLowerBound(i) {
			qi := q.getQ(i, l)
			ai := s.alpha[i]
			for j := 0; j < l; j++ {
				s.g[j] += ai * float64(qi[j])
			}
		}
	}

	maxIter := 10000000
	if 100*l > maxIter {
		maxIter = 100 * l
	}

	iter := 0
	for iter < maxIter {
		var i, j int
		var optimal bool
		if s.nu {
			i, j, optimal = s.selectWorkingSetNu()
		} else {
			i, j, optimal = s.selectWorkingSet()
		}
		if optimal {
			break
		}
		iter++

		qi := q.getQ(i, l)
		qj := q.getQ(j, l)
		ci := s.getC(i)
		cj := s.getC(j)
		oldAi := s.alpha[i]
		oldAj := s.alpha[j]

		if s.y[i] != s.y[j] {
			quadCoef := s.qd[i] + s.qd[j] + 2*float64(qi[j])
			if quadCoef <= 0 {
				quadCoef = tau
			}
			delta := (-s.g[i] - s.g[j]) / quadCoef
			diff := s.alpha[i] - s.alpha[j]
			s.alpha[i] += delta
			s.alpha[j] += delta

			if diff > 0 {
				if s.alpha[j] < 0 {
					s.alpha[j] = 0
					s.alpha[i] = diff
				}
			} else if s.alpha[i] < 0 {
				s.alpha[i] = 0
				s.alpha[j] = -diff
			}
			if diff > ci-cj {
				if s.alpha[i] > ci {
					s.alpha[i] = ci
					s.alpha[j] = ci - diff
				}
			} else if s.alpha[j] > cj {
				s.alpha[j] = cj
				s.alpha[i] = cj + diff
			}
		} else {
			quadCoef := s.qd[i] + s.qd[j] - 2*float64(qi[j])
			if quadCoef <= 0 {
				quadCoef = tau
			}
			delta := (s.g[i] - s.g[j]) / quadCoef
			sum := s.alpha[i] + s.alpha[j]
			s.alpha[i] -= delta
			s.alpha[j] += delta

			if sum > ci {
				if s.alpha[i] > ci {
					s.alpha[i] = ci
					s.alpha[j] = sum - ci
				}
			} else if s.alpha[j] < 0 {
				s.alpha[j] = 0
				s.alpha[i] = sum
			}
			if sum > cj {
				if s.alpha[j] > cj {
					s.alpha[j] = cj
					s.alpha[i] = sum - cj
				}
			} else if s.alpha[i] < 0 {
				s.alpha[i] = 0
				s.alpha[j] = sum
			}
		}

		deltaAi := s.alpha[i] - oldAi
		deltaAj := s.alpha[j] - oldAj
		for k := 0; k < l; k++ {
			s.g[k] += float64(qi[k])*deltaAi + float64(qj[k])*deltaAj
		}
		s.updateAlphaStatus(i)
		s.updateAlphaStatus(j)
	}

	if iter >= maxIter {
		solverLogger.Warn().Int("iterations", iter).Msg("reached max number of iterations")
	}

	var si solutionInfo
	if s.nu {
		si.rho, si.r = s.calculateRhoNu()
	} else {
		si.rho = s.calculateRho()
	}

	v := 0.0
	for i := 0; i < l; i++ {
		v += s.alpha[i] * (s.g[i] + s.p[i])
	}
	si.obj = v / 2
	si.upperBoundP = cp
	si.upperBoundN = cn
	copy(alpha, s.alpha)

	solverLogger.Debug().Int("iterations", iter).Float64("obj", si.obj).Float64("rho", si.rho).Msg("optimization finished")
	return si
}

func objectiveDiff(gradDiff, quadCoef float64) float64 {
	if quadCoef > 0 {
		return -(gradDiff * gradDiff) / quadCoef
	}
	return -(gradDiff * gradDiff) / tau
}

func (s *solver) selectWorkingSet() (int, int, bool) {
	gmax := -inf
	gmax2 := -inf
	gmaxIdx := -1
	gminIdx := -1
	objDiffMin := inf

	for t := 0; t < s.l; t++ {
		if s.y[t] == 1 {
			if !s.isUpperBound(t) && -s.g[t] >= gmax {
				gmax = -s.g[t]
				gmaxIdx = t
			}
		} else if !s.isLowerBound(t) && s.g[t] >= gmax {
			gmax = s.g[t]
			gmaxIdx = t
		}
	}

	i := gmaxIdx
	var qi []float32
	if i != -1 {
		qi = s.q.getQ(i, s.l)
	}

	for j := 0; j < s.l; j++ {
		if s.y[j] == 1 {
			if !s.isLowerBound(j) {
				gradDiff := gmax + s.g[j]
				if s.g[j] >= gmax2 {
					gmax2 = s.g[j]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[i] + s.qd[j] - 2*float64(s.y[i])*float64(qi[j])
					if objDiff := objectiveDiff(gradDiff, quadCoef); objDiff <= objDiffMin {
						gminIdx = j
						objDiffMin = objDiff
					}
				}
			}
		} else if !s.isUpperBound(j) {
			gradDiff := gmax - s.g[j]
			if -s.g[j] >= gmax2 {
				gmax2 = -s.g[j]
			}
			if gradDiff > 0 {
				quadCoef := s.qd[i] + s.qd[j] + 2*float64(s.y[i])*float64(qi[j])
				if objDiff := objectiveDiff(gradDiff, quadCoef); objDiff <= objDiffMin {
					gminIdx = j
					objDiffMin = objDiff
				}
			}
		}
	}

	if gmax+gmax2 < s.eps || gminIdx == -1 {
		return 0, 0, true
	}
	return gmaxIdx, gminIdx, false
}

func (s *solver) selectWorkingSetNu() (int, int, bool) {
	gmaxp := -inf
	gmaxp2 := -inf
	gmaxpIdx := -1
	gmaxn := -inf
	gmaxn2 := -inf
	gmaxnIdx := -1
	gminIdx := -1
	objDiffMin := inf

	for t := 0; t < s.l; t++ {
		if s.y[t] == 1 {
			if !s.isUpperBound(t) && -s.g[t] >= gmaxp {
				gmaxp = -s.g[t]
				gmaxpIdx = t
			}
		} else if !s.isLowerBound(t) && s.g[t] >= gmaxn {
			gmaxn = s.g[t]
			gmaxnIdx = t
		}
	}

	ip := gmaxpIdx
	in := gmaxnIdx
	var qip, qin []float32
	if ip != -1 {
		qip = s.q.getQ(ip, s.l)
	}
	if in != -1 {
		qin = s.q.getQ(in, s.l)
	}

	for j := 0; j < s.l; j++ {
		if s.y[j] == 1 {
			if !s.isLowerBound(j) {
				gradDiff := gmaxp + s.g[j]
				if s.g[j] >= gmaxp2 {
					gmaxp2 = s.g[j]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[ip] + s.qd[j] - 2*float64(qip[j])
					if objDiff := objectiveDiff(gradDiff, quadCoef); objDiff <= objDiffMin {
						gminIdx = j
						objDiffMin = objDiff
					}
				}
			}
		} else if !s.isUpperBound(j) {
			gradDiff := gmaxn - s.g[j]
			if -s.g[j] >= gmaxn2 {
				gmaxn2 = -s.g[j]
			}
			if gradDiff > 0 {
				quadCoef := s.qd[in] + s.qd[j] - 2*float64(qin[j])
				if objDiff := objectiveDiff(gradDiff, quadCoef); objDiff <= objDiffMin {
					gminIdx = j
					objDiffMin = objDiff
				}
			}
		}
	}

	if math.Max(gmaxp+gmaxp2, gmaxn+gmaxn2) < s.eps || gminIdx == -1 {
		return 0, 0, true
	}
	if s.y[gminIdx] == 1 {
		return gmaxpIdx, gminIdx, false
	}
	return gmaxnIdx, gminIdx, false
}

func (s *solver) calculateRho() float64 {
	nrFree := 0
	ub := inf
	lb := -inf
	sumFree := 0.0

	for i := 0; i < s.l; i++ {
		yG := float64(s.y[i]) * s.g[i]
		switch {
		case s.isUpperBound(i):
			if s.y[i] == -1 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		case s.isLowerBound(i):
			if s.y[i] == 1 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		default:
			nrFree++
			sumFree += yG
		}
	}

	if nrFree > 0 {
		return sumFree / float64(nrFree)
	}
	return (ub + lb) / 2
}

// calculateRhoNu returns rho together with the scale r.
func (s *solver) calculateRhoNu() (float64, float64) {
	nrFree1, nrFree2 := 0, 0
	ub1, ub2 := inf, inf
	lb1, lb2 := -inf, -inf
	sumFree1, sumFree2 := 0.0, 0.0

	for i := 0; i < s.l; i++ {
		if s.y[i] == 1 {
			switch {
			case s.isUpperBound(i):
				lb1 = math.Max(lb1, s.g[i])
			case s.isLowerBound(i):
				ub1 = math.Min(ub1, s.g[i])
			default:
				nrFree1++
				sumFree1 += s.g[i]
			}
		} else {
			switch {
			case s.isUpperBound(i):
				lb2 = math.Max(lb2, s.g[i])
			case s.isLowerBound(i):
				ub2 = math.Min(ub2, s.g[i])
			default:
				nrFree2++
				sumFree2 += s.g[i]
			}
		}
	}

	r1 := (ub1 + lb1) / 2
	if nrFree1 > 0 {
		r1 = sumFree1 / float64(nrFree1)
	}
	r2 := (ub2 + lb2) / 2
	if nrFree2 > 0 {
		r2 = sumFree2 / float64(nrFree2)
	}

	return (r1 - r2) / 2, (r1 + r2) / 2
}
