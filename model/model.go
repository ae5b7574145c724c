// Package model wraps a trained solver record as a label-indexed multi-class
// model. Labels and pairwise classifiers are presented in ascending label
// order regardless of the order the solver met the classes in.
package model

import (
	"fmt"
	"math"

	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/label"
	"github.com/jgreitemann/svm/logger"
	"github.com/jgreitemann/svm/ml/svm"
	"github.com/jgreitemann/svm/params"
	"github.com/jgreitemann/svm/problem"
	"github.com/jgreitemann/svm/utils"
)

// Model owns a trained record and the problem it was trained on. Queries
// are safe for concurrent use; Close is not.
type Model[L comparable] struct {
	prob   *problem.Problem[L]
	input  problem.Input
	kernel kernel.Kernel
	params params.Parameters
	record *svm.Model
	// labels in solver order
	labels []L
	perm   permutation
}

// Train fits a model to prob. The model takes ownership of prob, which must
// not be modified afterwards.
func Train[L comparable](prob *problem.Problem[L], k kernel.Kernel, p params.Parameters) (*Model[L], error) {
	trainLogger := logger.NewLogger("Model training")

	sp, err := p.Solver(k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	input, err := problem.NewInput(prob, k)
	if err != nil {
		return nil, err
	}
	svmProb := input.Generate()
	if msg := svm.CheckParameter(&svmProb, &sp); msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParameters, msg)
	}

	record, err := solve(&svmProb, &sp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTrainingFailed, err)
	}

	m, err := newModel(prob, input, k, p, record)
	if err != nil {
		svm.FreeModel(record)
		return nil, err
	}
	trainLogger.Info().
		Int("samples", prob.Size()).
		Int("classes", record.NrClass).
		Int("support_vectors", record.L).
		Str("kernel", k.Kind().String()).
		Msg("model trained")
	return m, nil
}

func solve(prob *svm.Problem, sp *svm.Parameter) (record *svm.Model, err error) {
	defer utils.RecoverWithError(&err)
	record = svm.Train(prob, sp)
	return record, nil
}

// Restore rebuilds a model from a problem, its parameters and the raw arrays
// of a record trained on it. The record is copied.
func Restore[L comparable](prob *problem.Problem[L], k kernel.Kernel, p params.Parameters, rec svm.Model) (*Model[L], error) {
	sp, err := p.Solver(k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	if sp.KernelType != rec.Param.KernelType || sp.SvmType != rec.Param.SvmType {
		return nil, fmt.Errorf("%w: record trained with different kernel or machine", ErrCorruptRecord)
	}
	if err := validateRecord(&rec, prob.Size(), k.RequiresPrecomputation()); err != nil {
		return nil, err
	}
	input, err := problem.NewInput(prob, k)
	if err != nil {
		return nil, err
	}
	record := copyRecord(&rec)
	record.Param = sp
	return newModel(prob, input, k, p, record)
}

func newModel[L comparable](prob *problem.Problem[L], input problem.Input, k kernel.Kernel, p params.Parameters, record *svm.Model) (*Model[L], error) {
	space := prob.Space()
	if space.Kind() == label.Fixed && record.NrClass != space.NrLabels() {
		return nil, fmt.Errorf("%w: solver found %d, label type has %d", ErrLabelCountMismatch, record.NrClass, space.NrLabels())
	}
	for _, r := range record.Rho {
		if math.IsNaN(r) {
			return nil, ErrNumericalInstability
		}
	}

	labels := make([]L, record.NrClass)
	for i, v := range record.Label {
		l, err := space.Decode(float64(v))
		if err != nil {
			return nil, err
		}
		labels[i] = l
	}

	return &Model[L]{
		prob:   prob,
		input:  input,
		kernel: k,
		params: p,
		record: record,
		labels: labels,
		perm:   newPermutation(record.Label),
	}, nil
}

func validateRecord(rec *svm.Model, samples int, precomputed bool) error {
	n := rec.NrClass
	if n < 1 || len(rec.Label) != n || len(rec.NSV) != n {
		return fmt.Errorf("%w: %d classes with %d labels and %d counts", ErrCorruptRecord, n, len(rec.Label), len(rec.NSV))
	}
	total := 0
	for _, c := range rec.NSV {
		if c < 0 {
			return fmt.Errorf("%w: negative support vector count", ErrCorruptRecord)
		}
		total += c
	}
	if total != rec.L || len(rec.SV) != rec.L {
		return fmt.Errorf("%w: %d support vectors, counts sum to %d", ErrCorruptRecord, len(rec.SV), total)
	}
	if len(rec.SvCoef) != n-1 {
		return fmt.Errorf("%w: %d coefficient rows for %d classes", ErrCorruptRecord, len(rec.SvCoef), n)
	}
	for _, row := range rec.SvCoef {
		if len(row) != rec.L {
			return fmt.Errorf("%w: coefficient row of length %d", ErrCorruptRecord, len(row))
		}
	}
	if len(rec.Rho) != n*(n-1)/2 {
		return fmt.Errorf("%w: %d thresholds for %d classes", ErrCorruptRecord, len(rec.Rho), n)
	}
	seen := make(map[int]bool, n)
	for _, l := range rec.Label {
		if seen[l] {
			return fmt.Errorf("%w: duplicate label %d", ErrCorruptRecord, l)
		}
		seen[l] = true
	}
	if precomputed {
		for _, sv := range rec.SV {
			if len(sv) == 0 || sv[0].Index != 0 {
				return fmt.Errorf("%w: precomputed support vector without ordinal", ErrCorruptRecord)
			}
			if o := int(sv[0].Value); o < 1 || o > samples {
				return fmt.Errorf("%w: ordinal %d outside training set of %d", ErrCorruptRecord, o, samples)
			}
		}
	}
	return nil
}

func copyRecord(rec *svm.Model) *svm.Model {
	out := *rec
	out.SV = make([][]svm.Node, len(rec.SV))
	for i, sv := range rec.SV {
		out.SV[i] = append([]svm.Node(nil), sv...)
		if n := len(out.SV[i]); n == 0 || out.SV[i][n-1].Index != svm.EndIndex {
			out.SV[i] = append(out.SV[i], svm.End())
		}
	}
	out.SvCoef = make([][]float64, len(rec.SvCoef))
	for i, row := range rec.SvCoef {
		out.SvCoef[i] = append([]float64(nil), row...)
	}
	out.Rho = append([]float64(nil), rec.Rho...)
	out.ProbA = append([]float64(nil), rec.ProbA...)
	out.ProbB = append([]float64(nil), rec.ProbB...)
	out.SvIndices = append([]int(nil), rec.SvIndices...)
	out.Label = append([]int(nil), rec.Label...)
	out.NSV = append([]int(nil), rec.NSV...)
	out.Param.WeightLabel = append([]int(nil), rec.Param.WeightLabel...)
	out.Param.Weight = append([]float64(nil), rec.Param.Weight...)
	return &out
}

// Close releases the trained record. Further queries fail with
// ErrEmptyModel.
func (m *Model[L]) Close() {
	if m.record == nil {
		return
	}
	svm.FreeModel(m.record)
	m.record = nil
	m.labels = nil
}

func (m *Model[L]) Empty() bool {
	return m.record == nil
}

// NrLabels is the number of classes, or zero for an empty model.
func (m *Model[L]) NrLabels() int {
	if m.record == nil {
		return 0
	}
	if space := m.prob.Space(); space.Kind() == label.Fixed {
		return space.NrLabels()
	}
	return m.record.NrClass
}

func (m *Model[L]) NrClassifiers() int {
	n := m.NrLabels()
	return n * (n - 1) / 2
}

// Labels returns the classes in ascending order.
func (m *Model[L]) Labels() []L {
	if m.record == nil {
		return nil
	}
	out := make([]L, len(m.labels))
	for r, k := range m.perm.rankToSolver {
		out[r] = m.labels[k]
	}
	return out
}

// Classifiers returns one classifier per label pair, ordered as (0,1),
// (0,2), ..., (1,2), ... by label rank.
func (m *Model[L]) Classifiers() []Classifier[L] {
	if m.record == nil {
		return nil
	}
	n := m.NrLabels()
	out := make([]Classifier[L], 0, m.NrClassifiers())
	for r1 := 0; r1 < n-1; r1++ {
		for r2 := r1 + 1; r2 < n; r2++ {
			out = append(out, newClassifier(m, m.perm.rankToSolver[r1], m.perm.rankToSolver[r2]))
		}
	}
	return out
}

// Classifier returns the pairwise classifier deciding between a and b.
// Positive decision values favour a.
func (m *Model[L]) Classifier(a, b L) (Classifier[L], error) {
	if m.record == nil {
		return Classifier[L]{}, ErrEmptyModel
	}
	ka, kb := m.solverIndex(a), m.solverIndex(b)
	if ka < 0 || kb < 0 {
		return Classifier[L]{}, fmt.Errorf("%w: (%v, %v)", ErrUnknownLabel, a, b)
	}
	if ka == kb {
		return Classifier[L]{}, fmt.Errorf("%w: no classifier between %v and itself", ErrUnknownLabel, a)
	}
	return newClassifier(m, ka, kb), nil
}

// BinaryClassifier returns the only classifier of a two-class model, with
// labels in ascending order.
func (m *Model[L]) BinaryClassifier() (Classifier[L], error) {
	if m.record == nil {
		return Classifier[L]{}, ErrEmptyModel
	}
	if m.NrLabels() != 2 {
		return Classifier[L]{}, fmt.Errorf("%w: %d classes in binary use", ErrLabelCountMismatch, m.NrLabels())
	}
	return newClassifier(m, m.perm.rankToSolver[0], m.perm.rankToSolver[1]), nil
}

func (m *Model[L]) solverIndex(l L) int {
	for k, v := range m.labels {
		if v == l {
			return k
		}
	}
	return -1
}

// RawEvaluate predicts x and returns the decision values in solver order.
func (m *Model[L]) RawEvaluate(x dataset.View) (L, []float64, error) {
	var zero L
	if m.record == nil {
		return zero, nil, ErrEmptyModel
	}
	if x.Len() > m.prob.Dim() {
		return zero, nil, fmt.Errorf("%w: query of length %d for model of dimension %d", problem.ErrDimensionMismatch, x.Len(), m.prob.Dim())
	}
	dec := make([]float64, m.record.NrClassifiers())
	predicted := svm.PredictValues(*m.record, m.input.Prepare(x), dec)
	for k, v := range m.record.Label {
		if v == predicted {
			return m.labels[k], dec, nil
		}
	}
	return zero, nil, fmt.Errorf("%w: solver predicted %d", ErrUnknownLabel, predicted)
}

// Evaluate predicts x and returns one decision value per classifier, in the
// order of Classifiers.
func (m *Model[L]) Evaluate(x dataset.View) (L, []float64, error) {
	l, dec, err := m.RawEvaluate(x)
	if err != nil {
		return l, nil, err
	}
	m.perm.apply(dec)
	return l, dec, nil
}

// Thresholds returns rho per classifier, in the order of Classifiers.
func (m *Model[L]) Thresholds() []float64 {
	if m.record == nil {
		return nil
	}
	rho := append([]float64(nil), m.record.Rho...)
	m.perm.apply(rho)
	return rho
}

// SupportVectorCounts returns the number of support vectors per class, in
// the order of Labels.
func (m *Model[L]) SupportVectorCounts() []int {
	if m.record == nil {
		return nil
	}
	out := make([]int, len(m.perm.rankToSolver))
	for r, k := range m.perm.rankToSolver {
		out[r] = m.record.NSV[k]
	}
	return out
}

func (m *Model[L]) Dim() int {
	return m.prob.Dim()
}

func (m *Model[L]) Parameters() params.Parameters {
	return m.params
}

func (m *Model[L]) Kernel() kernel.Kernel {
	return m.kernel
}

// Problem is the training set the model was built from.
func (m *Model[L]) Problem() *problem.Problem[L] {
	return m.prob
}

// Record returns a deep copy of the trained record.
func (m *Model[L]) Record() (svm.Model, error) {
	if m.record == nil {
		return svm.Model{}, ErrEmptyModel
	}
	return *copyRecord(m.record), nil
}
