// Package serialization writes trained models as self-contained snapshots
// and reads them back.
package serialization

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/label"
	"github.com/jgreitemann/svm/logger"
	"github.com/jgreitemann/svm/ml/svm"
	"github.com/jgreitemann/svm/model"
	"github.com/jgreitemann/svm/params"
	"github.com/jgreitemann/svm/problem"
)

type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// Snapshot is everything needed to rebuild a model. Training samples are
// only kept for precomputed kernels, whose support vectors refer back to
// them.
type Snapshot struct {
	Dim        int                `json:"dim" yaml:"dim"`
	Parameters params.Parameters  `json:"parameters" yaml:"parameters"`
	Kernel     kernel.Description `json:"kernel" yaml:"kernel"`
	Record     svm.Model          `json:"record" yaml:"record"`
	Samples    []Sample           `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// Sample is one stored training vector with its encoded label.
type Sample struct {
	Start   int        `json:"start" yaml:"start"`
	Length  int        `json:"length" yaml:"length"`
	Entries []svm.Node `json:"entries" yaml:"entries"`
	Label   float64    `json:"label" yaml:"label"`
}

// NewSnapshot captures m.
func NewSnapshot[L comparable](m *model.Model[L]) (Snapshot, error) {
	rec, err := m.Record()
	if err != nil {
		return Snapshot{}, err
	}
	for i, sv := range rec.SV {
		rec.SV[i] = stripEnd(sv)
		unsignZeroNodes(rec.SV[i])
	}
	for _, coef := range rec.SvCoef {
		unsignZeros(coef)
	}
	unsignZeros(rec.Rho)
	snap := Snapshot{
		Dim:        m.Dim(),
		Parameters: m.Parameters(),
		Kernel:     kernel.Describe(m.Kernel()),
		Record:     rec,
	}
	if !m.Kernel().RequiresPrecomputation() {
		return snap, nil
	}

	prob := m.Problem()
	space := prob.Space()
	for i := 0; i < prob.Size(); i++ {
		x, l, err := prob.At(i)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Samples = append(snap.Samples, Sample{
			Start:   x.StartIndex(),
			Length:  x.Len(),
			Entries: unsignZeroNodes(stripEnd(x.Nodes())),
			Label:   space.Encode(l),
		})
	}
	return snap, nil
}

// unsignZeros replaces -0 by 0. YAML reads -0 back as 0, which would make
// a reloaded model save differently.
func unsignZeros(xs []float64) {
	for i, x := range xs {
		if x == 0 {
			xs[i] = 0
		}
	}
}

func unsignZeroNodes(nodes []svm.Node) []svm.Node {
	for i := range nodes {
		if nodes[i].Value == 0 {
			nodes[i].Value = 0
		}
	}
	return nodes
}

func stripEnd(nodes []svm.Node) []svm.Node {
	for i, n := range nodes {
		if n.Index == svm.EndIndex {
			return append([]svm.Node{}, nodes[:i]...)
		}
	}
	return append([]svm.Node{}, nodes...)
}

// Restore rebuilds the model. A nil k takes the kernel from the snapshot,
// which fails for custom kernels.
func Restore[L comparable](snap Snapshot, space label.Space[L], k kernel.Kernel) (*model.Model[L], error) {
	if k == nil {
		var err error
		if k, err = snap.Kernel.Kernel(); err != nil {
			return nil, err
		}
	} else if d := kernel.Describe(k); d.Kind != snap.Kernel.Kind || d.Name != snap.Kernel.Name {
		return nil, fmt.Errorf("%w: %s %q, snapshot has %s %q", ErrKernelMismatch, d.Kind, d.Name, snap.Kernel.Kind, snap.Kernel.Name)
	}

	prob := problem.New(snap.Dim, space)
	for i, s := range snap.Samples {
		x, err := dataset.FromEntries(s.Entries, s.Length, dataset.WithStartIndex(s.Start), dataset.WithZeros())
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		l, err := space.Decode(s.Label)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		if err := prob.AddSample(x, l); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
	}
	return model.Restore(prob, k, snap.Parameters, snap.Record)
}

// Save writes m to w.
func Save[L comparable](w io.Writer, m *model.Model[L], format Format) error {
	snapshotLogger := logger.NewLogger("Model serialization")
	snap, err := NewSnapshot(m)
	if err != nil {
		return err
	}
	switch format {
	case JSON:
		err = json.NewEncoder(w).Encode(snap)
	case YAML:
		enc := yaml.NewEncoder(w)
		if err = enc.Encode(snap); err == nil {
			err = enc.Close()
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return err
	}
	snapshotLogger.Debug().Str("format", string(format)).Int("support_vectors", snap.Record.L).Msg("model saved")
	return nil
}

// Load reads a model written by Save.
func Load[L comparable](r io.Reader, space label.Space[L], k kernel.Kernel, format Format) (*model.Model[L], error) {
	var snap Snapshot
	var err error
	switch format {
	case JSON:
		err = json.NewDecoder(r).Decode(&snap)
	case YAML:
		err = yaml.NewDecoder(r).Decode(&snap)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("serialization: decoding %s: %w", format, err)
	}
	return Restore(snap, space, k)
}
