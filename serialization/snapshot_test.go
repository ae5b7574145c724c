package serialization

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/stretchr/testify/require"

	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/label"
	"github.com/jgreitemann/svm/ml/svm"
	"github.com/jgreitemann/svm/model"
	"github.com/jgreitemann/svm/params"
	"github.com/jgreitemann/svm/problem"
)

var colors = label.NewSet("color", "RED", "GREEN", "BLUE")

func trained(t *testing.T, k kernel.Kernel) *model.Model[label.Enum] {
	prob := problem.New(3, colors.Space())
	for i := 0; i < 30; i++ {
		phi := 2 * math.Pi * float64(i) / 30
		x := []float64{math.Cos(phi), math.Sin(phi), 0}
		require.NoError(t, prob.AddSample(dataset.New(x), colors.At(i*3/30)))
	}
	p := params.Default()
	p.Machine = params.CSVC
	p.Regularization = 10
	m, err := model.Train(prob, k, p)
	require.NoError(t, err)
	return m
}

var queries = [][]float64{{1, 0.2, 0}, {-0.5, 0.8, 0}, {-0.3, -0.9, 0}, {0, 0, 0}}

func requireSameDecisions(t *testing.T, want, got *model.Model[label.Enum]) {
	require.Equal(t, want.Labels(), got.Labels())
	require.Equal(t, want.Thresholds(), got.Thresholds())
	for _, q := range queries {
		x := dataset.New(q).View()
		l1, d1, err := want.Evaluate(x)
		require.NoError(t, err)
		l2, d2, err := got.Evaluate(x)
		require.NoError(t, err)
		require.Equal(t, l1, l2)
		require.InDeltaSlice(t, d1, d2, 1e-12)
	}
}

func TestRoundTrip(t *testing.T) {
	kernels := []kernel.Kernel{
		kernel.Linear{},
		kernel.Polynomial{Degree: 3, Gamma: 0.5, Coef0: 1},
		kernel.RBF{Gamma: 2},
		kernel.LinearPrecomputed{},
	}
	for _, k := range kernels {
		for _, format := range []Format{JSON, YAML} {
			t.Run(k.Kind().String()+"/"+string(format), func(t *testing.T) {
				m := trained(t, k)
				var buf bytes.Buffer
				require.NoError(t, Save(&buf, m, format))

				loaded, err := Load(bytes.NewReader(buf.Bytes()), colors.Space(), nil, format)
				require.NoError(t, err)
				require.Equal(t, k, loaded.Kernel())
				require.Equal(t, m.Parameters(), loaded.Parameters())
				requireSameDecisions(t, m, loaded)

				var again bytes.Buffer
				require.NoError(t, Save(&again, loaded, format))
				if format == JSON {
					require.True(t, jsonpatch.Equal(buf.Bytes(), again.Bytes()))
				} else {
					require.Equal(t, buf.String(), again.String())
				}
			})
		}
	}
}

func TestSnapshotHasNoNegativeZeros(t *testing.T) {
	for _, k := range []kernel.Kernel{kernel.Linear{}, kernel.LinearPrecomputed{}} {
		snap, err := NewSnapshot(trained(t, k))
		require.NoError(t, err)
		positive := func(x float64) bool { return x != 0 || !math.Signbit(x) }
		for _, coef := range snap.Record.SvCoef {
			for _, c := range coef {
				require.True(t, positive(c))
			}
		}
		for _, rho := range snap.Record.Rho {
			require.True(t, positive(rho))
		}
		for _, sv := range snap.Record.SV {
			for _, n := range sv {
				require.True(t, positive(n.Value))
			}
		}
		for _, s := range snap.Samples {
			for _, n := range s.Entries {
				require.True(t, positive(n.Value))
			}
		}
	}
}

func TestUnsignZeros(t *testing.T) {
	xs := []float64{math.Copysign(0, -1), -1, 0, 2}
	unsignZeros(xs)
	require.False(t, math.Signbit(xs[0]))
	require.Equal(t, []float64{0, -1, 0, 2}, xs)

	nodes := unsignZeroNodes([]svm.Node{{Index: 1, Value: math.Copysign(0, -1)}, {Index: 2, Value: -3}})
	require.False(t, math.Signbit(nodes[0].Value))
	require.Equal(t, -3.0, nodes[1].Value)
}

func TestSnapshotSamples(t *testing.T) {
	native, err := NewSnapshot(trained(t, kernel.Linear{}))
	require.NoError(t, err)
	require.Empty(t, native.Samples)
	require.Equal(t, "linear", native.Kernel.Kind)
	for _, sv := range native.Record.SV {
		require.NotEmpty(t, sv)
		require.NotEqual(t, -1, sv[len(sv)-1].Index)
	}

	pre, err := NewSnapshot(trained(t, kernel.LinearPrecomputed{}))
	require.NoError(t, err)
	require.Len(t, pre.Samples, 30)
	require.Equal(t, 3, pre.Samples[0].Length)
	require.Equal(t, 1, pre.Samples[0].Start)
	require.EqualValues(t, 0, pre.Samples[0].Label)
	require.EqualValues(t, 2, pre.Samples[29].Label)
}

func TestCustomKernel(t *testing.T) {
	custom := kernel.Func{Name: "cubic", F: func(xi, xj dataset.View) float64 {
		d := dataset.Dot(xi, xj)
		return d * d * d
	}}
	m := trained(t, custom)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, m, JSON))

	_, err := Load(bytes.NewReader(buf.Bytes()), colors.Space(), nil, JSON)
	require.True(t, errors.Is(err, kernel.ErrKernelRequired))

	_, err = Load(bytes.NewReader(buf.Bytes()), colors.Space(), kernel.Func{Name: "quartic"}, JSON)
	require.True(t, errors.Is(err, ErrKernelMismatch))

	loaded, err := Load(bytes.NewReader(buf.Bytes()), colors.Space(), custom, JSON)
	require.NoError(t, err)
	requireSameDecisions(t, m, loaded)
}

func TestLoadErrors(t *testing.T) {
	m := trained(t, kernel.Linear{})
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, m, JSON))

	_, err := Load(bytes.NewReader(buf.Bytes()), colors.Space(), nil, "xml")
	require.True(t, errors.Is(err, ErrUnknownFormat))
	require.True(t, errors.Is(Save(&bytes.Buffer{}, m, "xml"), ErrUnknownFormat))

	_, err = Load(strings.NewReader("{"), colors.Space(), nil, JSON)
	require.Error(t, err)

	_, err = Load(bytes.NewReader(buf.Bytes()), colors.Space(), kernel.RBF{Gamma: 1}, JSON)
	require.True(t, errors.Is(err, ErrKernelMismatch))

	truncated, err := jsonpatch.MergePatch(buf.Bytes(), []byte(`{"record": {"rho": [0.5]}}`))
	require.NoError(t, err)
	_, err = Load(bytes.NewReader(truncated), colors.Space(), nil, JSON)
	require.True(t, errors.Is(err, model.ErrCorruptRecord))

	binary := label.NewSet("binary", "A", "B")
	_, err = Load(bytes.NewReader(buf.Bytes()), binary.Space(), nil, JSON)
	require.True(t, errors.Is(err, model.ErrLabelCountMismatch))

	m.Close()
	require.True(t, errors.Is(Save(&bytes.Buffer{}, m, JSON), model.ErrEmptyModel))
}
