package dataset

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jgreitemann/svm/ml/svm"
)

func TestDot(t *testing.T) {
	a := New([]float64{3, 1, 4, 1, 5, 0, -9, 2}).View()
	b := New([]float64{1, -1, 0, 1, 0, 0, 1}).View()
	require.Equal(t, 137.0, a.Dot(a))
	require.Equal(t, 4.0, b.Dot(b))
	require.Equal(t, -6.0, a.Dot(b))
	require.Equal(t, -6.0, Dot(b, a))
	require.Equal(t, 0.0, Dot(View{}, a))
}

func TestDotMatchesDense(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(12)
		xs := make([]float64, n)
		ys := make([]float64, n)
		want := 0.0
		for i := 0; i < n; i++ {
			if rng.Intn(3) > 0 {
				xs[i] = float64(rng.Intn(11) - 5)
			}
			if rng.Intn(3) > 0 {
				ys[i] = float64(rng.Intn(11) - 5)
			}
			want += xs[i] * ys[i]
		}
		require.Equal(t, want, Dot(New(xs).View(), New(ys).View()))
	}
}

func TestRoundTrip(t *testing.T) {
	tests := map[string][]float64{
		"mixed":          {0, 1.5, 0, 0, -2, 3},
		"trailing zeros": {1, 0, 0},
		"all zero":       {0, 0, 0, 0},
		"empty":          {},
	}
	for name, xs := range tests {
		t.Run(name, func(t *testing.T) {
			ds := New(xs)
			require.Equal(t, len(xs), ds.Len())
			require.Empty(t, cmp.Diff(xs, ds.Dense()))

			var walked []float64
			for c := ds.View().Begin(); !c.End(); c.Next() {
				walked = append(walked, c.Value())
			}
			if len(xs) == 0 {
				require.Empty(t, walked)
			} else {
				require.Empty(t, cmp.Diff(xs, walked))
			}
		})
	}
}

func TestStorage(t *testing.T) {
	ds := New([]int{0, 7, 0, 9})
	require.Equal(t, []svm.Node{{Index: 2, Value: 7}, {Index: 4, Value: 9}, svm.End()}, ds.Nodes())

	kept := New([]float64{0, 7}, WithStartIndex(0), WithZeros())
	require.Equal(t, []svm.Node{{Index: 0, Value: 0}, {Index: 1, Value: 7}, svm.End()}, kept.Nodes())
	require.Equal(t, 0, kept.StartIndex())
	require.Equal(t, 0.0, kept.View().Front())
}

func TestViewAccess(t *testing.T) {
	v := New([]float64{0, 2, 0, 4, 5}).View()
	require.Equal(t, 0.0, v.At(1))
	require.Equal(t, 2.0, v.At(2))
	require.Equal(t, 4.0, v.At(4))
	require.Equal(t, 0.0, v.At(9))
	require.Equal(t, 3, v.NonZero())
	require.Equal(t, 5, v.Len())

	borrowed := NewView(v.Nodes(), 1)
	require.Equal(t, 5, borrowed.Len())
	require.Equal(t, []float64{0, 2, 0, 4, 5, 0}, borrowed.Dense(6))

	var walked []float64
	for c := borrowed.Begin(); !c.End(); c.Next() {
		walked = append(walked, c.Value())
	}
	require.Equal(t, []float64{0, 2, 0, 4, 5}, walked)

	require.True(t, View{}.Empty())
	require.True(t, New([]float64{0, 0}).View().Empty())
	require.False(t, v.Empty())
}

func TestFromEntries(t *testing.T) {
	ds, err := FromEntries([]svm.Node{{Index: 2, Value: 1}, {Index: 3, Value: 0}, {Index: 5, Value: -1}}, 5)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 0, 0, -1}, ds.Dense())
	require.Equal(t, 2, ds.View().NonZero())

	_, err = FromEntries([]svm.Node{{Index: 3, Value: 1}, {Index: 2, Value: 1}}, 5)
	require.True(t, errors.Is(err, ErrUnsorted))

	_, err = FromEntries([]svm.Node{{Index: 6, Value: 1}}, 5)
	require.True(t, errors.Is(err, ErrOutOfRange))

	_, err = FromEntries([]svm.Node{{Index: 0, Value: 1}}, 5)
	require.True(t, errors.Is(err, ErrOutOfRange))
}

func TestClone(t *testing.T) {
	ds := New([]float64{1, 2})
	clone := ds.Clone()
	clone.Nodes()[0].Value = 10
	require.Equal(t, 1.0, ds.View().At(1))
}
