package label

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnum(t *testing.T) {
	animals := NewSet("animal", "cat", "dog", "mouse")
	space := animals.Space()
	require.Equal(t, Fixed, space.Kind())
	require.Equal(t, 3, space.NrLabels())

	dog, ok := animals.Lookup("dog")
	require.True(t, ok)
	require.Equal(t, 1, dog.Index())
	require.Equal(t, "dog", dog.String())
	require.Equal(t, 1.0, space.Encode(dog))
	require.Equal(t, animals.At(1), dog)

	_, ok = animals.Lookup("cow")
	require.False(t, ok)

	decoded, err := space.Decode(2)
	require.NoError(t, err)
	require.Equal(t, "mouse", decoded.String())

	decoded, err = space.Decode(0.7)
	require.NoError(t, err)
	require.Equal(t, "dog", decoded.String())

	decoded, err = space.Decode(-0.4)
	require.NoError(t, err)
	require.Equal(t, "cat", decoded.String())

	for _, x := range []float64{-0.5, -0.6, 2.5, 2.7, 3, 17, math.NaN(), math.Inf(1)} {
		_, err := space.Decode(x)
		require.True(t, errors.Is(err, ErrInvalidLabel), "decode %v", x)
	}

	require.Len(t, animals.All(), 3)
	require.Panics(t, func() { animals.At(3) })
}

func TestDynamicSpaces(t *testing.T) {
	r := Real()
	require.Equal(t, Dynamic, r.Kind())
	require.Equal(t, -1, r.NrLabels())
	x, err := r.Decode(-1)
	require.NoError(t, err)
	require.Equal(t, -1.0, x)

	i := Integers()
	require.Equal(t, 7.0, i.Encode(7))
	n, err := i.Decode(2.9999999)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	_, err = i.Decode(math.Inf(1))
	require.True(t, errors.Is(err, ErrInvalidLabel))
}
